package unitofwork

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/phrazzld/handlescope/internal/store"
	"github.com/puzpuzpuz/xsync/v3"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// MethodDescriptor describes one proxied method: an exported func field of
// a data-access type.
type MethodDescriptor struct {
	Name  string
	Index int
	Kind  OpKind
	Type  reflect.Type
}

// InterfaceDescriptor is the immutable shape of a data-access type.
type InterfaceDescriptor struct {
	typ     reflect.Type
	methods []MethodDescriptor
}

// Type returns the described struct type.
func (d *InterfaceDescriptor) Type() reflect.Type { return d.typ }

// Name returns the qualified type name, e.g. "tasks.DAO".
func (d *InterfaceDescriptor) Name() string { return d.typ.String() }

// Methods returns the methods in declaration order.
func (d *InterfaceDescriptor) Methods() []MethodDescriptor {
	return append([]MethodDescriptor(nil), d.methods...)
}

// Method looks up a method by name.
func (d *InterfaceDescriptor) Method(name string) (MethodDescriptor, bool) {
	for _, m := range d.methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodDescriptor{}, false
}

// Count returns the number of methods of the given kind.
func (d *InterfaceDescriptor) Count(kind OpKind) int {
	n := 0
	for _, m := range d.methods {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

// Eligible reports whether the type has at least one read or write method.
func (d *InterfaceDescriptor) Eligible() bool {
	for _, m := range d.methods {
		if m.Kind.Classified() {
			return true
		}
	}
	return false
}

// Binding pairs a data-access type with the factory that builds its real
// implementation on top of a session.
type Binding struct {
	Type reflect.Type
	New  func(s store.Session) any
}

// Bind creates a Binding for the data-access struct type T.
func Bind[T any](factory func(s store.Session) *T) Binding {
	return Binding{
		Type: reflect.TypeFor[T](),
		New:  func(s store.Session) any { return factory(s) },
	}
}

// Discoverer locates the data-access types of a namespace.
type Discoverer interface {
	ListTypesInNamespace(namespace string) ([]Binding, error)
}

// Registry builds and caches InterfaceDescriptors and lists the candidates
// of a namespace.
type Registry struct {
	kinds       KindSource
	discoverer  Discoverer
	descriptors *xsync.MapOf[reflect.Type, *InterfaceDescriptor]
}

// NewRegistry creates a registry. A nil kinds reads the DefaultKindTag
// struct tag; a nil discoverer finds nothing in any namespace.
func NewRegistry(kinds KindSource, discoverer Discoverer) *Registry {
	if kinds == nil {
		kinds = TagKinds(DefaultKindTag)
	}
	if discoverer == nil {
		discoverer = NewCatalog()
	}
	return &Registry{
		kinds:       kinds,
		discoverer:  discoverer,
		descriptors: xsync.NewMapOf[reflect.Type, *InterfaceDescriptor](),
	}
}

// Describe returns the descriptor of t, a struct type or a pointer to one.
// Every exported func field is a method and must have the shape
// func(context.Context, ...) (..., error).
func (r *Registry) Describe(t reflect.Type) (*InterfaceDescriptor, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrInvalidType)
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrInvalidType, t)
	}

	if d, ok := r.descriptors.Load(t); ok {
		return d, nil
	}

	d := &InterfaceDescriptor{typ: t}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Type.Kind() != reflect.Func {
			continue
		}

		ft := f.Type
		if ft.NumIn() == 0 || ft.In(0) != contextType ||
			ft.NumOut() == 0 || ft.Out(ft.NumOut()-1) != errorType {
			return nil, fmt.Errorf("%w: %s.%s must take context.Context first and return error last",
				ErrInvalidMethod, t, f.Name)
		}

		kind, err := r.kinds.Kind(t, f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %w", ErrInvalidMethod, t, f.Name, err)
		}

		d.methods = append(d.methods, MethodDescriptor{
			Name:  f.Name,
			Index: i,
			Kind:  kind,
			Type:  ft,
		})
	}

	actual, _ := r.descriptors.LoadOrStore(t, d)
	return actual, nil
}

// ListCandidates returns the data-access types found in namespace,
// de-duplicated by type and sorted by type name. An empty namespace yields
// an empty result, not an error.
func (r *Registry) ListCandidates(namespace string) ([]Binding, error) {
	found, err := r.discoverer.ListTypesInNamespace(namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list types in namespace %q: %w", namespace, err)
	}

	seen := make(map[reflect.Type]bool, len(found))
	out := make([]Binding, 0, len(found))
	for _, b := range found {
		if b.Type == nil || seen[b.Type] {
			continue
		}
		seen[b.Type] = true
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Type.String() < out[j].Type.String()
	})
	return out, nil
}
