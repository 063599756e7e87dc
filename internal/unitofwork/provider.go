package unitofwork

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/phrazzld/handlescope/internal/redact"
	"github.com/phrazzld/handlescope/internal/store"
)

// Provider hands out proxies for data-access types. Every proxied method
// call acquires the handle of its unit of work, dispatches to the real
// implementation built on that handle's session, and releases the handle
// on every exit path. The provider itself holds no connection state.
type Provider struct {
	manager  *HandleManager
	registry *Registry
	logger   *slog.Logger
}

// NewProvider creates a provider dispatching through manager. A nil
// registry uses tag classification and finds nothing in any namespace.
func NewProvider(manager *HandleManager, registry *Registry) *Provider {
	if registry == nil {
		registry = NewRegistry(nil, nil)
	}
	return &Provider{
		manager:  manager,
		registry: registry,
		logger:   manager.logger,
	}
}

// Manager returns the handle manager proxies dispatch through.
func (p *Provider) Manager() *HandleManager { return p.manager }

// Registry returns the registry used to describe types.
func (p *Provider) Registry() *Registry { return p.registry }

// GetProxy returns a proxy for b: a pointer to a new value of b.Type whose
// methods are all wired through the unit of work. A type without any read
// or write method is rejected with a *ClassificationError right away.
func (p *Provider) GetProxy(b Binding) (any, error) {
	if b.Type == nil || b.New == nil {
		return nil, fmt.Errorf("%w: incomplete binding", ErrInvalidType)
	}

	d, err := p.registry.Describe(b.Type)
	if err != nil {
		return nil, err
	}
	if !d.Eligible() {
		return nil, &ClassificationError{Type: d.Name()}
	}
	return p.wrap(d, b.New), nil
}

// Get is the typed form of GetProxy.
func Get[T any](p *Provider, factory func(s store.Session) *T) (*T, error) {
	proxy, err := p.GetProxy(Bind(factory))
	if err != nil {
		return nil, err
	}
	return proxy.(*T), nil
}

// GetProxiesForNamespace returns one proxy per data-access type found in
// the given namespaces, keyed by struct type. Types without read or write
// methods are not eligible and are left out. Finding nothing is not an
// error.
func (p *Provider) GetProxiesForNamespace(namespaces []string) (map[reflect.Type]any, error) {
	out := make(map[reflect.Type]any)
	for _, ns := range namespaces {
		candidates, err := p.registry.ListCandidates(ns)
		if err != nil {
			return nil, err
		}

		for _, b := range candidates {
			if _, done := out[b.Type]; done {
				continue
			}
			d, err := p.registry.Describe(b.Type)
			if err != nil {
				return nil, fmt.Errorf("namespace %q: %w", ns, err)
			}
			if !d.Eligible() {
				p.logger.Debug("skipping data-access type without read or write methods",
					slog.String("namespace", ns),
					slog.String("type", d.Name()))
				continue
			}
			out[b.Type] = p.wrap(d, b.New)
		}
	}
	return out, nil
}

// Run executes fn as one unit of work; see HandleManager.Run.
func (p *Provider) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return p.manager.Run(ctx, fn)
}

func (p *Provider) wrap(d *InterfaceDescriptor, newImpl func(store.Session) any) any {
	proxy := reflect.New(d.typ)
	for _, m := range d.methods {
		fn := reflect.MakeFunc(m.Type, func(args []reflect.Value) []reflect.Value {
			return p.invoke(d, m, newImpl, args)
		})
		proxy.Elem().Field(m.Index).Set(fn)
	}
	return proxy.Interface()
}

func (p *Provider) invoke(d *InterfaceDescriptor, m MethodDescriptor, newImpl func(store.Session) any, args []reflect.Value) []reflect.Value {
	var ctx context.Context
	if !args[0].IsNil() {
		ctx = args[0].Interface().(context.Context)
	}

	ctx, scope, err := p.manager.Begin(ctx)
	if err != nil {
		return failWith(m.Type, err)
	}

	defer func() {
		if r := recover(); r != nil {
			if relErr := scope.End(nil); relErr != nil {
				p.manager.log(ctx).Error("failed to release handle after panic",
					slog.String("method", d.Name()+"."+m.Name),
					redact.Err(relErr),
					slog.Any("panic", r))
			}
			// ALLOW-PANIC: propagating caught panic from data-access method
			panic(r)
		}
	}()

	p.manager.log(ctx).Debug("dispatching data-access call",
		slog.String("method", d.Name()+"."+m.Name),
		slog.String("kind", m.Kind.String()),
		slog.String("execution_context", string(scope.ExecutionContext())),
		slog.Bool("opener", scope.IsOpener()))

	target, err := bindTarget(d, m, newImpl, scope.Session())
	if err != nil {
		return failWith(m.Type, scope.End(err))
	}

	args[0] = reflect.ValueOf(&ctx).Elem()
	var results []reflect.Value
	if m.Type.IsVariadic() {
		results = target.CallSlice(args)
	} else {
		results = target.Call(args)
	}

	last := len(results) - 1
	var callErr error
	if !results[last].IsNil() {
		callErr = results[last].Interface().(error)
	}
	if err := scope.End(callErr); err != nil {
		results[last] = errorValue(err)
	}
	return results
}

// bindTarget builds the real implementation on s and returns its method m.
func bindTarget(d *InterfaceDescriptor, m MethodDescriptor, newImpl func(store.Session) any, s store.Session) (reflect.Value, error) {
	raw := newImpl(s)
	impl := reflect.ValueOf(raw)
	if impl.Kind() != reflect.Pointer || impl.IsNil() || impl.Type().Elem() != d.typ {
		return reflect.Value{}, fmt.Errorf("%w: factory for %s returned %T", ErrInvalidType, d.Name(), raw)
	}

	target := impl.Elem().Field(m.Index)
	if target.IsNil() {
		return reflect.Value{}, fmt.Errorf("%w: %s.%s", ErrUnboundMethod, d.Name(), m.Name)
	}
	return target, nil
}

// failWith returns zero results for ft with err in the error position.
func failWith(ft reflect.Type, err error) []reflect.Value {
	out := make([]reflect.Value, ft.NumOut())
	for i := range out {
		out[i] = reflect.Zero(ft.Out(i))
	}
	out[len(out)-1] = errorValue(err)
	return out
}

func errorValue(err error) reflect.Value {
	v := reflect.New(errorType).Elem()
	v.Set(reflect.ValueOf(err))
	return v
}
