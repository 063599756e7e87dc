package unitofwork

import (
	"fmt"
	"reflect"
	"strings"
)

// OpKind classifies a data-access method.
type OpKind int

const (
	// Unclassified methods are proxied like any other but do not make a
	// type eligible for proxying on their own.
	Unclassified OpKind = iota
	Read
	Write
)

// DefaultKindTag is the struct tag key read by TagKinds by default:
//
//	FindByID func(ctx context.Context, id int) (Task, error) `dao:"read"`
const DefaultKindTag = "dao"

// String implements fmt.Stringer.
func (k OpKind) String() string {
	switch k {
	case Unclassified:
		return "unclassified"
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// Classified reports whether k is Read or Write.
func (k OpKind) Classified() bool {
	return k == Read || k == Write
}

// ParseOpKind parses "read", "write" or "" (unclassified), case-insensitively.
func ParseOpKind(s string) (OpKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Unclassified, nil
	case "read":
		return Read, nil
	case "write":
		return Write, nil
	default:
		return Unclassified, fmt.Errorf("unknown operation kind %q", s)
	}
}

// KindSource supplies the operation kind of each data-access method.
// The registry never guesses a kind on its own.
type KindSource interface {
	Kind(owner reflect.Type, method reflect.StructField) (OpKind, error)
}

// TagKinds reads kinds from the struct tag with the given key.
type TagKinds string

// Kind implements KindSource.
func (key TagKinds) Kind(_ reflect.Type, method reflect.StructField) (OpKind, error) {
	return ParseOpKind(method.Tag.Get(string(key)))
}

// KindMap supplies kinds explicitly, keyed by "Type.Method" or by bare
// method name; the qualified key wins. Missing methods are unclassified.
type KindMap map[string]OpKind

// Kind implements KindSource.
func (km KindMap) Kind(owner reflect.Type, method reflect.StructField) (OpKind, error) {
	if k, ok := km[owner.Name()+"."+method.Name]; ok {
		return k, nil
	}
	return km[method.Name], nil
}
