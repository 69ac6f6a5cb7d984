package service

import (
	"fmt"
	"reflect"

	"github.com/toutaio/toutago-nasc-registrar/internal/reflectx"
)

// Kind classifies a declared type for registration.
type Kind int

const (
	// KindOther is anything that is neither an interface nor a class.
	// Marking a type of this kind is a configuration error.
	KindOther Kind = iota

	// KindInterface is a Go interface type.
	KindInterface

	// KindClass is a struct or pointer to struct.
	KindClass
)

func (k Kind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindClass:
		return "class"
	default:
		return "other"
	}
}

// KindOf classifies t.
func KindOf(t reflect.Type) Kind {
	switch {
	case t == nil:
		return KindOther
	case t.Kind() == reflect.Interface:
		return KindInterface
	case reflectx.IsStructOrStructPtr(t):
		return KindClass
	default:
		return KindOther
	}
}

// TypeDescriptor is one declared type of a Module.
type TypeDescriptor struct {
	Type reflect.Type

	// Kind is derived from Type when the module is scanned.
	Kind Kind

	// Marker is the explicit marker, if any. Classes without one may still
	// be marked through an embedded Marked field.
	Marker *Marker

	// Factory is the constructor used to build the type, if declared with
	// Constructor.
	Factory any

	// NoAutoBind excludes an interface from the implemented-interfaces rule
	// applied to unmarked-target classes.
	NoAutoBind bool

	invalid string
}

// IsInterface reports whether the type is an interface.
func (d TypeDescriptor) IsInterface() bool { return d.Kind == KindInterface }

// IsClass reports whether the type is a struct or pointer to struct.
func (d TypeDescriptor) IsClass() bool { return d.Kind == KindClass }

// IsAbstract reports whether the type cannot be instantiated directly.
func (d TypeDescriptor) IsAbstract() bool { return d.Kind == KindInterface }

// Option configures a TypeDescriptor at declaration.
type Option func(*TypeDescriptor)

// Mark attaches a marker with the given lifetime.
func Mark(lifetime Lifetime, opts ...MarkerOption) Option {
	return func(d *TypeDescriptor) {
		m := &Marker{Lifetime: lifetime}
		for _, opt := range opts {
			opt(m)
		}
		d.Marker = m
	}
}

// NoAutoBind keeps an interface from being inferred as a service type of the
// classes implementing it. Explicit markers on the interface still apply.
func NoAutoBind() Option {
	return func(d *TypeDescriptor) {
		d.NoAutoBind = true
	}
}

// Type declares T. Interfaces are declared through their type parameter,
// e.g. Type[Logger]().
func Type[T any](opts ...Option) TypeDescriptor {
	return TypeOf(reflect.TypeOf((*T)(nil)).Elem(), opts...)
}

// TypeOf declares t.
func TypeOf(t reflect.Type, opts ...Option) TypeDescriptor {
	d := TypeDescriptor{
		Type: t,
		Kind: KindOf(t),
	}
	if t == nil {
		d.invalid = "nil type"
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// Constructor declares the class built by fn. Supported signatures:
//   - func(Dep1, Dep2, ...) *T
//   - func(Dep1, Dep2, ...) (*T, error)
//
// T may also be a struct value type.
func Constructor(fn any, opts ...Option) TypeDescriptor {
	d := TypeDescriptor{Factory: fn}
	for _, opt := range opts {
		opt(&d)
	}

	if fn == nil {
		d.invalid = "nil constructor"
		return d
	}

	fnType := reflect.TypeOf(fn)
	d.Type = fnType
	d.Kind = KindOther
	if fnType.Kind() != reflect.Func {
		d.invalid = fmt.Sprintf("constructor must be a function, got %v", fnType.Kind())
		return d
	}

	numOut := fnType.NumOut()
	if numOut == 0 || numOut > 2 {
		d.invalid = fmt.Sprintf("constructor must return (T) or (T, error), got %d return values", numOut)
		return d
	}
	if numOut == 2 && fnType.Out(1) != reflectx.ErrorType {
		d.invalid = fmt.Sprintf("constructor's second return value must be error, got %v", fnType.Out(1))
		return d
	}

	out := fnType.Out(0)
	if !reflectx.IsStructOrStructPtr(out) {
		d.invalid = fmt.Sprintf("constructor must return a struct or pointer to struct, got %v", out)
		return d
	}

	d.Type = out
	d.Kind = KindClass
	return d
}

// Module is an immutable, ordered list of declared types. It stands in for
// an assembly: scanning visits its types in declaration order.
type Module struct {
	name  string
	types []TypeDescriptor
}

// NewModule creates a module from the given declarations.
func NewModule(name string, types ...TypeDescriptor) *Module {
	m := &Module{
		name:  name,
		types: make([]TypeDescriptor, len(types)),
	}
	copy(m.types, types)
	return m
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Len returns the number of declared types.
func (m *Module) Len() int { return len(m.types) }

// Types returns a copy of the declared types in declaration order.
func (m *Module) Types() []TypeDescriptor {
	types := make([]TypeDescriptor, len(m.types))
	copy(types, m.types)
	return types
}

// With returns a new module with the same name and the given declarations
// appended.
func (m *Module) With(types ...TypeDescriptor) *Module {
	all := make([]TypeDescriptor, 0, len(m.types)+len(types))
	all = append(all, m.types...)
	all = append(all, types...)
	return &Module{name: m.name, types: all}
}
