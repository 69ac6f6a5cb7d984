package nasc

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/toutaio/toutago-nasc-registrar/internal/reflectx"
	"github.com/toutaio/toutago-nasc-registrar/registry"
	"github.com/toutaio/toutago-nasc-registrar/service"
)

// Nasc is the dependency injection container.
// It accepts bindings as a service.Sink and resolves them in a thread-safe manner.
type Nasc struct {
	registry   *registry.Registry
	singletons *instanceCache
	fields     *reflectx.Cache
	logger     *zap.Logger
}

var _ service.Sink = (*Nasc)(nil)

// New creates a new Nasc container instance.
// Options can be provided to configure the container behavior.
//
// Example:
//
//	container := nasc.New()
//	// or with options:
//	container := nasc.New(nasc.WithLogger(logger))
func New(options ...Option) *Nasc {
	n := &Nasc{
		registry:   registry.New(),
		singletons: newInstanceCache(),
		fields:     reflectx.NewCache(),
		logger:     zap.NewNop(),
	}

	for _, opt := range options {
		if err := opt(n); err != nil {
			panic(fmt.Sprintf("failed to apply option: %v", err))
		}
	}

	return n
}

// Add registers a binding. It implements service.Sink, so a container can be
// handed directly to service.RegisterAttributedServices.
//
// Bindings are appended, never replaced: the most recent binding for a
// service type is the one Make resolves, and MakeAll resolves all of them.
//
// Returns an InvalidBindingError if:
//   - ServiceType is nil
//   - neither ImplementationType nor Factory is set
//   - the implementation is not assignable to the service type
//   - Factory is not a valid constructor
func (n *Nasc) Add(b service.Binding) error {
	if b.ServiceType == nil {
		return &InvalidBindingError{Reason: "service type cannot be nil"}
	}
	if !b.Lifetime.Valid() {
		return &InvalidBindingError{Reason: fmt.Sprintf("invalid lifetime %s for %v", b.Lifetime, b.ServiceType)}
	}

	stored := &registry.Binding{
		ServiceType:        b.ServiceType,
		ImplementationType: b.ImplementationType,
		Lifetime:           b.Lifetime,
	}

	if b.Factory != nil {
		info, err := parseConstructor(b.Factory)
		if err != nil {
			return &InvalidBindingError{Reason: fmt.Sprintf("invalid constructor for %v: %v", b.ServiceType, err)}
		}
		if b.ImplementationType != nil && b.ImplementationType != info.returnType {
			return &InvalidBindingError{
				Reason: fmt.Sprintf("constructor returns %v but binding declares %v", info.returnType, b.ImplementationType),
			}
		}
		stored.ImplementationType = info.returnType
		stored.Constructor = info
	} else {
		if b.ImplementationType == nil {
			return &InvalidBindingError{Reason: fmt.Sprintf("implementation type cannot be nil for %v", b.ServiceType)}
		}
		if !reflectx.IsStructOrStructPtr(b.ImplementationType) {
			return &InvalidBindingError{
				Reason: fmt.Sprintf("implementation must be a struct or pointer to struct, got %v", b.ImplementationType),
			}
		}
	}

	if !stored.ImplementationType.AssignableTo(b.ServiceType) {
		return &InvalidBindingError{
			Reason: fmt.Sprintf("%v is not assignable to %v", stored.ImplementationType, b.ServiceType),
		}
	}

	return n.insert(stored)
}

// insert stores a validated binding.
func (n *Nasc) insert(stored *registry.Binding) error {
	if err := n.registry.Add(stored); err != nil {
		return err
	}

	n.logger.Debug("binding added",
		zap.Stringer("service", stored.ServiceType),
		zap.Stringer("implementation", stored.ImplementationType),
		zap.Stringer("lifetime", stored.Lifetime),
		zap.Bool("constructor", stored.Constructor != nil),
	)
	return nil
}

// Make resolves and returns an instance of the registered type.
// Interfaces are requested through a nil pointer like (*Logger)(nil),
// concrete types through a value of that type like (*UserService)(nil).
//
// The resolution behavior depends on the binding's lifetime:
//   - Transient: Creates a new instance every time
//   - Singleton: Returns the same instance (created lazily on first call)
//   - Scoped: Panics (scoped bindings must use Scope.Make())
//
// Example:
//
//	logger := container.Make((*Logger)(nil)).(Logger)
//
// Panics if the type cannot be resolved. Use MakeSafe to get an error instead.
func (n *Nasc) Make(token interface{}) interface{} {
	instance, err := n.MakeSafe(token)
	if err != nil {
		panic(err.Error())
	}
	return instance
}

// MakeSafe resolves an instance like Make but returns an error instead of
// panicking.
func (n *Nasc) MakeSafe(token interface{}) (interface{}, error) {
	t, err := tokenType(token)
	if err != nil {
		return nil, err
	}
	return n.resolve(t, nil, nil)
}

// MakeAll resolves every binding registered for the type, in registration
// order. Returns an empty slice if there are none.
//
// Example:
//
//	loggers, err := container.MakeAll((*Logger)(nil))
func (n *Nasc) MakeAll(token interface{}) ([]interface{}, error) {
	t, err := tokenType(token)
	if err != nil {
		return nil, err
	}
	return n.resolveAll(t, nil)
}

// Has reports whether at least one binding exists for the type.
func (n *Nasc) Has(token interface{}) bool {
	t, err := tokenType(token)
	if err != nil {
		return false
	}
	return n.registry.Has(t)
}

// Bindings returns every registered binding in registration order.
func (n *Nasc) Bindings() []service.Binding {
	snapshot := n.registry.Snapshot()
	bindings := make([]service.Binding, len(snapshot))
	for i, b := range snapshot {
		bindings[i] = service.Binding{
			ServiceType:        b.ServiceType,
			ImplementationType: b.ImplementationType,
			Lifetime:           b.Lifetime,
		}
		if info, ok := b.Constructor.(*constructorInfo); ok {
			bindings[i].Factory = info.fn.Interface()
		}
	}
	return bindings
}

// CreateScope creates a new dependency resolution scope.
// Scoped bindings create one instance per scope.
//
// Example:
//
//	scope := container.CreateScope()
//	defer scope.Dispose()
//	uow := scope.Make((*UnitOfWork)(nil)).(UnitOfWork)
func (n *Nasc) CreateScope() *Scope {
	return newScope(n)
}

// Dispose calls Dispose on every created singleton implementing Disposable,
// in reverse creation order. Singletons are recreated if resolved again.
func (n *Nasc) Dispose() error {
	instances := n.singletons.drain()
	n.logger.Debug("disposing singletons", zap.Int("instances", len(instances)))
	return disposeAll(instances)
}

// Resolve resolves T from r.
//
// Example:
//
//	logger, err := nasc.Resolve[Logger](container)
func Resolve[T any](r Resolver) (T, error) {
	var zero T
	instance, err := r.MakeSafe(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	if instance == nil {
		return zero, nil
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, &ResolutionError{
			Type:    reflect.TypeOf((*T)(nil)).Elem(),
			Context: fmt.Sprintf("resolved %T", instance),
		}
	}
	return typed, nil
}

// ResolveAll resolves every binding of T from r.
func ResolveAll[T any](r Resolver) ([]T, error) {
	instances, err := r.MakeAll(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	typed := make([]T, 0, len(instances))
	for _, instance := range instances {
		t, ok := instance.(T)
		if !ok {
			return nil, &ResolutionError{
				Type:    reflect.TypeOf((*T)(nil)).Elem(),
				Context: fmt.Sprintf("resolved %T", instance),
			}
		}
		typed = append(typed, t)
	}
	return typed, nil
}

// Resolver is implemented by the container and by scopes.
type Resolver interface {
	MakeSafe(token interface{}) (interface{}, error)
	MakeAll(token interface{}) ([]interface{}, error)
}

var (
	_ Resolver = (*Nasc)(nil)
	_ Resolver = (*Scope)(nil)
)

// resolve resolves the default binding of t. path holds the service types
// currently being constructed, outermost first.
func (n *Nasc) resolve(t reflect.Type, scope *Scope, path []reflect.Type) (interface{}, error) {
	if err := checkCycle(t, path); err != nil {
		return nil, err
	}

	binding, err := n.registry.Last(t)
	if err != nil {
		return nil, &BindingNotFoundError{Type: t}
	}
	return n.instantiate(binding, scope, append(path[:len(path):len(path)], t))
}

// resolveAll resolves every binding of t in registration order.
func (n *Nasc) resolveAll(t reflect.Type, scope *Scope) ([]interface{}, error) {
	bindings := n.registry.All(t)
	instances := make([]interface{}, 0, len(bindings))
	for _, binding := range bindings {
		instance, err := n.instantiate(binding, scope, []reflect.Type{t})
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

// instantiate returns an instance for binding according to its lifetime.
func (n *Nasc) instantiate(binding *registry.Binding, scope *Scope, path []reflect.Type) (interface{}, error) {
	switch binding.Lifetime {
	case service.Transient:
		return n.build(binding, scope, path)

	case service.Singleton:
		// Singletons never capture scoped instances
		return n.singletons.getOrCreate(binding, func() (interface{}, error) {
			return n.build(binding, nil, path)
		})

	case service.Scoped:
		if scope == nil {
			return nil, &ResolutionError{
				Type:    binding.ServiceType,
				Context: "scoped binding must be resolved using Scope.Make(), not container.Make()",
			}
		}
		return scope.instances.getOrCreate(binding, func() (interface{}, error) {
			return n.build(binding, scope, path)
		})

	default:
		return nil, &ResolutionError{
			Type:    binding.ServiceType,
			Context: fmt.Sprintf("unknown lifetime %s", binding.Lifetime),
		}
	}
}

// build creates a new instance, either through the binding's constructor or by
// allocating the implementation type and auto-wiring its inject fields.
func (n *Nasc) build(binding *registry.Binding, scope *Scope, path []reflect.Type) (interface{}, error) {
	var instance interface{}

	if info, ok := binding.Constructor.(*constructorInfo); ok {
		created, err := n.invokeConstructor(info, scope, path)
		if err != nil {
			return nil, &ResolutionError{Type: binding.ServiceType, Cause: err}
		}
		instance = created
	} else {
		implT := binding.ImplementationType
		ptr := reflect.New(reflectx.Indirect(implT))
		if err := n.autoWire(ptr, scope, path); err != nil {
			return nil, &ResolutionError{Type: binding.ServiceType, Cause: err}
		}
		if implT.Kind() == reflect.Ptr {
			instance = ptr.Interface()
		} else {
			instance = ptr.Elem().Interface()
		}
	}

	if initializable, ok := instance.(Initializable); ok {
		if err := initializable.Initialize(); err != nil {
			return nil, &ResolutionError{Type: binding.ServiceType, Context: "initialize", Cause: err}
		}
	}

	return instance, nil
}

// checkCycle reports a CircularDependencyError if t is already being built.
func checkCycle(t reflect.Type, path []reflect.Type) error {
	for i, p := range path {
		if p != t {
			continue
		}
		names := make([]string, 0, len(path)-i+1)
		for _, q := range path[i:] {
			names = append(names, q.String())
		}
		names = append(names, t.String())
		return &CircularDependencyError{Path: names}
	}
	return nil
}

// tokenType extracts the requested type from a resolution token.
// A nil pointer to an interface, like (*Logger)(nil), requests the interface;
// a reflect.Type requests itself; anything else requests its dynamic type.
func tokenType(token interface{}) (reflect.Type, error) {
	if token == nil {
		return nil, &InvalidBindingError{Reason: "type token cannot be nil"}
	}
	if t, ok := token.(reflect.Type); ok {
		return t, nil
	}
	t := reflect.TypeOf(token)
	if t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Interface {
		return t.Elem(), nil
	}
	return t, nil
}
