package nasc

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/toutaio/toutago-nasc-registrar/service"
)

// AddAttributeServices scans the given modules and adds every resulting
// binding to the container. With no modules, service.Builtin is scanned.
// Scan progress is logged to the container's logger.
//
// Example:
//
//	if err := container.AddAttributeServices(billing.Module, mail.Module); err != nil {
//	    log.Fatal(err)
//	}
func (n *Nasc) AddAttributeServices(sources ...*service.Module) error {
	return service.NewScanner(service.WithLogger(n.logger)).Register(n, sources...)
}

// AddSelf binds a concrete type to itself.
//
// Example:
//
//	container.AddSelf((*UserService)(nil), nasc.LifetimeScoped)
func (n *Nasc) AddSelf(token interface{}, lifetime Lifetime) error {
	t, err := tokenType(token)
	if err != nil {
		return err
	}
	return n.Add(service.Binding{
		ServiceType:        t,
		ImplementationType: t,
		Lifetime:           lifetime,
	})
}

// AddSingletons binds each instance to its own dynamic type as a singleton
// that always resolves to that instance.
//
// Example:
//
//	container.AddSingletons(cfg, logger)
func (n *Nasc) AddSingletons(instances ...interface{}) error {
	for i, instance := range instances {
		if isNil(instance) {
			return &InvalidBindingError{Reason: fmt.Sprintf("singleton instance %d cannot be nil", i)}
		}
		if err := n.Add(instanceBinding(instance)); err != nil {
			return err
		}
	}
	return nil
}

// isNil reports whether v is nil or a typed nil pointer, map, slice, channel
// or function.
func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// instanceBinding builds a singleton binding whose constructor returns instance.
func instanceBinding(instance interface{}) service.Binding {
	value := reflect.ValueOf(instance)
	t := value.Type()
	fnType := reflect.FuncOf(nil, []reflect.Type{t}, false)
	factory := reflect.MakeFunc(fnType, func([]reflect.Value) []reflect.Value {
		return []reflect.Value{value}
	})

	return service.Binding{
		ServiceType:        t,
		ImplementationType: t,
		Factory:            factory.Interface(),
		Lifetime:           service.Singleton,
	}
}

// Remove deletes the bindings of every service type assignable to the given
// type and returns how many were removed. Removing an interface therefore
// also removes bindings keyed by its implementations and by interfaces that
// embed it. Already created singletons of removed bindings are kept until
// Dispose.
//
// Example:
//
//	container.Remove((*Notifier)(nil))
func (n *Nasc) Remove(token interface{}) int {
	t, err := tokenType(token)
	if err != nil {
		return 0
	}
	removed := n.registry.RemoveFunc(func(serviceType reflect.Type) bool {
		return serviceType.AssignableTo(t)
	})
	if removed > 0 {
		n.logger.Debug("bindings removed", zap.Stringer("service", t), zap.Int("bindings", removed))
	}
	return removed
}
