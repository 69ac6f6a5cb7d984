package nasc

import (
	"fmt"
	"reflect"

	"github.com/toutaio/toutago-nasc-registrar/registry"
	"github.com/toutaio/toutago-nasc-registrar/service"
)

// FactoryFunc creates an instance on every resolution of a Factory binding.
type FactoryFunc func(*Nasc) (interface{}, error)

// Bind registers a transient binding between an abstract type and a concrete
// implementation. The abstract type is given as an interface pointer like
// (*Logger)(nil), the concrete one as a pointer to struct.
//
// Example:
//
//	container.Bind((*Logger)(nil), &ConsoleLogger{})
//
// Returns an error if:
//   - Either parameter is nil
//   - The concrete type is not a pointer to struct
//   - The concrete type does not implement the abstract type
func (n *Nasc) Bind(abstractType, concreteType interface{}) error {
	return n.bindWithLifetime(abstractType, concreteType, LifetimeTransient)
}

// Singleton registers a singleton binding. The instance is created on first
// resolution and shared afterwards.
//
// Example:
//
//	container.Singleton((*Database)(nil), &PostgresDB{})
//	db1 := container.Make((*Database)(nil)).(Database)
//	db2 := container.Make((*Database)(nil)).(Database)
//	// db1 == db2 (same instance)
func (n *Nasc) Singleton(abstractType, concreteType interface{}) error {
	return n.bindWithLifetime(abstractType, concreteType, LifetimeSingleton)
}

// Scoped registers a scoped binding. One instance is created per scope.
//
// Example:
//
//	container.Scoped((*UnitOfWork)(nil), &DbUnitOfWork{})
//	scope := container.CreateScope()
//	uow := scope.Make((*UnitOfWork)(nil)).(UnitOfWork)
func (n *Nasc) Scoped(abstractType, concreteType interface{}) error {
	return n.bindWithLifetime(abstractType, concreteType, LifetimeScoped)
}

func (n *Nasc) bindWithLifetime(abstractType, concreteType interface{}, lifetime Lifetime) error {
	if abstractType == nil {
		return &InvalidBindingError{Reason: "abstract type cannot be nil"}
	}
	if concreteType == nil {
		return &InvalidBindingError{Reason: "concrete type cannot be nil"}
	}
	abstractT, err := tokenType(abstractType)
	if err != nil {
		return err
	}

	concreteT := reflect.TypeOf(concreteType)
	if concreteT.Kind() != reflect.Ptr || concreteT.Elem().Kind() != reflect.Struct {
		return &InvalidBindingError{
			Reason: fmt.Sprintf("concrete type must be pointer to struct, got %v", concreteT),
		}
	}

	return n.Add(service.Binding{
		ServiceType:        abstractT,
		ImplementationType: concreteT,
		Lifetime:           lifetime,
	})
}

// Factory registers a transient binding whose instances come from factory.
// The factory is called on every resolution and must return a value
// assignable to the abstract type.
//
// Example:
//
//	container.Factory((*Connection)(nil), func(c *Nasc) (interface{}, error) {
//	    config := c.Make((*Config)(nil)).(*Config)
//	    return NewConnection(config.DSN), nil
//	})
func (n *Nasc) Factory(abstractType interface{}, factory FactoryFunc) error {
	if abstractType == nil {
		return &InvalidBindingError{Reason: "abstract type cannot be nil"}
	}
	if factory == nil {
		return &InvalidBindingError{Reason: "factory function cannot be nil"}
	}
	abstractT, err := tokenType(abstractType)
	if err != nil {
		return err
	}

	create := func() (interface{}, error) {
		instance, err := factory(n)
		if err != nil {
			return nil, err
		}
		if instance != nil && !reflect.TypeOf(instance).AssignableTo(abstractT) {
			return nil, fmt.Errorf("factory returned %T, not assignable to %v", instance, abstractT)
		}
		return instance, nil
	}

	return n.insert(&registry.Binding{
		ServiceType:        abstractT,
		ImplementationType: abstractT,
		Lifetime:           LifetimeTransient,
		Constructor: &constructorInfo{
			fn:           reflect.ValueOf(create),
			returnsError: true,
			returnType:   abstractT,
		},
	})
}
