// Package nasc provides a dependency injection container for Go that is fed
// by marker-driven service registration.
//
// Nasc (Old Irish: "Link" or "Bond") resolves bindings of a service type to
// an implementation type or constructor, with transient, scoped and singleton
// lifetimes. The container is a service.Sink: the bindings computed by
// scanning service modules are added to it directly.
//
// # Quick Start
//
// Declare services in a module and scan it:
//
//	var Module = service.NewModule("app",
//	    service.Type[Logger](),
//	    service.Type[*ConsoleLogger](service.Mark(service.Singleton)),
//	)
//
//	container := nasc.New()
//	if err := container.AddAttributeServices(Module); err != nil {
//	    log.Fatal(err)
//	}
//	logger, err := nasc.Resolve[Logger](container)
//
// Bindings can also be added by hand:
//
//	container.Add(service.Binding{
//	    ServiceType:        reflect.TypeOf((*Logger)(nil)).Elem(),
//	    ImplementationType: reflect.TypeOf(&ConsoleLogger{}),
//	    Lifetime:           nasc.LifetimeSingleton,
//	})
//
// # Multiple Bindings
//
// Bindings accumulate. Make resolves the most recently added binding for a
// type and MakeAll resolves all of them in registration order.
//
// # Lifetimes
//
// Transient - New instance each time.
//
// Singleton - One instance per binding, shared by the container and its scopes.
//
// Scoped - One instance per scope:
//
//	scope := container.CreateScope()
//	defer scope.Dispose()
//	uow := scope.Make((*UnitOfWork)(nil)).(UnitOfWork)
//
// # Injection
//
// Constructor bindings have their parameters resolved from the container.
// Type bindings are allocated and their `inject`-tagged fields resolved:
//
//	type UserService struct {
//	    DB     Database `inject:""`
//	    Cache  Cache    `inject:"optional"`
//	}
//
// Cycles are reported as a CircularDependencyError. Validate checks every
// binding up front.
//
// # Thread Safety
//
// Registration is expected to finish before resolution starts. Resolution is
// goroutine-safe; singletons are created exactly once.
package nasc
