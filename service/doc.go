// Package service turns marked type declarations into dependency-injection
// bindings.
//
// Types are declared in a Module, the registration table scanned at startup:
//
//	var Module = service.NewModule("billing",
//	    service.Type[Notifier](service.Mark(service.Singleton)),
//	    service.Type[*EmailNotifier](),
//	    service.Type[*Ledger](service.Mark(service.Scoped, service.As[Reader]())),
//	    service.Constructor(NewInvoicer, service.Mark(service.Transient)),
//	)
//
// A class can also mark itself by embedding Marked:
//
//	type Mailer struct {
//	    service.Marked `nasc:"lifetime=singleton"`
//	}
//
// RegisterAttributedServices walks the modules and hands every binding to a
// Sink, such as the nasc container:
//
//	if err := service.RegisterAttributedServices(container, billing.Module); err != nil {
//	    log.Fatal(err)
//	}
//
// # Rules
//
// A marked interface binds to its explicit service type, or else to every
// class in the scanned modules that implements it. A marked class binds its
// explicit service type to itself, or else every implemented interface
// declared in the scanned modules, and in that case also binds itself.
// Marking any other kind of type is a ConfigurationError.
package service
