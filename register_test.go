package nasc

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/toutaio/toutago-nasc-registrar/service"
)

type Notifier interface {
	Notify(to string) string
}

type Auditor interface {
	Audit() string
}

type EmailNotifier struct{}

func (*EmailNotifier) Notify(to string) string { return "email:" + to }

type SMSNotifier struct{}

func (*SMSNotifier) Notify(to string) string { return "sms:" + to }

// AuditedNotifier is a class-marked service bound to every interface it implements.
type AuditedNotifier struct {
	service.Marked `nasc:"lifetime=singleton"`
	audits         int
}

func (*AuditedNotifier) Notify(to string) string { return "audited:" + to }
func (a *AuditedNotifier) Audit() string         { a.audits++; return "ok" }

type Dispatcher struct {
	Notifier Notifier `inject:""`
}

func NewDispatcher(n Notifier) *Dispatcher {
	return &Dispatcher{Notifier: n}
}

var notifierModule = service.NewModule("notifications",
	service.Type[Notifier](service.Mark(service.Transient)),
	service.Type[*EmailNotifier](),
	service.Type[*SMSNotifier](),
)

func TestAddAttributeServices_MarkedInterface(t *testing.T) {
	container := New()
	if err := container.AddAttributeServices(notifierModule); err != nil {
		t.Fatalf("AddAttributeServices failed: %v", err)
	}

	all, err := ResolveAll[Notifier](container)
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d notifiers, want 2", len(all))
	}
	if all[0].Notify("a") != "email:a" || all[1].Notify("a") != "sms:a" {
		t.Errorf("unexpected order: %s, %s", all[0].Notify("a"), all[1].Notify("a"))
	}

	// Last binding wins for single resolution
	last, err := Resolve[Notifier](container)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if last.Notify("b") != "sms:b" {
		t.Errorf("Resolve returned %s, want the SMS notifier", last.Notify("b"))
	}
	if container.Has((*EmailNotifier)(nil)) {
		t.Error("unmarked class should not get a self binding")
	}
}

func TestAddAttributeServices_TagMarkedClass(t *testing.T) {
	module := service.NewModule("audit",
		service.Type[Notifier](),
		service.Type[Auditor](),
		service.Type[*AuditedNotifier](),
	)

	container := New()
	if err := container.AddAttributeServices(module); err != nil {
		t.Fatalf("AddAttributeServices failed: %v", err)
	}

	notifier := container.Make((*Notifier)(nil))
	auditor := container.Make((*Auditor)(nil))
	self := container.Make((*AuditedNotifier)(nil))

	if _, ok := self.(*AuditedNotifier); !ok {
		t.Fatalf("self binding resolved %T", self)
	}
	// one singleton per binding
	if notifier == auditor {
		t.Error("each binding should hold its own singleton")
	}
	if container.Make((*Notifier)(nil)) != notifier {
		t.Error("singleton should be reused")
	}
}

func TestAddAttributeServices_Constructor(t *testing.T) {
	module := service.NewModule("dispatch",
		service.Type[Notifier](),
		service.Type[*EmailNotifier](service.Mark(service.Singleton, service.As[Notifier]())),
		service.Constructor(NewDispatcher, service.Mark(service.Transient)),
	)

	container := New()
	if err := container.AddAttributeServices(module); err != nil {
		t.Fatalf("AddAttributeServices failed: %v", err)
	}

	d, err := Resolve[*Dispatcher](container)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if d.Notifier == nil || d.Notifier.Notify("x") != "email:x" {
		t.Error("constructor dependency not resolved")
	}
}

func TestAddAttributeServices_TwiceDuplicates(t *testing.T) {
	container := New()
	_ = container.AddAttributeServices(notifierModule)
	_ = container.AddAttributeServices(notifierModule)

	all, err := container.MakeAll((*Notifier)(nil))
	if err != nil {
		t.Fatalf("MakeAll failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("got %d bindings, want 4", len(all))
	}
}

func TestAddAttributeServices_DefaultsToBuiltin(t *testing.T) {
	container := New()
	if err := container.AddAttributeServices(); err != nil {
		t.Fatalf("AddAttributeServices failed: %v", err)
	}

	sink, err := Resolve[service.Sink](container)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if _, ok := sink.(*service.Collection); !ok {
		t.Errorf("Sink resolved to %T, want *service.Collection", sink)
	}
	if !container.Has((*service.Collection)(nil)) {
		t.Error("expected self binding for *service.Collection")
	}
}

func TestAddAttributeServices_ConfigurationError(t *testing.T) {
	type Color int

	container := New()
	err := container.AddAttributeServices(service.NewModule("bad",
		service.Type[Notifier](service.Mark(service.Transient)),
		service.Type[*EmailNotifier](),
		service.Type[Color](service.Mark(service.Singleton)),
	))

	var cfgErr *service.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigurationError, got %v", err)
	}
	// bindings emitted before the error stay registered
	if !container.Has((*Notifier)(nil)) {
		t.Error("earlier bindings should not be rolled back")
	}
}

func TestAddAttributeServices_ContainerRejectsBinding(t *testing.T) {
	container := New()
	err := container.AddAttributeServices(service.NewModule("mismatch",
		service.Type[Notifier](service.Mark(service.Transient, service.ImplementedBy[*Dispatcher]())),
	))

	var invalid *InvalidBindingError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected InvalidBindingError from the container, got %T: %v", err, err)
	}
}

func TestAddAttributeServices_LogsToContainerLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	container := New(WithLogger(zap.New(core)))

	if err := container.AddAttributeServices(notifierModule); err != nil {
		t.Fatalf("AddAttributeServices failed: %v", err)
	}
	if logs.FilterMessage("adding service binding").Len() != 2 {
		t.Errorf("expected 2 scanner debug entries, got %d", logs.FilterMessage("adding service binding").Len())
	}
	if logs.FilterMessage("registered attributed services").Len() != 1 {
		t.Error("expected scan summary entry")
	}
}

func TestRegisterAttributedServices_ContainerAsSink(t *testing.T) {
	container := New()
	if err := service.RegisterAttributedServices(container, notifierModule); err != nil {
		t.Fatalf("RegisterAttributedServices failed: %v", err)
	}
	if len(container.Bindings()) != 2 {
		t.Errorf("got %d bindings, want 2", len(container.Bindings()))
	}
}

func TestAddSelf(t *testing.T) {
	container := New()
	if err := container.AddSelf((*EmailNotifier)(nil), LifetimeSingleton); err != nil {
		t.Fatalf("AddSelf failed: %v", err)
	}
	if container.Make((*EmailNotifier)(nil)) != container.Make((*EmailNotifier)(nil)) {
		t.Error("expected singleton self binding")
	}

	if err := container.AddSelf(nil, LifetimeTransient); err == nil {
		t.Error("expected error for nil token")
	}
}

func TestAddSingletons(t *testing.T) {
	container := New()
	email := &EmailNotifier{}
	cfg := struct{ Name string }{Name: "app"}

	if err := container.AddSingletons(email, cfg); err != nil {
		t.Fatalf("AddSingletons failed: %v", err)
	}
	if container.Make((*EmailNotifier)(nil)) != email {
		t.Error("expected the registered instance")
	}
	got, err := container.MakeSafe(cfg)
	if err != nil {
		t.Fatalf("MakeSafe failed: %v", err)
	}
	if got.(struct{ Name string }).Name != "app" {
		t.Errorf("unexpected value %v", got)
	}

	var invalid *InvalidBindingError
	if err := container.AddSingletons(nil); !errors.As(err, &invalid) {
		t.Errorf("Expected InvalidBindingError for nil instance, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	container := New()
	_ = container.AddAttributeServices(notifierModule)

	if n := container.Remove((*Notifier)(nil)); n != 2 {
		t.Errorf("Remove() = %d, want 2", n)
	}
	if container.Has((*Notifier)(nil)) {
		t.Error("bindings should be gone")
	}
	if n := container.Remove((*Notifier)(nil)); n != 0 {
		t.Errorf("second Remove() = %d, want 0", n)
	}
	if n := container.Remove(nil); n != 0 {
		t.Errorf("Remove(nil) = %d, want 0", n)
	}
}

func TestAddSingletons_RejectsTypedNil(t *testing.T) {
	container := New()

	var email *EmailNotifier
	var invalid *InvalidBindingError
	if err := container.AddSingletons(&SMSNotifier{}, email); !errors.As(err, &invalid) {
		t.Fatalf("Expected InvalidBindingError for typed nil instance, got %v", err)
	}
	if container.Has((*EmailNotifier)(nil)) {
		t.Error("typed nil instance should not be bound")
	}
	if !container.Has((*SMSNotifier)(nil)) {
		t.Error("instances before the nil one stay bound")
	}

	var lookup map[string]string
	if err := container.AddSingletons(lookup); !errors.As(err, &invalid) {
		t.Errorf("Expected InvalidBindingError for nil map, got %v", err)
	}
}

func TestRemove_AssignableServiceTypes(t *testing.T) {
	container := New()
	mustAdd[Notifier, *EmailNotifier](t, container, LifetimeTransient)
	mustAdd[*EmailNotifier, *EmailNotifier](t, container, LifetimeTransient)
	mustAdd[*SMSNotifier, *SMSNotifier](t, container, LifetimeSingleton)
	mustAdd[Auditor, *AuditedNotifier](t, container, LifetimeSingleton)

	if n := container.Remove((*Notifier)(nil)); n != 3 {
		t.Errorf("Remove() = %d, want 3", n)
	}
	for _, token := range []interface{}{(*Notifier)(nil), (*EmailNotifier)(nil), (*SMSNotifier)(nil)} {
		if container.Has(token) {
			t.Errorf("binding for %T should be gone", token)
		}
	}
	if !container.Has((*Auditor)(nil)) {
		t.Error("unrelated binding should be kept")
	}
}

func TestRemove_ConcreteTypeMatchesItself(t *testing.T) {
	container := New()
	mustAdd[Notifier, *EmailNotifier](t, container, LifetimeTransient)
	mustAdd[*EmailNotifier, *EmailNotifier](t, container, LifetimeTransient)

	if n := container.Remove((*EmailNotifier)(nil)); n != 1 {
		t.Errorf("Remove() = %d, want 1", n)
	}
	if !container.Has((*Notifier)(nil)) {
		t.Error("interface binding should be kept")
	}
}
