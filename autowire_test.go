package nasc

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// Test service with dependencies
type ServiceWithDeps struct {
	Logger   Logger   `inject:""`
	Database Database `inject:""`
}

type ServiceWithOptional struct {
	Logger   Logger   `inject:""`
	Database Database `inject:"optional"` // may not be bound
}

type ServicePartialTags struct {
	Logger   Logger `inject:""`
	Database Database
}

type ServiceSkipped struct {
	Logger   Logger   `inject:""`
	Database Database `inject:"-"`
}

type ServiceNoTags struct {
	Logger   Logger
	Database Database
}

type ServiceUnexported struct {
	logger Logger `inject:""`
}

// optionalWithBrokenDep has an optional field whose binding exists but fails.
type optionalWithBrokenDep struct {
	Service ConstructorService `inject:"optional"`
}

func TestAutoWire_BasicInjection(t *testing.T) {
	container := New()
	mustAdd[Logger, *ConsoleLogger](t, container, LifetimeTransient)
	mustAdd[Database, *MockDB](t, container, LifetimeTransient)

	svc := &ServiceWithDeps{}
	if err := container.AutoWire(svc); err != nil {
		t.Fatalf("AutoWire failed: %v", err)
	}
	if svc.Logger == nil {
		t.Error("Logger was not injected")
	}
	if svc.Database == nil {
		t.Error("Database was not injected")
	}
}

func TestAutoWire_OptionalDependency(t *testing.T) {
	container := New()
	mustAdd[Logger, *ConsoleLogger](t, container, LifetimeTransient)

	svc := &ServiceWithOptional{}
	if err := container.AutoWire(svc); err != nil {
		t.Fatalf("AutoWire should not fail with optional dependency: %v", err)
	}
	if svc.Logger == nil {
		t.Error("Logger was not injected")
	}
	if svc.Database != nil {
		t.Error("Database should remain nil")
	}
}

func TestAutoWire_OptionalDependencyFailingBuild(t *testing.T) {
	container := New()
	// The binding exists but its own dependency is missing
	addFactory[ConstructorService](t, container, NewServiceWithLogger, LifetimeTransient)

	err := container.AutoWire(&optionalWithBrokenDep{})
	if err == nil {
		t.Fatal("Expected failure of a bound optional dependency to surface")
	}
	if !strings.Contains(err.Error(), "failed to inject field Service") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAutoWire_PartialTags(t *testing.T) {
	container := New()
	mustAdd[Logger, *ConsoleLogger](t, container, LifetimeTransient)
	mustAdd[Database, *MockDB](t, container, LifetimeTransient)

	svc := &ServicePartialTags{}
	if err := container.AutoWire(svc); err != nil {
		t.Fatalf("AutoWire failed: %v", err)
	}
	if svc.Logger == nil {
		t.Error("Logger was not injected")
	}
	if svc.Database != nil {
		t.Error("Untagged Database should not be injected")
	}
}

func TestAutoWire_SkipTag(t *testing.T) {
	container := New()
	mustAdd[Logger, *ConsoleLogger](t, container, LifetimeTransient)

	svc := &ServiceSkipped{}
	if err := container.AutoWire(svc); err != nil {
		t.Fatalf("AutoWire failed: %v", err)
	}
	if svc.Database != nil {
		t.Error(`Field tagged inject:"-" should not be injected`)
	}
}

func TestAutoWire_NoTags(t *testing.T) {
	container := New()
	mustAdd[Logger, *ConsoleLogger](t, container, LifetimeTransient)

	svc := &ServiceNoTags{}
	if err := container.AutoWire(svc); err != nil {
		t.Fatalf("AutoWire failed: %v", err)
	}
	if svc.Logger != nil || svc.Database != nil {
		t.Error("No fields should be injected without tags")
	}
}

func TestAutoWire_UnexportedIgnored(t *testing.T) {
	container := New()
	if err := container.AutoWire(&ServiceUnexported{}); err != nil {
		t.Fatalf("unexported inject field should be ignored: %v", err)
	}
}

func TestAutoWire_NilInstance(t *testing.T) {
	container := New()
	if err := container.AutoWire(nil); err == nil {
		t.Error("Expected error for nil instance")
	}
	var nilPtr *ServiceWithDeps
	if err := container.AutoWire(nilPtr); err == nil {
		t.Error("Expected error for nil pointer")
	}
}

func TestAutoWire_NotAPointer(t *testing.T) {
	container := New()
	if err := container.AutoWire(ServiceWithDeps{}); err == nil {
		t.Error("Expected error for non-pointer")
	}
	n := 3
	if err := container.AutoWire(&n); err == nil {
		t.Error("Expected error for pointer to non-struct")
	}
}

func TestAutoWire_MissingDependency(t *testing.T) {
	container := New()

	err := container.AutoWire(&ServiceWithDeps{})
	var notFound *BindingNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected BindingNotFoundError, got %v", err)
	}
}

func TestAutoWire_SingletonInjection(t *testing.T) {
	container := New()
	mustAdd[Logger, *ConsoleLogger](t, container, LifetimeSingleton)
	mustAdd[Database, *MockDB](t, container, LifetimeTransient)

	svc1 := &ServiceWithDeps{}
	svc2 := &ServiceWithDeps{}
	_ = container.AutoWire(svc1)
	_ = container.AutoWire(svc2)

	if svc1.Logger != svc2.Logger {
		t.Error("Singleton logger should be shared")
	}
	if svc1.Database == svc2.Database {
		t.Error("Transient database should not be shared")
	}
}

func TestAutoWire_DuringMake(t *testing.T) {
	container := New()
	mustAdd[Logger, *ConsoleLogger](t, container, LifetimeTransient)
	mustAdd[Database, *MockDB](t, container, LifetimeTransient)
	mustAdd[*ServiceWithDeps, *ServiceWithDeps](t, container, LifetimeTransient)

	svc := container.Make((*ServiceWithDeps)(nil)).(*ServiceWithDeps)
	if svc.Logger == nil || svc.Database == nil {
		t.Error("Expected fields to be wired when the container builds the instance")
	}
}

func TestParseInjectTag(t *testing.T) {
	tests := []struct {
		tag      string
		skip     bool
		optional bool
	}{
		{"", false, false},
		{"optional", false, true},
		{" optional ", false, true},
		{"-", true, false},
		{"something,optional", false, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.tag), func(t *testing.T) {
			opts := parseInjectTag(tt.tag)
			if opts.skip != tt.skip {
				t.Errorf("skip = %v, want %v", opts.skip, tt.skip)
			}
			if opts.optional != tt.optional {
				t.Errorf("optional = %v, want %v", opts.optional, tt.optional)
			}
		})
	}
}

func ExampleNasc_AutoWire() {
	type Service struct {
		Logger Logger `inject:""`
	}

	container := New()
	_ = container.Add(bindingOf[Logger, *ConsoleLogger](LifetimeTransient))

	svc := &Service{}
	if err := container.AutoWire(svc); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(svc.Logger != nil)
	// Output: true
}

func BenchmarkAutoWire(b *testing.B) {
	container := New()
	mustAdd[Logger, *ConsoleLogger](b, container, LifetimeSingleton)
	mustAdd[Database, *MockDB](b, container, LifetimeSingleton)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = container.AutoWire(&ServiceWithDeps{})
	}
}
