package nasc

import (
	"errors"
	"strings"
	"testing"
)

type singletonNeedsScoped struct {
	Service *disposableService `inject:""`
}

func TestValidate_AllBindingsValid(t *testing.T) {
	container := New()
	mustAdd[Logger, *ConsoleLogger](t, container, LifetimeTransient)
	mustAdd[Database, *MockDB](t, container, LifetimeSingleton)
	addFactory[ConstructorService](t, container, NewServiceWithDeps, LifetimeTransient)
	mustAdd[*ServiceWithOptional, *ServiceWithOptional](t, container, LifetimeTransient)

	if err := container.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidate_EmptyContainer(t *testing.T) {
	if err := New().Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidate_MissingDependency(t *testing.T) {
	container := New()
	addFactory[ConstructorService](t, container, NewServiceWithDeps, LifetimeTransient)
	mustAdd[*ServiceWithDeps, *ServiceWithDeps](t, container, LifetimeTransient)

	err := container.Validate()
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	// two constructor parameters and two fields
	if len(valErr.Errors) != 4 {
		t.Fatalf("got %d errors, want 4: %v", len(valErr.Errors), valErr)
	}

	var notFound *BindingNotFoundError
	if !errors.As(err, &notFound) {
		t.Error("Expected BindingNotFoundError in the chain")
	}
	if !strings.Contains(err.Error(), "field Logger") {
		t.Errorf("Error should name the field, got %v", err)
	}
}

func TestValidate_SingletonDependsOnScoped(t *testing.T) {
	container := New()
	mustAdd[*disposableService, *disposableService](t, container, LifetimeScoped)
	mustAdd[*singletonNeedsScoped, *singletonNeedsScoped](t, container, LifetimeSingleton)

	err := container.Validate()
	if err == nil {
		t.Fatal("Expected a lifetime validation error")
	}
	if !strings.Contains(err.Error(), "singleton depends on scoped") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_DoesNotBuild(t *testing.T) {
	calls := 0
	container := New()
	addFactory[ConstructorService](t, container, func() *BasicConstructorService {
		calls++
		return &BasicConstructorService{}
	}, LifetimeSingleton)

	if err := container.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if calls != 0 {
		t.Error("Validate should not invoke constructors")
	}
}

func BenchmarkValidation(b *testing.B) {
	container := New()
	mustAdd[Logger, *ConsoleLogger](b, container, LifetimeSingleton)
	mustAdd[Database, *MockDB](b, container, LifetimeSingleton)
	addFactory[ConstructorService](b, container, NewServiceWithDeps, LifetimeTransient)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = container.Validate()
	}
}
