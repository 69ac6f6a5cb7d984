package nasc

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Disposable represents a service that requires cleanup.
// Services implementing this interface will have Dispose called
// when their scope (or, for singletons, the container) is disposed.
//
// Example:
//
//	type DatabaseConnection struct {}
//	func (d *DatabaseConnection) Dispose() error {
//	    return d.connection.Close()
//	}
type Disposable interface {
	Dispose() error
}

// Initializable represents a service that requires initialization.
// Services implementing this interface will have Initialize called
// after being created and wired.
type Initializable interface {
	Initialize() error
}

// Scope represents an isolated dependency resolution context.
// Scoped bindings create one instance per scope, allowing for request-scoped
// or transaction-scoped dependencies. Singletons are shared with the container.
//
// Example:
//
//	scope := container.CreateScope()
//	defer scope.Dispose()
//
//	// Scoped instances are unique to this scope
//	uow := scope.Make((*UnitOfWork)(nil)).(UnitOfWork)
type Scope struct {
	parent    *Nasc
	instances *instanceCache
	children  []*Scope
	disposed  bool
	mu        sync.RWMutex
}

// newScope creates a new scope with the given parent container.
func newScope(parent *Nasc) *Scope {
	return &Scope{
		parent:    parent,
		instances: newInstanceCache(),
	}
}

// Make resolves an instance within this scope. It panics on failure;
// use MakeSafe to get an error instead.
//
// Example:
//
//	service := scope.Make((*Service)(nil)).(Service)
func (s *Scope) Make(token interface{}) interface{} {
	instance, err := s.MakeSafe(token)
	if err != nil {
		panic(err.Error())
	}
	return instance
}

// MakeSafe resolves an instance within this scope.
// Scoped bindings are cached in the scope; singleton bindings are shared
// with the parent container.
func (s *Scope) MakeSafe(token interface{}) (interface{}, error) {
	if err := s.checkDisposed(); err != nil {
		return nil, err
	}
	t, err := tokenType(token)
	if err != nil {
		return nil, err
	}
	return s.parent.resolve(t, s, nil)
}

// MakeAll resolves every binding for the type within this scope.
func (s *Scope) MakeAll(token interface{}) ([]interface{}, error) {
	if err := s.checkDisposed(); err != nil {
		return nil, err
	}
	t, err := tokenType(token)
	if err != nil {
		return nil, err
	}
	return s.parent.resolveAll(t, s)
}

func (s *Scope) checkDisposed() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.disposed {
		return fmt.Errorf("cannot resolve from disposed scope")
	}
	return nil
}

// CreateChildScope creates a child scope with its own scoped instances.
// Child scopes are automatically disposed when the parent is disposed.
func (s *Scope) CreateChildScope() *Scope {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		panic("cannot create child scope from disposed scope")
	}

	child := newScope(s.parent)
	s.children = append(s.children, child)
	return child
}

// Dispose releases resources held by this scope.
// Child scopes are disposed first, then Dispose() is called on all instances
// implementing Disposable in reverse creation order.
// Disposing twice is a no-op. Hooks run without the scope lock held, so a
// hook that resolves from this scope gets an error instead of blocking.
func (s *Scope) Dispose() error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil
	}
	s.disposed = true
	children := s.children
	s.children = nil
	instances := s.instances.drain()
	s.mu.Unlock()

	var errs []error
	for _, child := range children {
		if err := child.Dispose(); err != nil {
			errs = append(errs, fmt.Errorf("child scope disposal error: %w", err))
		}
	}

	s.parent.logger.Debug("disposing scope", zap.Int("instances", len(instances)))
	if err := disposeAll(instances); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// disposeAll calls Dispose on every Disposable in order and collects errors.
func disposeAll(instances []interface{}) error {
	var errs []error
	for _, instance := range instances {
		if disposable, ok := instance.(Disposable); ok {
			if err := disposable.Dispose(); err != nil {
				errs = append(errs, fmt.Errorf("disposal error for %T: %w", instance, err))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("disposal encountered %d error(s): %w", len(errs), errors.Join(errs...))
	}
	return nil
}
