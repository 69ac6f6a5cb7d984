// Package registry provides thread-safe, ordered storage of container bindings.
package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/toutaio/toutago-nasc-registrar/service"
)

// Binding is a stored registration.
type Binding struct {
	// ServiceType is the type requested at resolution (e.g., Logger interface)
	ServiceType reflect.Type

	// ImplementationType is the type instantiated (e.g., *ConsoleLogger)
	ImplementationType reflect.Type

	// Lifetime defines how instances are reused
	Lifetime service.Lifetime

	// Constructor holds parsed constructor metadata owned by the container,
	// or nil when instances are allocated from ImplementationType
	Constructor interface{}

	// Seq is the registration order, assigned by Add
	Seq uint64
}

// Registry stores bindings in registration order. Several bindings may share
// a service type; the most recent one is the default.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type][]*Binding
	order  []reflect.Type
	seq    uint64
}

// New creates a new Registry instance.
func New() *Registry {
	return &Registry{
		byType: make(map[reflect.Type][]*Binding),
	}
}

// Add appends a binding. Duplicates are kept.
//
// This method is goroutine-safe.
func (r *Registry) Add(binding *Binding) error {
	if binding == nil {
		return fmt.Errorf("binding cannot be nil")
	}
	if binding.ServiceType == nil {
		return fmt.Errorf("binding service type cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	binding.Seq = r.seq

	if _, exists := r.byType[binding.ServiceType]; !exists {
		r.order = append(r.order, binding.ServiceType)
	}
	r.byType[binding.ServiceType] = append(r.byType[binding.ServiceType], binding)
	return nil
}

// Last returns the most recently added binding for serviceType.
//
// This method is goroutine-safe.
func (r *Registry) Last(serviceType reflect.Type) (*Binding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bindings := r.byType[serviceType]
	if len(bindings) == 0 {
		return nil, &BindingNotFoundError{Type: serviceType}
	}
	return bindings[len(bindings)-1], nil
}

// All returns every binding for serviceType in registration order.
// Returns an empty slice if none exist.
//
// This method is goroutine-safe.
func (r *Registry) All(serviceType reflect.Type) []*Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bindings := r.byType[serviceType]
	result := make([]*Binding, len(bindings))
	copy(result, bindings)
	return result
}

// Has reports whether at least one binding exists for serviceType.
//
// This method is goroutine-safe.
func (r *Registry) Has(serviceType reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byType[serviceType]) > 0
}

// Remove deletes every binding for serviceType and returns how many were
// removed.
//
// This method is goroutine-safe.
func (r *Registry) Remove(serviceType reflect.Type) int {
	return r.RemoveFunc(func(t reflect.Type) bool { return t == serviceType })
}

// RemoveFunc deletes the bindings of every service type for which match
// returns true and returns how many bindings were removed.
//
// This method is goroutine-safe.
func (r *Registry) RemoveFunc(match func(serviceType reflect.Type) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	kept := r.order[:0]
	for _, t := range r.order {
		if !match(t) {
			kept = append(kept, t)
			continue
		}
		removed += len(r.byType[t])
		delete(r.byType, t)
	}
	r.order = kept
	return removed
}

// Types returns the service types with bindings, in the order each was first
// registered.
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]reflect.Type, len(r.order))
	copy(types, r.order)
	return types
}

// Len returns the total number of bindings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, bindings := range r.byType {
		n += len(bindings)
	}
	return n
}

// Snapshot returns every binding in registration order.
func (r *Registry) Snapshot() []*Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*Binding
	for _, bindings := range r.byType {
		all = append(all, bindings...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Seq < all[j].Seq })
	return all
}

// BindingNotFoundError is returned when no binding exists for a type.
type BindingNotFoundError struct {
	Type reflect.Type
}

func (e *BindingNotFoundError) Error() string {
	return fmt.Sprintf("binding not found for type %v", e.Type)
}
