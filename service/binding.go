package service

import (
	"fmt"
	"reflect"
)

// Binding associates a service type with the type (or constructor) that
// implements it and a lifetime.
type Binding struct {
	ServiceType        reflect.Type
	ImplementationType reflect.Type

	// Factory is an optional constructor function producing
	// ImplementationType. Its parameters are resolved by the sink.
	Factory any

	Lifetime Lifetime
}

// String returns "service -> implementation (lifetime)".
func (b Binding) String() string {
	return fmt.Sprintf("%v -> %v (%s)", b.ServiceType, b.ImplementationType, b.Lifetime)
}

// Sink accepts bindings and makes them resolvable later. How duplicates,
// overrides and disposal behave is up to the sink.
type Sink interface {
	Add(Binding) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Binding) error

// Add calls f(b).
func (f SinkFunc) Add(b Binding) error {
	return f(b)
}

// Collection is an in-memory Sink that records bindings in order.
// It is not goroutine-safe.
type Collection struct {
	bindings []Binding
}

// Add appends b.
func (c *Collection) Add(b Binding) error {
	c.bindings = append(c.bindings, b)
	return nil
}

// Bindings returns a copy of the recorded bindings.
func (c *Collection) Bindings() []Binding {
	out := make([]Binding, len(c.bindings))
	copy(out, c.bindings)
	return out
}

// Len returns the number of recorded bindings.
func (c *Collection) Len() int {
	return len(c.bindings)
}
