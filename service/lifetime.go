package service

import (
	"fmt"
	"strings"
)

// Lifetime controls how long a resolved instance is reused by the host container.
type Lifetime int

const (
	// Transient creates a new instance on every resolution.
	// It is the zero value and therefore the default for markers.
	Transient Lifetime = iota

	// Scoped creates one instance per logical scope (typically a request).
	Scoped

	// Singleton creates one instance for the lifetime of the container.
	Singleton
)

// String returns the lower-case name of the lifetime.
func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	case Singleton:
		return "singleton"
	default:
		return fmt.Sprintf("lifetime(%d)", int(l))
	}
}

// Valid reports whether l is one of the declared lifetimes.
func (l Lifetime) Valid() bool {
	return l >= Transient && l <= Singleton
}

// ParseLifetime parses a lifetime name. Matching is case-insensitive and
// surrounding whitespace is ignored.
func ParseLifetime(s string) (Lifetime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "transient":
		return Transient, nil
	case "scoped":
		return Scoped, nil
	case "singleton":
		return Singleton, nil
	default:
		return Transient, fmt.Errorf("unknown lifetime %q", s)
	}
}
