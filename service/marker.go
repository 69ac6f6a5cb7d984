package service

import (
	"fmt"
	"reflect"
	"strings"
)

// TagName is the struct tag key read from an embedded Marked field.
const TagName = "nasc"

// Marker declares that a type participates in automatic registration.
//
// A nil ServiceType means "infer": interfaces bind to every class in the
// scanned sources that implements them, classes bind to every interface they
// implement plus themselves.
type Marker struct {
	ServiceType reflect.Type
	Lifetime    Lifetime
}

// Marked can be embedded in a struct to mark it from its own definition
// instead of through Mark:
//
//	type Mailer struct {
//	    service.Marked `nasc:"lifetime=singleton"`
//	}
//
// An empty tag marks the type Transient.
type Marked struct{}

var markedType = reflect.TypeOf(Marked{})

// MarkerOption configures a Marker.
type MarkerOption func(*Marker)

// As sets the explicit service type of a marker to the interface or type I.
func As[I any]() MarkerOption {
	return AsType(reflect.TypeOf((*I)(nil)).Elem())
}

// ImplementedBy is As spelled for markers on interfaces, where the explicit
// type is the implementation.
func ImplementedBy[C any]() MarkerOption {
	return As[C]()
}

// AsType sets the explicit service type of a marker.
func AsType(t reflect.Type) MarkerOption {
	return func(m *Marker) {
		m.ServiceType = t
	}
}

// parseMarkerTag parses the value of a `nasc` tag.
// Supported formats:
//   - `nasc:""` - transient
//   - `nasc:"singleton"` - bare lifetime name
//   - `nasc:"lifetime=scoped"` - keyed lifetime
func parseMarkerTag(tag string) (Lifetime, error) {
	lifetime := Transient
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		value := part
		if key, v, found := strings.Cut(part, "="); found {
			if strings.TrimSpace(key) != "lifetime" {
				return Transient, fmt.Errorf("unknown %s tag option %q", TagName, key)
			}
			value = v
		}

		lt, err := ParseLifetime(value)
		if err != nil {
			return Transient, err
		}
		lifetime = lt
	}
	return lifetime, nil
}
