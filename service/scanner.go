package service

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/toutaio/toutago-nasc-registrar/internal/reflectx"
)

// candidate is a declared type together with the module it came from.
type candidate struct {
	module string
	desc   TypeDescriptor
}

// Scanner walks modules and turns marked types into bindings.
// A Scanner holds no state between passes apart from a struct metadata cache.
type Scanner struct {
	logger *zap.Logger
	fields *reflectx.Cache
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithLogger sets the logger used to report emitted bindings.
func WithLogger(logger *zap.Logger) ScannerOption {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScanner creates a Scanner. Without WithLogger it logs nothing.
func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		logger: zap.NewNop(),
		fields: reflectx.NewCache(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterAttributedServices scans sources with a default Scanner and adds
// every resulting binding to sink. With no sources, Builtin is scanned.
func RegisterAttributedServices(sink Sink, sources ...*Module) error {
	return NewScanner().Register(sink, sources...)
}

// Register scans sources and adds every resulting binding to sink, in
// discovery order. With no sources, Builtin is scanned.
//
// Errors returned by sink are passed through unchanged. Bindings added
// before an error stay added. Bindings are never deduplicated, so
// registering the same sources twice duplicates them.
func (s *Scanner) Register(sink Sink, sources ...*Module) error {
	if sink == nil {
		return &ConfigurationError{Reason: "sink cannot be nil"}
	}
	if len(sources) == 0 {
		sources = []*Module{Builtin}
	}

	candidates, err := collect(sources)
	if err != nil {
		return err
	}

	emitted := 0
	for _, c := range candidates {
		bindings, err := s.bindingsFor(c, candidates)
		if err != nil {
			return err
		}

		for _, b := range bindings {
			s.logger.Debug("adding service binding",
				zap.String("module", c.module),
				zap.Stringer("service", b.ServiceType),
				zap.Stringer("implementation", b.ImplementationType),
				zap.Stringer("lifetime", b.Lifetime),
			)
			if err := sink.Add(b); err != nil {
				return err
			}
			emitted++
		}
	}

	s.logger.Info("registered attributed services",
		zap.Strings("modules", moduleNames(sources)),
		zap.Int("types", len(candidates)),
		zap.Int("bindings", emitted),
	)
	return nil
}

// Plan computes the bindings Register would add, without a sink.
func (s *Scanner) Plan(sources ...*Module) ([]Binding, error) {
	var c Collection
	if err := s.Register(&c, sources...); err != nil {
		return nil, err
	}
	return c.Bindings(), nil
}

// collect returns the union of all declared types. A type declared in more
// than one place keeps its first position and module, and its declarations
// are merged so the union does not depend on source order.
func collect(sources []*Module) ([]candidate, error) {
	index := make(map[reflect.Type]int)
	var candidates []candidate

	for i, m := range sources {
		if m == nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("source module %d is nil", i)}
		}
		for _, d := range m.types {
			if d.Type == nil {
				if d.invalid == "" {
					d.invalid = "nil type"
				}
				candidates = append(candidates, candidate{module: m.name, desc: d})
				continue
			}
			if d.invalid == "" {
				d.Kind = KindOf(d.Type)
			}

			at, ok := index[d.Type]
			if !ok {
				index[d.Type] = len(candidates)
				candidates = append(candidates, candidate{module: m.name, desc: d})
				continue
			}
			merged, err := merge(candidates[at], candidate{module: m.name, desc: d})
			if err != nil {
				return nil, err
			}
			candidates[at] = merged
		}
	}
	return candidates, nil
}

// merge folds a repeated declaration of the same type into the first one.
// Marker and factory may be set by either declaration, but not differently
// by both.
func merge(first, next candidate) (candidate, error) {
	d, n := &first.desc, next.desc
	if d.invalid == "" && n.invalid != "" {
		d.invalid = n.invalid
		first.module = next.module
	}

	switch {
	case n.Marker == nil:
	case d.Marker == nil:
		m := *n.Marker
		d.Marker = &m
	case d.Marker.ServiceType != n.Marker.ServiceType || d.Marker.Lifetime != n.Marker.Lifetime:
		return first, &ConfigurationError{
			Module: next.module,
			Type:   d.Type,
			Reason: fmt.Sprintf("conflicting markers in modules %q and %q", first.module, next.module),
		}
	}

	switch {
	case n.Factory == nil:
	case d.Factory == nil:
		d.Factory = n.Factory
	case !sameFactory(d.Factory, n.Factory):
		return first, &ConfigurationError{
			Module: next.module,
			Type:   d.Type,
			Reason: fmt.Sprintf("conflicting constructors in modules %q and %q", first.module, next.module),
		}
	}

	d.NoAutoBind = d.NoAutoBind || n.NoAutoBind
	return first, nil
}

// bindingsFor resolves the bindings of a single candidate. Unmarked
// candidates produce none.
func (s *Scanner) bindingsFor(c candidate, all []candidate) ([]Binding, error) {
	if c.desc.invalid != "" {
		return nil, &ConfigurationError{Module: c.module, Type: c.desc.Type, Reason: c.desc.invalid}
	}

	marker, err := s.markerOf(c)
	if err != nil {
		return nil, err
	}
	if marker == nil {
		return nil, nil
	}
	if !marker.Lifetime.Valid() {
		return nil, &ConfigurationError{
			Module: c.module,
			Type:   c.desc.Type,
			Reason: fmt.Sprintf("invalid lifetime %s", marker.Lifetime),
		}
	}

	t := c.desc.Type
	switch c.desc.Kind {
	case KindInterface:
		if marker.ServiceType != nil {
			return []Binding{{
				ServiceType:        t,
				ImplementationType: marker.ServiceType,
				Factory:            factoryOf(marker.ServiceType, all),
				Lifetime:           marker.Lifetime,
			}}, nil
		}

		var bindings []Binding
		for _, impl := range all {
			if impl.desc.Kind != KindClass || !impl.desc.Type.Implements(t) {
				continue
			}
			bindings = append(bindings, Binding{
				ServiceType:        t,
				ImplementationType: impl.desc.Type,
				Factory:            impl.desc.Factory,
				Lifetime:           marker.Lifetime,
			})
		}
		return bindings, nil

	case KindClass:
		if marker.ServiceType != nil {
			return []Binding{{
				ServiceType:        marker.ServiceType,
				ImplementationType: t,
				Factory:            c.desc.Factory,
				Lifetime:           marker.Lifetime,
			}}, nil
		}

		var bindings []Binding
		for _, iface := range all {
			if iface.desc.Kind != KindInterface || iface.desc.NoAutoBind || !t.Implements(iface.desc.Type) {
				continue
			}
			bindings = append(bindings, Binding{
				ServiceType:        iface.desc.Type,
				ImplementationType: t,
				Factory:            c.desc.Factory,
				Lifetime:           marker.Lifetime,
			})
		}
		// The concrete type stays resolvable on its own.
		bindings = append(bindings, Binding{
			ServiceType:        t,
			ImplementationType: t,
			Factory:            c.desc.Factory,
			Lifetime:           marker.Lifetime,
		})
		return bindings, nil

	default:
		return nil, &ConfigurationError{
			Module: c.module,
			Type:   t,
			Reason: fmt.Sprintf("marker applied to %v type; only interfaces and classes can be services", t.Kind()),
		}
	}
}

// markerOf returns the explicit marker of c, or the one declared by an
// embedded Marked field.
func (s *Scanner) markerOf(c candidate) (*Marker, error) {
	if c.desc.Marker != nil {
		m := *c.desc.Marker
		return &m, nil
	}
	if c.desc.Kind != KindClass {
		return nil, nil
	}

	for _, f := range s.fields.Fields(c.desc.Type) {
		if !f.Anonymous || f.Type != markedType {
			continue
		}
		lifetime, err := parseMarkerTag(f.Tag.Get(TagName))
		if err != nil {
			return nil, &ConfigurationError{Module: c.module, Type: c.desc.Type, Reason: err.Error()}
		}
		return &Marker{Lifetime: lifetime}, nil
	}
	return nil, nil
}

// factoryOf returns the constructor declared for t among the candidates.
func factoryOf(t reflect.Type, all []candidate) any {
	for _, c := range all {
		if c.desc.Type == t {
			return c.desc.Factory
		}
	}
	return nil
}

// sameFactory reports whether a and b are the same constructor function.
func sameFactory(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() != reflect.Func || vb.Kind() != reflect.Func {
		return false
	}
	return va.Type() == vb.Type() && va.Pointer() == vb.Pointer()
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return t.Kind().String()
}

func moduleNames(sources []*Module) []string {
	names := make([]string, len(sources))
	for i, m := range sources {
		names[i] = m.name
	}
	return names
}
