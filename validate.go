package nasc

import (
	"fmt"
	"reflect"

	"github.com/toutaio/toutago-nasc-registrar/registry"
	"github.com/toutaio/toutago-nasc-registrar/service"
)

// Validate checks that every dependency of every binding can be resolved
// without building anything. It reports:
//   - constructor parameters and required inject fields with no binding
//   - singletons depending on scoped bindings
//
// All problems are returned together in a ValidationError.
func (n *Nasc) Validate() error {
	var errs []error

	for _, b := range n.registry.Snapshot() {
		for _, dep := range n.dependenciesOf(b) {
			if !n.registry.Has(dep.typ) {
				if dep.optional {
					continue
				}
				errs = append(errs, &ResolutionError{
					Type:    b.ServiceType,
					Context: dep.describe(),
					Cause:   &BindingNotFoundError{Type: dep.typ},
				})
				continue
			}

			target, err := n.registry.Last(dep.typ)
			if err == nil && b.Lifetime == service.Singleton && target.Lifetime == service.Scoped {
				errs = append(errs, &ResolutionError{
					Type:    b.ServiceType,
					Context: fmt.Sprintf("singleton depends on scoped %v through %s", dep.typ, dep.describe()),
				})
			}
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// dependency is one input needed to build a binding.
type dependency struct {
	typ      reflect.Type
	field    string
	param    int
	optional bool
}

func (d dependency) describe() string {
	if d.field != "" {
		return fmt.Sprintf("field %s (%v)", d.field, d.typ)
	}
	return fmt.Sprintf("constructor parameter %d (%v)", d.param, d.typ)
}

// dependenciesOf lists the constructor parameters or inject fields of b.
func (n *Nasc) dependenciesOf(b *registry.Binding) []dependency {
	if info, ok := b.Constructor.(*constructorInfo); ok {
		deps := make([]dependency, len(info.paramTypes))
		for i, t := range info.paramTypes {
			deps[i] = dependency{typ: t, param: i}
		}
		return deps
	}

	var deps []dependency
	for _, f := range n.injectableFields(b.ImplementationType) {
		deps = append(deps, dependency{typ: f.typ, field: f.name, optional: f.options.optional})
	}
	return deps
}
