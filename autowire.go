package nasc

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// tagOptions represents parsed options from an inject tag.
type tagOptions struct {
	skip     bool // Don't inject this field
	optional bool // Leave the field unset if no binding exists
}

// parseInjectTag parses an inject struct tag and returns options.
// Supported formats:
//   - `inject:""` - required injection
//   - `inject:"optional"` - optional injection
//   - `inject:"-"` - never injected
func parseInjectTag(tag string) tagOptions {
	opts := tagOptions{}

	if tag == "-" {
		opts.skip = true
		return opts
	}

	for _, part := range strings.Split(tag, ",") {
		if strings.TrimSpace(part) == "optional" {
			opts.optional = true
		}
	}

	return opts
}

// injectableField is a struct field to resolve.
type injectableField struct {
	name    string
	index   int
	typ     reflect.Type
	options tagOptions
}

// injectableFields lists the exported, inject-tagged fields of typ.
func (n *Nasc) injectableFields(typ reflect.Type) []injectableField {
	var fields []injectableField
	for _, f := range n.fields.Fields(typ) {
		tag, ok := f.Tag.Lookup("inject")
		if !ok || !f.Exported {
			continue
		}
		opts := parseInjectTag(tag)
		if opts.skip {
			continue
		}
		fields = append(fields, injectableField{
			name:    f.Name,
			index:   f.Index,
			typ:     f.Type,
			options: opts,
		})
	}
	return fields
}

// AutoWire injects dependencies from the container into the tagged fields of
// an existing struct.
//
// Supported tag options:
//   - `inject:""` - required (error if no binding exists)
//   - `inject:"optional"` - skipped if no binding exists
//   - `inject:"-"` - ignored
//
// Example:
//
//	type Service struct {
//	    Logger Logger `inject:""`
//	    Cache  Cache  `inject:"optional"`
//	}
//
//	service := &Service{}
//	err := container.AutoWire(service)
func (n *Nasc) AutoWire(instance interface{}) error {
	if instance == nil {
		return fmt.Errorf("cannot auto-wire nil instance")
	}

	value := reflect.ValueOf(instance)
	if value.Kind() != reflect.Ptr || value.IsNil() {
		return fmt.Errorf("AutoWire requires a non-nil pointer to struct, got %T", instance)
	}
	if value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("AutoWire requires a pointer to struct, got pointer to %v", value.Elem().Kind())
	}

	return n.autoWire(value, nil, nil)
}

// autoWire fills the injectable fields of ptr, a pointer to struct.
func (n *Nasc) autoWire(ptr reflect.Value, scope *Scope, path []reflect.Type) error {
	elem := ptr.Elem()
	for _, field := range n.injectableFields(elem.Type()) {
		resolved, err := n.resolve(field.typ, scope, path)
		if err != nil {
			var notFound *BindingNotFoundError
			if field.options.optional && errors.As(err, &notFound) && notFound.Type == field.typ {
				continue
			}
			return fmt.Errorf("failed to inject field %s: %w", field.name, err)
		}

		fieldValue := elem.Field(field.index)
		resolvedValue := valueFor(resolved, field.typ)
		if !resolvedValue.Type().AssignableTo(field.typ) {
			return fmt.Errorf("resolved type %v is not assignable to field %s of type %v",
				resolvedValue.Type(), field.name, field.typ)
		}
		fieldValue.Set(resolvedValue)
	}
	return nil
}
