package service

import (
	"fmt"
	"reflect"
)

// ConfigurationError reports a marker or module declaration that can never
// produce valid bindings. It is a programming error in the caller and is
// meant to stop startup.
type ConfigurationError struct {
	Module string
	Type   reflect.Type
	Reason string
}

func (e *ConfigurationError) Error() string {
	typeStr := "<nil>"
	if e.Type != nil {
		typeStr = e.Type.String()
	}
	if e.Module == "" {
		return fmt.Sprintf("service configuration: %s: %s", typeStr, e.Reason)
	}
	return fmt.Sprintf("service configuration: module %s: %s: %s", e.Module, typeStr, e.Reason)
}
