package nasc

import (
	"fmt"
	"reflect"

	"github.com/toutaio/toutago-nasc-registrar/internal/reflectx"
)

// ConstructorFunc represents a constructor function type.
// Supported signatures:
//   - func() T
//   - func() (T, error)
//   - func(Dep1, Dep2, ...) T
//   - func(Dep1, Dep2, ...) (T, error)
//
// Each parameter is resolved from the container by its exact type.
type ConstructorFunc interface{}

// constructorInfo holds metadata about a constructor function.
type constructorInfo struct {
	fn           reflect.Value
	paramTypes   []reflect.Type
	returnsError bool
	returnType   reflect.Type
}

// parseConstructor analyzes a constructor function and extracts metadata.
func parseConstructor(constructor ConstructorFunc) (*constructorInfo, error) {
	if constructor == nil {
		return nil, fmt.Errorf("constructor cannot be nil")
	}

	fnValue := reflect.ValueOf(constructor)
	fnType := fnValue.Type()

	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("constructor must be a function, got %v", fnType.Kind())
	}
	if fnType.IsVariadic() {
		return nil, fmt.Errorf("constructor cannot be variadic")
	}

	numOut := fnType.NumOut()
	if numOut == 0 || numOut > 2 {
		return nil, fmt.Errorf("constructor must return (T) or (T, error), got %d return values", numOut)
	}

	returnType := fnType.Out(0)
	if returnType.Kind() == reflect.Interface {
		return nil, fmt.Errorf("constructor must return a concrete type, got interface %v", returnType)
	}

	returnsError := false
	if numOut == 2 {
		if fnType.Out(1) != reflectx.ErrorType {
			return nil, fmt.Errorf("constructor's second return value must be error, got %v", fnType.Out(1))
		}
		returnsError = true
	}

	paramTypes := make([]reflect.Type, fnType.NumIn())
	for i := range paramTypes {
		paramTypes[i] = fnType.In(i)
	}

	return &constructorInfo{
		fn:           fnValue,
		paramTypes:   paramTypes,
		returnsError: returnsError,
		returnType:   returnType,
	}, nil
}

// invokeConstructor calls a constructor with resolved dependencies.
func (n *Nasc) invokeConstructor(info *constructorInfo, scope *Scope, path []reflect.Type) (interface{}, error) {
	params := make([]reflect.Value, len(info.paramTypes))
	for i, paramType := range info.paramTypes {
		resolved, err := n.resolve(paramType, scope, path)
		if err != nil {
			return nil, &ResolutionError{
				Type:    info.returnType,
				Context: fmt.Sprintf("constructor parameter %d (%v)", i, paramType),
				Cause:   err,
			}
		}
		params[i] = valueFor(resolved, paramType)
	}

	results := info.fn.Call(params)

	if info.returnsError {
		if errValue := results[1]; !errValue.IsNil() {
			return nil, fmt.Errorf("constructor returned error: %w", errValue.Interface().(error))
		}
	}

	return results[0].Interface(), nil
}

// valueFor wraps a resolved instance as a value of typ, keeping nil instances
// as typed zero values.
func valueFor(instance interface{}, typ reflect.Type) reflect.Value {
	if instance == nil {
		return reflect.Zero(typ)
	}
	return reflect.ValueOf(instance)
}
