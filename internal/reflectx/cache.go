// Package reflectx caches struct metadata used by field injection and marker
// discovery.
package reflectx

import (
	"reflect"
	"sync"
)

// ErrorType is the reflect.Type of the built-in error interface.
var ErrorType = reflect.TypeOf((*error)(nil)).Elem()

// Field describes one struct field.
type Field struct {
	Index     int
	Name      string
	Type      reflect.Type
	Tag       reflect.StructTag
	Exported  bool
	Anonymous bool
}

// Cache memoizes the field list of struct types. The zero value is not
// usable; construct one with NewCache.
type Cache struct {
	mu     sync.RWMutex
	fields map[reflect.Type][]Field
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		fields: make(map[reflect.Type][]Field),
	}
}

// Fields returns the fields of typ, dereferencing one level of pointer.
// Non-struct types yield nil.
//
// This method is goroutine-safe.
func (c *Cache) Fields(typ reflect.Type) []Field {
	if typ == nil {
		return nil
	}
	typ = Indirect(typ)

	c.mu.RLock()
	fields, exists := c.fields[typ]
	c.mu.RUnlock()
	if exists {
		return fields
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if fields, exists = c.fields[typ]; exists {
		return fields
	}

	if typ.Kind() != reflect.Struct {
		c.fields[typ] = nil
		return nil
	}

	fields = make([]Field, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		fields = append(fields, Field{
			Index:     i,
			Name:      f.Name,
			Type:      f.Type,
			Tag:       f.Tag,
			Exported:  f.IsExported(),
			Anonymous: f.Anonymous,
		})
	}

	c.fields[typ] = fields
	return fields
}

// Len returns the number of cached types.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.fields)
}

// Reset drops all cached entries.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields = make(map[reflect.Type][]Field)
}

// Indirect returns the element type of a pointer type, or typ itself.
func Indirect(typ reflect.Type) reflect.Type {
	if typ != nil && typ.Kind() == reflect.Ptr {
		return typ.Elem()
	}
	return typ
}

// IsStructOrStructPtr reports whether typ is a struct or a pointer to one.
func IsStructOrStructPtr(typ reflect.Type) bool {
	if typ == nil {
		return false
	}
	return Indirect(typ).Kind() == reflect.Struct
}
