package nasc

import (
	"sync"

	"github.com/toutaio/toutago-nasc-registrar/registry"
)

// cachedInstance holds a lazily created value and ensures it's created only once.
type cachedInstance struct {
	value interface{}
	err   error
	once  sync.Once
}

// instanceCache stores one instance per binding. The container uses it for
// singletons and every Scope owns one for scoped bindings.
type instanceCache struct {
	mu        sync.Mutex
	instances map[*registry.Binding]*cachedInstance

	// created lists successfully created values in creation order,
	// for reverse-order disposal
	created []interface{}
}

func newInstanceCache() *instanceCache {
	return &instanceCache{
		instances: make(map[*registry.Binding]*cachedInstance),
	}
}

// getOrCreate retrieves the instance for binding or creates it using the
// provided factory. The factory is called exactly once per binding, even under
// concurrent access, and a failed creation is not retried.
//
// This method is goroutine-safe.
func (c *instanceCache) getOrCreate(binding *registry.Binding, factory func() (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	instance, exists := c.instances[binding]
	if !exists {
		instance = &cachedInstance{}
		c.instances[binding] = instance
	}
	c.mu.Unlock()

	// The factory may resolve other bindings from this cache, so it runs outside the lock
	instance.once.Do(func() {
		instance.value, instance.err = factory()
		if instance.err == nil {
			c.mu.Lock()
			c.created = append(c.created, instance.value)
			c.mu.Unlock()
		}
	})

	return instance.value, instance.err
}

// drain returns created values in reverse creation order and empties the cache.
func (c *instanceCache) drain() []interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	reversed := make([]interface{}, 0, len(c.created))
	for i := len(c.created) - 1; i >= 0; i-- {
		reversed = append(reversed, c.created[i])
	}

	c.instances = make(map[*registry.Binding]*cachedInstance)
	c.created = nil
	return reversed
}

// len returns the number of created instances.
func (c *instanceCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.created)
}
