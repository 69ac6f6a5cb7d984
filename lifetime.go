package nasc

import "github.com/toutaio/toutago-nasc-registrar/service"

// Lifetime represents the lifecycle strategy for a bound dependency.
type Lifetime = service.Lifetime

const (
	// LifetimeTransient creates a new instance on every resolution.
	LifetimeTransient = service.Transient

	// LifetimeScoped creates one instance per scope.
	// Each scope maintains its own instance cache, isolated from other scopes.
	LifetimeScoped = service.Scoped

	// LifetimeSingleton creates a single instance per binding, created lazily
	// on first resolution.
	LifetimeSingleton = service.Singleton
)
