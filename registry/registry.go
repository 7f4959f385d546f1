// Package registry implements the name→instance cache of spec.md §4.7: a
// registry returns the existing instance for a name or creates one on
// first access, atomically, so concurrent first-access from multiple
// goroutines never double-constructs the underlying policy.
package registry

import "sync"

// Registry is a generic name→instance cache, parameterized at construction
// by the type it holds (typically *breaker.CircuitBreaker or
// *ratelimiter.AtomicRateLimiter). Lookup and creation are linearizable:
// two goroutines racing to GetOrCreate the same name are guaranteed to
// observe the same instance, and the factory runs at most once per name.
type Registry[T any] struct {
	defaultFactory func() T
	entries        sync.Map // name -> *slot[T]
}

type slot[T any] struct {
	once sync.Once
	val  T
}

// New creates a Registry whose Get falls back to defaultFactory when a
// name has never been created. defaultFactory may be nil if every caller
// is expected to use GetOrCreate with an explicit factory instead.
func New[T any](defaultFactory func() T) *Registry[T] {
	return &Registry[T]{defaultFactory: defaultFactory}
}

// Get returns the existing instance for name, creating it with the
// registry's default factory if absent.
func (r *Registry[T]) Get(name string) T {
	return r.GetOrCreate(name, r.defaultFactory)
}

// GetOrCreate returns the existing instance for name, or creates one using
// factory and registers it atomically if absent. If an instance already
// exists under name, factory is ignored (it may not even run) and the
// existing instance is returned, per §4.7's "config ignored if present"
// rule generalized to an arbitrary factory.
//
// LoadOrStore stores an empty slot before any factory has run, so every
// racing caller gets the same slot; the sync.Once inside that slot runs
// exactly one factory and makes the other callers wait until it has
// returned, so none of them sees the slot's value before it is set.
func (r *Registry[T]) GetOrCreate(name string, factory func() T) T {
	actual, _ := r.entries.LoadOrStore(name, &slot[T]{})
	s := actual.(*slot[T])
	s.once.Do(func() {
		if factory != nil {
			s.val = factory()
		}
	})
	return s.val
}

// Remove evicts name from the registry, if present. It does not affect an
// instance already handed out to a caller; it only stops Get/GetOrCreate
// from returning that instance for future lookups of the same name.
func (r *Registry[T]) Remove(name string) {
	r.entries.Delete(name)
}

// Names returns the set of names currently registered, in no particular
// order.
func (r *Registry[T]) Names() []string {
	var names []string
	r.entries.Range(func(key, _ any) bool {
		names = append(names, key.(string))
		return true
	})
	return names
}
