package di

import "sync"

// Shared is a definition whose first successful result is reused forever.
//
// The cache belongs to the Shared value, not to a view: every view and every
// provider that holds the same Shared sees the same instance.
type Shared struct {
	def     any
	factory Factory

	mu    sync.Mutex
	done  bool
	value any
}

var _ Injector = (*Shared)(nil)

// Singleton wraps a definition so its factory runs at most once.
//
// Later calls return the cached value and ignore the deps they are given.
// nil, zero and false results are cached like any other value. A call that
// fails is not cached; the next call runs the factory again. Concurrent
// first calls wait for the one that runs the factory.
func Singleton(def any) *Shared {
	return &Shared{def: def, factory: asFactory(def)}
}

// Inject implements Injector.
func (s *Shared) Inject(deps Deps) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return s.value, nil
	}
	v, err := s.factory(deps)
	if err != nil {
		return nil, err
	}
	s.value, s.done = v, true
	return v, nil
}

// Factory returns s as a plain Factory.
func (s *Shared) Factory() Factory { return s.Inject }

// Requires forwards the declared dependencies of the wrapped definition.
func (s *Shared) Requires() []Key { return requirements(s.def) }

func (s *Shared) validate() error { return validateDef(s.def) }
