package di

import "fmt"

// Registry collects injectables in insertion order before building a
// Provider.
//
// It is a convenience over Injectables for code that registers entries one
// by one, and it remembers the order for introspection:
//
//	p, err := di.NewRegistry().
//		Provide("db", openDB).
//		Provide("dsn", "postgres://localhost").
//		Build(di.WithAPI("db"))
type Registry struct {
	keys  []Key
	items Injectables
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{items: Injectables{}}
}

// Provide stores a definition under key and returns the registry for
// chaining. Providing a key twice replaces the definition and keeps the
// original position.
func (r *Registry) Provide(key Key, def any) *Registry {
	if !validKey(key) {
		// not stored; Build rejects it
		r.keys = append(r.keys, key)
		return r
	}
	if _, exists := r.items[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.items[key] = def
	return r
}

// Keys returns the registered keys in insertion order.
func (r *Registry) Keys() []Key {
	out := make([]Key, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the definition stored under key.
func (r *Registry) Get(key Key) (any, bool) {
	if !validKey(key) {
		return nil, false
	}
	v, ok := r.items[key]
	return v, ok
}

// MustGet returns the definition or panics with a helpful message.
func (r *Registry) MustGet(key Key) any {
	v, ok := r.Get(key)
	if !ok {
		panic(fmt.Errorf("di: registry missing key %q", KeyName(key)))
	}
	return v
}

// Injectables returns a copy of the registered definitions.
func (r *Registry) Injectables() Injectables {
	out := make(Injectables, len(r.items))
	for k, v := range r.items {
		out[k] = v
	}
	return out
}

// Build validates the registry and returns its Provider.
func (r *Registry) Build(opts ...Option) (*Provider, error) {
	for _, k := range r.keys {
		if !validKey(k) {
			return nil, invalidKeyError("registry", k)
		}
	}
	return New(r.items, opts...)
}
