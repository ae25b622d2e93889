package di

import "fmt"

// ProvideFunc re-provides the registry a view was built from. The overrides
// it receives are merged on top of the overrides of that view.
type ProvideFunc func(overrides Injectables) *View

// View is the resolved view returned by Provider.Provide.
//
// Every key of the merged registry is resolvable through Resolve. Nothing is
// cached: each Resolve runs the key's factory again, so only Singleton
// injectables and literals come back identical. A View is never mutated
// after Provide returns and can be shared between goroutines.
type View struct {
	provider  *Provider
	overrides Injectables
	defs      map[Key]any
	factories map[Key]Factory
}

var _ Deps = (*View)(nil)

// Resolve runs the factory registered under key with the view as its
// dependencies. Errors returned by factories are passed through as is.
func (v *View) Resolve(key Key) (any, error) {
	f, ok := v.lookup(key)
	if !ok {
		v.provider.log.Debug().Str("key", KeyName(key)).Msg("unresolved injectable")
		return nil, &UnresolvedError{Key: key}
	}
	v.provider.log.Debug().Str("key", KeyName(key)).Msg("resolve injectable")
	return f(v)
}

// Has reports whether key is part of the merged registry.
func (v *View) Has(key Key) bool {
	_, ok := v.lookup(key)
	return ok
}

func (v *View) lookup(key Key) (f Factory, ok bool) {
	if !validKey(key) {
		return nil, false
	}
	f, ok = v.factories[key]
	return f, ok
}

// Keys returns the public keys present in the view, in API order.
func (v *View) Keys() []Key {
	keys := make([]Key, 0, len(v.provider.api))
	for _, k := range v.provider.api {
		if _, ok := v.factories[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Each resolves the public keys in API order and calls fn with each value.
// It stops at the first error, from resolution or from fn.
func (v *View) Each(fn func(key Key, value any) error) error {
	for _, k := range v.Keys() {
		val, err := v.Resolve(k)
		if err != nil {
			return err
		}
		if err := fn(k, val); err != nil {
			return err
		}
	}
	return nil
}

// Export resolves the public keys into a map keyed by key name. New rejects
// public keys whose names collide, so no entry overwrites another.
func (v *View) Export() (map[string]any, error) {
	out := make(map[string]any, len(v.provider.api))
	err := v.Each(func(key Key, value any) error {
		out[KeyName(key)] = value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Provide returns a new view of the same registry with overrides merged on
// top of the overrides this view was built with.
func (v *View) Provide(overrides Injectables) *View {
	merged := make(Injectables, len(v.overrides)+len(overrides))
	for k, def := range v.overrides {
		merged[k] = def
	}
	for k, def := range overrides {
		merged[k] = def
	}
	return v.provider.Provide(merged)
}

// Missing lists the dependencies declared by the view's injectors that the
// view cannot resolve, sorted by name.
func (v *View) Missing() []Key {
	var missing []Key
	for _, def := range v.defs {
		for _, dep := range requirements(def) {
			if !v.Has(dep) && !containsKey(missing, dep) {
				missing = append(missing, dep)
			}
		}
	}
	sortKeys(missing)
	return missing
}

// Reprovide resolves ProvideToken from deps and calls it with overrides.
func Reprovide(deps Deps, overrides Injectables) (*View, error) {
	raw, err := deps.Resolve(ProvideToken)
	if err != nil {
		return nil, err
	}
	provide, ok := raw.(ProvideFunc)
	if !ok {
		return nil, &WrongTypeError{
			Key:      ProvideToken,
			GotType:  fmt.Sprintf("%T", raw),
			WantType: fmt.Sprintf("%T", provide),
		}
	}
	return provide(overrides), nil
}
