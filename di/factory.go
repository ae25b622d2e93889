package di

import "reflect"

// Deps is the lookup capability handed to every factory.
//
// A *View implements it. Resolve runs the factory registered under key on
// every call; Has reports whether the key is known at all.
type Deps interface {
	Resolve(key Key) (any, error)
	Has(key Key) bool
}

// Factory builds an injectable from its dependencies.
type Factory func(deps Deps) (any, error)

// Injector is a factory carried by a value rather than a function.
//
// Singleton, Inject and Construct return Injectors so they can report the
// dependencies they declare.
type Injector interface {
	Inject(deps Deps) (any, error)
}

// requirer is implemented by injectors that know their dependencies ahead of
// the call.
type requirer interface {
	Requires() []Key
}

// validator is implemented by injectors that can fail before any call.
type validator interface {
	validate() error
}

// Value lifts v into a factory that ignores its dependencies and returns v.
func Value(v any) Factory {
	return func(Deps) (any, error) { return v, nil }
}

// asFactory returns the factory behind a definition. Anything that is not
// one of the recognised factory shapes is a literal, nil included.
func asFactory(def any) Factory {
	switch f := def.(type) {
	case Factory:
		if f == nil {
			return Value(nil)
		}
		return f
	case func(Deps) (any, error):
		if f == nil {
			return Value(nil)
		}
		return f
	case func(Deps) any:
		if f == nil {
			return Value(nil)
		}
		return func(deps Deps) (any, error) { return f(deps), nil }
	case func() (any, error):
		if f == nil {
			return Value(nil)
		}
		return func(Deps) (any, error) { return f() }
	case func() any:
		if f == nil {
			return Value(nil)
		}
		return func(Deps) (any, error) { return f(), nil }
	case Injector:
		if nilPointer(f) {
			return Value(def)
		}
		return f.Inject
	default:
		return Value(def)
	}
}

// requirements returns the dependencies a definition declares, if any.
func requirements(def any) []Key {
	if r, ok := def.(requirer); ok && !nilPointer(def) {
		return r.Requires()
	}
	return nil
}

// validateDef runs the build-time check of a definition, if it has one.
func validateDef(def any) error {
	if v, ok := def.(validator); ok && !nilPointer(def) {
		return v.validate()
	}
	return nil
}

// nilPointer reports whether v is a typed nil pointer. A nil injector is a
// literal like any other nil pointer.
func nilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
