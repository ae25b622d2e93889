package di

import "fmt"

// Get resolves key from deps and asserts the result to T.
//
// It returns:
//   - the error of the resolution (an *UnresolvedError or a factory error)
//   - *WrongTypeError if the value is not a T
//
// A nil value yields the zero T, since nil is a valid injectable.
func Get[T any](deps Deps, key Key) (T, error) {
	var zero T
	raw, err := deps.Resolve(key)
	if err != nil {
		return zero, err
	}
	if raw == nil {
		return zero, nil
	}
	v, ok := raw.(T)
	if !ok {
		return zero, &WrongTypeError{
			Key:      key,
			GotType:  fmt.Sprintf("%T", raw),
			WantType: fmt.Sprintf("%T", &zero)[1:],
		}
	}
	return v, nil
}

// MustGet is like Get but panics on error.
//
// Useful in composition roots and tests where a missing injectable should
// fail fast.
func MustGet[T any](deps Deps, key Key) T {
	v, err := Get[T](deps, key)
	if err != nil {
		panic(err)
	}
	return v
}

// Lookup is Get for optional dependencies: ok is false when deps does not
// know key, and no factory runs.
func Lookup[T any](deps Deps, key Key) (v T, ok bool, err error) {
	if !deps.Has(key) {
		return v, false, nil
	}
	v, err = Get[T](deps, key)
	return v, err == nil, err
}
