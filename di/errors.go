package di

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnresolved matches every *UnresolvedError via errors.Is.
	ErrUnresolved = errors.New("di: unresolved injectable")

	// ErrInvalidKey is returned by New when a registry or API key is neither
	// a string nor a non-nil *Token.
	ErrInvalidKey = errors.New("di: invalid injection key")

	// ErrReservedKey is returned by New when ProvideToken is listed in the
	// public API.
	ErrReservedKey = errors.New("di: reserved key in public api")

	// ErrNameCollision is returned by New when two public keys render to the
	// same name, such as "Symbol(x)" and NewToken("x").
	ErrNameCollision = errors.New("di: public keys share a name")

	// ErrMissingDependencies matches every *MissingDependenciesError via errors.Is.
	ErrMissingDependencies = errors.New("di: missing dependencies")
)

// UnresolvedError is returned when a key is read that the view does not know.
type UnresolvedError struct{ Key Key }

// Error implements the error interface.
func (e *UnresolvedError) Error() string {
	// Example: could not resolve injectable with injection token "db"
	return `could not resolve injectable with injection token "` + KeyName(e.Key) + `"`
}

// Is reports whether target is ErrUnresolved.
func (e *UnresolvedError) Is(target error) bool { return target == ErrUnresolved }

// WrongTypeError is returned by Get when a resolved value is not of the
// requested type.
type WrongTypeError struct {
	// Key is the key that was resolved.
	Key Key

	// GotType is the dynamic type of the resolved value.
	GotType string

	// WantType is the requested type.
	WantType string
}

// Error implements the error interface.
func (e *WrongTypeError) Error() string {
	// Example: di: injectable "db" has type string, want *sql.DB
	return "di: injectable " + strconv.Quote(KeyName(e.Key)) + " has type " + e.GotType + ", want " + e.WantType
}

// MissingDependenciesError lists declared dependencies that neither the
// registry nor the overrides supply.
type MissingDependenciesError struct{ Keys []Key }

// Error implements the error interface.
func (e *MissingDependenciesError) Error() string {
	names := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		names[i] = strconv.Quote(KeyName(k))
	}
	return "di: missing dependencies " + strings.Join(names, ", ")
}

// Is reports whether target is ErrMissingDependencies.
func (e *MissingDependenciesError) Is(target error) bool { return target == ErrMissingDependencies }

// BindingError reports a dependency struct that cannot be bound from a view.
type BindingError struct {
	Type   string
	Reason string
}

// Error implements the error interface.
func (e *BindingError) Error() string {
	return "di: cannot bind " + e.Type + ": " + e.Reason
}

func invalidKeyError(where string, key Key) error {
	return fmt.Errorf("%w: %s key %v of type %T", ErrInvalidKey, where, key, key)
}
