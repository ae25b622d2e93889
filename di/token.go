package di

import "fmt"

// Key identifies an injectable.
//
// A key is either a string chosen by the caller or a *Token. Any other type is
// rejected when a Provider is built.
type Key = any

// Token is an opaque key that never collides with a string key or with any
// other Token, even one created with the same description.
type Token struct {
	desc string
}

// NewToken returns a new unique token. desc is only used for messages.
func NewToken(desc string) *Token {
	return &Token{desc: desc}
}

// String renders the token the way it appears in error messages.
func (t *Token) String() string {
	if t == nil {
		return "Symbol()"
	}
	return "Symbol(" + t.desc + ")"
}

// ProvideToken is the reserved self-reference key. Resolving it yields a
// ProvideFunc bound to the resolving view.
var ProvideToken = NewToken("provide")

// KeyName renders a key for messages and exported maps.
func KeyName(key Key) string {
	switch k := key.(type) {
	case string:
		return k
	case *Token:
		return k.String()
	default:
		return fmt.Sprint(key)
	}
}

func validKey(key Key) bool {
	switch k := key.(type) {
	case string:
		return true
	case *Token:
		return k != nil
	default:
		return false
	}
}
