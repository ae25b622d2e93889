package di

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Binding is an injector whose dependencies are the fields of a struct.
//
// Each exported field of D names one dependency. The key is taken from the
// `di` tag, or from the field name when there is no tag (see fieldKey):
//
//	type repoDeps struct {
//		DB      *sql.DB                 // key "db"
//		Session bool `di:"session,optional"`
//		Clock   func() time.Time `di:"-"` // not injected
//	}
//
// Fields are resolved in declaration order each time the binding runs. An
// optional field whose key is absent keeps its zero value. A resolved nil
// leaves the field at its zero value as well.
type Binding[D, T any] struct {
	plan *structPlan
	fn   func(D) (T, error)
}

var _ Injector = (*Binding[struct{}, int])(nil)

// Inject returns a Binding that fills a D from the view and passes it to fn.
func Inject[D, T any](fn func(D) (T, error)) *Binding[D, T] {
	return &Binding[D, T]{plan: planOf(reflect.TypeFor[D]()), fn: fn}
}

// Construct returns a Binding that builds a new *T with its fields filled
// from the view. It is the adapter for types that are assembled from their
// dependencies rather than by a constructor function.
func Construct[T any]() *Binding[T, *T] {
	return Inject(func(d T) (*T, error) { return &d, nil })
}

// ConstructWith is Construct followed by init on the filled value.
func ConstructWith[T any](init func(*T) error) *Binding[T, *T] {
	return Inject(func(d T) (*T, error) {
		if init != nil {
			if err := init(&d); err != nil {
				return nil, err
			}
		}
		return &d, nil
	})
}

// Inject implements Injector.
func (b *Binding[D, T]) Inject(deps Deps) (any, error) {
	if b.plan.err != nil {
		return nil, b.plan.err
	}
	var d D
	if err := b.plan.fill(reflect.ValueOf(&d).Elem(), deps); err != nil {
		return nil, err
	}
	if b.fn == nil {
		return nil, &BindingError{Type: b.plan.typ.String(), Reason: "nil function"}
	}
	return b.fn(d)
}

// Requires lists the keys of the non-optional fields of D.
func (b *Binding[D, T]) Requires() []Key {
	keys := make([]Key, 0, len(b.plan.fields))
	for _, f := range b.plan.fields {
		if !f.optional {
			keys = append(keys, f.key)
		}
	}
	return keys
}

func (b *Binding[D, T]) validate() error {
	if b.plan.err != nil {
		return b.plan.err
	}
	if b.fn == nil {
		return &BindingError{Type: b.plan.typ.String(), Reason: "nil function"}
	}
	return nil
}

type fieldPlan struct {
	index    int
	key      string
	optional bool
}

type structPlan struct {
	typ    reflect.Type
	fields []fieldPlan
	err    error
}

func planOf(t reflect.Type) *structPlan {
	p := &structPlan{typ: t}
	if t.Kind() != reflect.Struct {
		p.err = &BindingError{Type: t.String(), Reason: "dependencies must be a struct"}
		return p
	}

	seen := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, hasTag := sf.Tag.Lookup("di")
		if tag == "-" {
			continue
		}
		if !sf.IsExported() {
			if hasTag {
				p.err = &BindingError{Type: t.String(), Reason: "tagged field " + sf.Name + " is unexported"}
				return p
			}
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = fieldKey(sf.Name)
		}
		if seen[name] {
			p.err = &BindingError{Type: t.String(), Reason: "key " + name + " bound twice"}
			return p
		}
		seen[name] = true

		fp := fieldPlan{index: i, key: name}
		switch opts {
		case "":
		case "optional":
			fp.optional = true
		default:
			p.err = &BindingError{Type: t.String(), Reason: "unknown tag option " + opts + " on " + sf.Name}
			return p
		}
		p.fields = append(p.fields, fp)
	}
	return p
}

func (p *structPlan) fill(dst reflect.Value, deps Deps) error {
	for _, f := range p.fields {
		if f.optional && !deps.Has(f.key) {
			continue
		}
		raw, err := deps.Resolve(f.key)
		if err != nil {
			return err
		}
		if raw == nil {
			continue
		}
		field := dst.Field(f.index)
		rv := reflect.ValueOf(raw)
		if !rv.Type().AssignableTo(field.Type()) {
			return &WrongTypeError{Key: f.key, GotType: rv.Type().String(), WantType: field.Type().String()}
		}
		field.Set(rv)
	}
	return nil
}

// fieldKey lower-cases the first letter of a field name, or the whole name
// when it is all upper case (DB becomes db).
func fieldKey(s string) string {
	if strings.ToUpper(s) == s {
		return strings.ToLower(s)
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
