package manifest

import (
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/sghaida/lazydi/di"
)

var depCall = regexp.MustCompile(`\bdep\s+"([^"]+)"`)

// Template is a factory that renders a text/template against the view.
//
// The template calls dep "k" to resolve k; a nil value renders as an empty
// string. The first resolution error is
// returned as is, so a missing key surfaces as *di.UnresolvedError.
type Template struct {
	key  string
	src  string
	tmpl *template.Template
	deps []di.Key
}

var _ di.Injector = (*Template)(nil)

// NewTemplate parses src as the template for key.
func NewTemplate(key, src string) (*Template, error) {
	tmpl, err := template.New(key).
		Option("missingkey=error").
		Funcs(template.FuncMap{"dep": func(string) (any, error) { return nil, nil }}).
		Parse(src)
	if err != nil {
		return nil, fmt.Errorf("manifest: template %q: %w", key, err)
	}

	t := &Template{key: key, src: src, tmpl: tmpl}
	for _, m := range depCall.FindAllStringSubmatch(src, -1) {
		if !containsKey(t.deps, m[1]) {
			t.deps = append(t.deps, m[1])
		}
	}
	return t, nil
}

// Inject implements di.Injector.
func (t *Template) Inject(deps di.Deps) (any, error) {
	var depErr error
	tmpl, err := t.tmpl.Clone()
	if err != nil {
		return nil, err
	}
	tmpl.Funcs(template.FuncMap{
		"dep": func(key string) (any, error) {
			v, err := deps.Resolve(key)
			if err != nil && depErr == nil {
				depErr = err
			}
			if v == nil {
				return "", err
			}
			return v, err
		},
	})

	var out strings.Builder
	if err := tmpl.Execute(&out, nil); err != nil {
		if depErr != nil {
			return nil, depErr
		}
		return nil, err
	}
	return out.String(), nil
}

// Requires lists the keys passed to dep, in order of appearance.
func (t *Template) Requires() []di.Key { return t.deps }

// Source returns the template text.
func (t *Template) Source() string { return t.src }

func containsKey(keys []di.Key, k string) bool {
	for _, have := range keys {
		if have == k {
			return true
		}
	}
	return false
}
