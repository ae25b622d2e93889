// Package manifest loads registries declared in YAML.
//
// A manifest looks like:
//
//	name: shop
//	api: [url, greeting]
//	singletons: [url]
//	injectables:
//	  host: localhost
//	  port: 8080
//	  url: 'http://{{ dep "host" }}:{{ dep "port" }}'
//	  greeting: 'hello {{ dep "user" }}'
//
// Scalars, lists and maps are literal injectables. A string containing "{{"
// is a template factory rendered on every resolution, where dep "k" resolves
// k from the view. Keys listed under singletons are built once.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sghaida/lazydi/di"
	"gopkg.in/yaml.v3"
)

// ErrUnknownSingleton is returned when singletons names a key that is not
// declared under injectables.
var ErrUnknownSingleton = errors.New("manifest: singleton is not a declared injectable")

// Entry is one declared injectable, in file order.
type Entry struct {
	Key   string
	Value any
}

// Manifest is a parsed registry declaration.
type Manifest struct {
	Name       string    `yaml:"name"`
	API        []string  `yaml:"api"`
	Singletons []string  `yaml:"singletons"`
	Entries    []Entry   `yaml:"-"`
	Raw        yaml.Node `yaml:"injectables"`
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a manifest, keeping the declaration order of injectables.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	switch m.Raw.Kind {
	case 0:
		// no injectables section
	case yaml.MappingNode:
		for i := 0; i+1 < len(m.Raw.Content); i += 2 {
			keyNode, valNode := m.Raw.Content[i], m.Raw.Content[i+1]
			var v any
			if err := valNode.Decode(&v); err != nil {
				return nil, fmt.Errorf("injectable %q: %w", keyNode.Value, err)
			}
			m.Entries = append(m.Entries, Entry{Key: keyNode.Value, Value: v})
		}
	default:
		return nil, fmt.Errorf("injectables must be a mapping (line %d)", m.Raw.Line)
	}
	return &m, nil
}

// Registry turns the entries into an ordered di.Registry.
func (m *Manifest) Registry() (*di.Registry, error) {
	singles := make(map[string]bool, len(m.Singletons))
	for _, k := range m.Singletons {
		singles[k] = true
	}

	reg := di.NewRegistry()
	for _, e := range m.Entries {
		def, err := Definition(e.Key, e.Value)
		if err != nil {
			return nil, err
		}
		if singles[e.Key] {
			def = di.Singleton(def)
			delete(singles, e.Key)
		}
		reg.Provide(e.Key, def)
	}
	for _, k := range m.Singletons {
		if singles[k] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSingleton, k)
		}
	}
	return reg, nil
}

// Provider builds the di.Provider for the manifest. The manifest's api list
// and name are applied before opts.
func (m *Manifest) Provider(opts ...di.Option) (*di.Provider, error) {
	reg, err := m.Registry()
	if err != nil {
		return nil, err
	}
	api := make([]di.Key, len(m.API))
	for i, k := range m.API {
		api[i] = k
	}
	base := []di.Option{di.WithAPI(api...)}
	if m.Name != "" {
		base = append(base, di.WithName(m.Name))
	}
	return reg.Build(append(base, opts...)...)
}

// Definition converts a decoded value into an injectable definition.
func Definition(key string, v any) (any, error) {
	if s, ok := v.(string); ok && strings.Contains(s, "{{") {
		return NewTemplate(key, s)
	}
	return v, nil
}

// Overrides parses string overrides, as given on a command line or in an env
// file. Each value is decoded as YAML, so "8080" becomes an int and "null"
// becomes nil. Empty values and values that would decode to a mapping stay
// strings; templates are accepted as in a manifest.
func Overrides(values map[string]string) (di.Injectables, error) {
	out := make(di.Injectables, len(values))
	for k, raw := range values {
		v := any(raw)
		if raw != "" && !strings.Contains(raw, "{{") {
			var decoded any
			if err := yaml.Unmarshal([]byte(raw), &decoded); err == nil {
				if _, isMap := decoded.(map[string]any); !isMap {
					v = decoded
				}
			}
		}
		def, err := Definition(k, v)
		if err != nil {
			return nil, err
		}
		out[k] = def
	}
	return out, nil
}
