package di

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// Injectables maps keys to definitions. It is used both for the base
// registry and for the overrides passed to Provide.
type Injectables map[Key]any

// Option configures a Provider.
type Option func(*Provider)

// WithAPI marks keys as the public API of the provider. Only these keys are
// enumerated by View.Keys, View.Each and View.Export, in the given order.
// Repeated keys keep their first position.
func WithAPI(keys ...Key) Option {
	return func(p *Provider) { p.api = append(p.api, keys...) }
}

// WithLogger sets the logger used to trace resolution at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Provider) { p.log = l }
}

// WithName names the provider in log lines.
func WithName(name string) Option {
	return func(p *Provider) { p.name = name }
}

// Provider is the reusable entry point built from a registry.
//
// A Provider is immutable once built and safe for concurrent use.
type Provider struct {
	injectables Injectables
	api         []Key
	name        string
	log         zerolog.Logger
}

// New builds a Provider from injectables.
//
// Only the shape of the registry is checked: keys must be strings or tokens,
// ProvideToken may not be public, public keys must have distinct names, and
// struct-bound injectors must have a valid dependency struct. A nil
// pointer to an injector is a literal. No factory is invoked.
func New(injectables Injectables, opts ...Option) (*Provider, error) {
	p := &Provider{
		injectables: make(Injectables, len(injectables)),
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	for k, def := range injectables {
		if !validKey(k) {
			return nil, invalidKeyError("registry", k)
		}
		if err := validateDef(def); err != nil {
			return nil, err
		}
		p.injectables[k] = def
	}
	api := make([]Key, 0, len(p.api))
	names := make(map[string]Key, len(p.api))
	for _, k := range p.api {
		if !validKey(k) {
			return nil, invalidKeyError("api", k)
		}
		if k == ProvideToken {
			return nil, ErrReservedKey
		}
		if containsKey(api, k) {
			continue
		}
		name := KeyName(k)
		if other, ok := names[name]; ok {
			return nil, fmt.Errorf("%w: api keys %v and %v share the name %q", ErrNameCollision, other, k, name)
		}
		names[name] = k
		api = append(api, k)
	}
	p.api = api

	if p.name != "" {
		p.log = p.log.With().Str("provider", p.name).Logger()
	}
	return p, nil
}

// MustNew is like New but panics on error.
func MustNew(injectables Injectables, opts ...Option) *Provider {
	p, err := New(injectables, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// API returns a copy of the public keys.
func (p *Provider) API() []Key {
	out := make([]Key, len(p.api))
	copy(out, p.api)
	return out
}

// Provide returns a fresh view over the registry with overrides layered on
// top. Overrides replace base definitions key by key and never mutate the
// registry. A nil overrides map is the same as an empty one.
func (p *Provider) Provide(overrides Injectables) *View {
	own := make(Injectables, len(overrides))
	for k, def := range overrides {
		own[k] = def
	}

	v := &View{
		provider:  p,
		overrides: own,
		defs:      make(map[Key]any, len(p.injectables)+len(own)+1),
		factories: make(map[Key]Factory, len(p.injectables)+len(own)+1),
	}
	for k, def := range p.injectables {
		v.defs[k] = def
	}
	v.defs[ProvideToken] = Value(ProvideFunc(v.Provide))
	for k, def := range own {
		v.defs[k] = def
	}
	for k, def := range v.defs {
		v.factories[k] = asFactory(def)
	}

	p.log.Debug().Int("overrides", len(own)).Msg("provide")
	return v
}

// Missing lists the declared dependencies that neither the registry nor
// overrides supply, sorted by name.
func (p *Provider) Missing(overrides Injectables) []Key {
	return p.Provide(overrides).Missing()
}

// Check returns a *MissingDependenciesError when Missing is not empty.
func (p *Provider) Check(overrides Injectables) error {
	if missing := p.Missing(overrides); len(missing) > 0 {
		return &MissingDependenciesError{Keys: missing}
	}
	return nil
}

func containsKey(keys []Key, k Key) bool {
	for _, have := range keys {
		if have == k {
			return true
		}
	}
	return false
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool { return KeyName(keys[i]) < KeyName(keys[j]) })
}
