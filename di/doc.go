// Package di is a small lazy dependency injection registry.
//
// A registry maps keys to injectables. An injectable is either a factory,
// which receives the resolved view as its dependencies, or a literal value:
//
//	p := di.MustNew(di.Injectables{
//		"dsn":  "postgres://localhost",
//		"repo": func(deps di.Deps) (any, error) {
//			dsn, err := di.Get[string](deps, "dsn")
//			if err != nil {
//				return nil, err
//			}
//			return NewRepo(dsn), nil
//		},
//		"clock": di.Singleton(func() any { return NewClock() }),
//	}, di.WithAPI("repo"))
//
//	view := p.Provide(di.Injectables{"dsn": "postgres://test"})
//	repo, err := di.Get[*Repo](view, "repo")
//
// Resolution rules:
//   - Nothing runs until a key is resolved, and only the keys a factory
//     actually reads are resolved.
//   - Every Resolve runs the factory again. Wrap a definition with Singleton
//     to build it once for the life of the process.
//   - Overrides passed to Provide replace registry entries of the same key
//     for that view only.
//   - Resolving an unknown key fails with an *UnresolvedError naming the key,
//     at the point of the read, however deep in the graph it happens.
//   - ProvideToken resolves to a ProvideFunc that re-provides the registry
//     with extra overrides merged on top of the view's own.
//   - WithAPI only controls enumeration (Keys, Each, Export). Every key can
//     be resolved by name.
//
// Struct-shaped dependencies can be declared with Inject and Construct; the
// Provider then reports unmet declarations through Missing and Check.
package di
