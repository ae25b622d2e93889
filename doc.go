// Package lazydi is the module root of a lazy dependency injection registry.
//
// See subpackages:
//   - di: the registry, provider, resolved views, singletons and typed access
//   - cmd/lazydi: a CLI that resolves registries declared in YAML manifests
//   - examples/checkout: a runnable example with a per-call session
package lazydi
