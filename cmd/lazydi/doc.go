// Command lazydi resolves registries declared in YAML manifests.
//
// A manifest names injectables (literals or text templates that read other
// injectables through dep "key"), the public API and the singletons. lazydi
// builds a provider from it, applies overrides and prints what it resolves:
//
//	lazydi resolve -f shop.yaml --set user=ada
//	lazydi resolve -f shop.yaml --env-file .env url
//	lazydi check -f shop.yaml
//
// Overrides come from dotenv files (--env-file, in order) and then from
// --set key=value, later sources winning. Values are decoded as YAML
// scalars, so --set port=9090 injects an int.
//
// resolve prints a JSON object of the requested keys, or of the manifest's
// api when no key is given. check lists the dependencies that templates
// declare but nothing supplies and exits non-zero when there are any.
//
// Logging goes to stderr; --log-level debug traces every resolution.
package main
