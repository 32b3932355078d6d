// Package integrations provides the HTTP clients for the two upstream
// sources changetower reads from.
//
// # Overview
//
//   - [github]: raw changelog documents from the Expo monorepo
//   - [npm]: per-version package manifests from the npm registry
//
// # Shared Infrastructure
//
// Both clients embed [Client], which applies default headers, bounds
// concurrency with an [httputil.Gate] and retries transient failures with
// [httputil.RetryValue]. Responses are classified by status code:
//
//   - 200: success
//   - 404: [ErrNotFound], never retried
//   - 5xx and transport errors: [ErrNetwork] wrapped in [httputil.RetryableError]
//   - anything else: [ErrNetwork], not retried
//
// Caching is not done here; the fetch pipeline and the comparer own their
// caches.
//
// [github]: github.com/matzehuels/changetower/pkg/integrations/github
// [npm]: github.com/matzehuels/changetower/pkg/integrations/npm
// [httputil.Gate]: github.com/matzehuels/changetower/pkg/httputil.Gate
// [httputil.RetryValue]: github.com/matzehuels/changetower/pkg/httputil.RetryValue
// [httputil.RetryableError]: github.com/matzehuels/changetower/pkg/httputil.RetryableError
package integrations
