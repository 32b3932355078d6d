// Package pkg provides the core libraries for changetower.
//
// # Overview
//
// Changetower reads the changelogs of Expo SDK modules and explains
// releases that only say "no user-facing changes" by walking the
// dependency updates that shipped with them. The pkg directory is organized
// into these areas:
//
//  1. [changelog] - Markdown parsing, version filters and no-change detection
//  2. [catalog] - The known module list, categories and SDK branches
//  3. [deps] - npm version comparison and dependency tree building
//  4. [pipeline] - Fetching, enriching and batch loading of changelogs
//  5. [cache] - Durable stores (sqlite, file, redis, mongo) and the memory cache
//  6. [integrations] - HTTP clients for GitHub raw content and the npm registry
//  7. [render] - DOT and SVG output for dependency trees
//
// # Architecture
//
// The typical data flow for one module:
//
//	GitHub raw CHANGELOG.md
//	         ↓
//	    [pipeline] Fetcher (store lookup, TTL per branch)
//	         ↓
//	    [changelog] Parse (versions, dates, markers)
//	         ↓
//	    [deps] TreeBuilder (npm manifests of old and new version)
//	         ↓
//	    enriched versions with dependency trees
//
// # Supporting Packages
//
// [errors] carries coded errors shared by the CLI and the HTTP API.
// [httputil] retries transient failures and rate-limits outgoing requests.
// [observability] exposes hooks for fetch, cache and HTTP events.
// [buildinfo] reports the version stamped at build time.
//
// [changelog]: https://pkg.go.dev/github.com/matzehuels/changetower/pkg/changelog
// [catalog]: https://pkg.go.dev/github.com/matzehuels/changetower/pkg/catalog
// [deps]: https://pkg.go.dev/github.com/matzehuels/changetower/pkg/deps
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/changetower/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/changetower/pkg/cache
// [integrations]: https://pkg.go.dev/github.com/matzehuels/changetower/pkg/integrations
// [render]: https://pkg.go.dev/github.com/matzehuels/changetower/pkg/render
// [errors]: https://pkg.go.dev/github.com/matzehuels/changetower/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/changetower/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/changetower/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/changetower/pkg/buildinfo
package pkg
