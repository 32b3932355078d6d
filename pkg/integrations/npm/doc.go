// Package npm fetches per-version package manifests from the npm registry
// (https://registry.npmjs.org).
//
// # Usage
//
//	client := npm.NewClient(integrations.NewClient(integrations.Options{}), "")
//	m, err := client.FetchManifest(ctx, "expo", "54.0.1")
//	fmt.Println(m.Dependencies["expo-modules-core"])
//
// Only the dependency maps are decoded; the rest of the version document
// is ignored.
package npm
