// Package github fetches package changelogs from the Expo monorepo through
// GitHub's raw-content host.
//
// # Usage
//
//	shared := integrations.NewClient(integrations.Options{})
//	client := github.NewClient(shared, "")
//
//	md, err := client.FetchChangelog(ctx, "expo-camera", "sdk-54")
//	if errors.Is(err, integrations.ErrNotFound) {
//	    // the package has no changelog on that branch
//	}
//
// # URL Layout
//
//	{base}/{branch}/packages/{path}/CHANGELOG.md
//
// where path is the package name with a leading "@" encoded as "%40", so
// "@expo/cli" lives at packages/%40expo/cli/CHANGELOG.md.
package github
