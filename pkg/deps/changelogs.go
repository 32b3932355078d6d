package deps

// withoutChangelog lists monorepo packages known to ship no CHANGELOG.md.
// It wins over withChangelog.
var withoutChangelog = map[string]bool{
	"expo-dev-menu-interface": true,
	"expo-insights":           true,
	"expo-network-addons":     true,
	"expo-processing":         true,
	"expo-random":             true,
}

// withChangelog lists monorepo packages that publish a CHANGELOG.md under
// packages/. The list is maintained by hand; packages added upstream show up
// as "no changelog available" until they are listed here.
var withChangelog = setOf(
	"@expo/cli",
	"@expo/config",
	"@expo/config-plugins",
	"@expo/devtools",
	"@expo/env",
	"@expo/fingerprint",
	"@expo/image-utils",
	"@expo/json-file",
	"@expo/metro-config",
	"@expo/metro-runtime",
	"@expo/osascript",
	"@expo/package-manager",
	"@expo/pkcs12",
	"@expo/plist",
	"@expo/prebuild-config",
	"@expo/schema-utils",
	"@expo/schemer",
	"babel-preset-expo",
	"create-expo",
	"eslint-config-expo",
	"eslint-config-universe",
	"eslint-plugin-expo",
	"expo",
	"expo-app-integrity",
	"expo-apple-authentication",
	"expo-application",
	"expo-asset",
	"expo-audio",
	"expo-auth-session",
	"expo-av",
	"expo-background-fetch",
	"expo-background-task",
	"expo-battery",
	"expo-blob",
	"expo-blur",
	"expo-brightness",
	"expo-build-properties",
	"expo-calendar",
	"expo-camera",
	"expo-cellular",
	"expo-checkbox",
	"expo-clipboard",
	"expo-constants",
	"expo-contacts",
	"expo-crypto",
	"expo-dev-client",
	"expo-dev-client-components",
	"expo-dev-launcher",
	"expo-dev-menu",
	"expo-device",
	"expo-doctor",
	"expo-document-picker",
	"expo-eas-client",
	"expo-env-info",
	"expo-file-system",
	"expo-font",
	"expo-gl",
	"expo-glass-effect",
	"expo-haptics",
	"expo-image",
	"expo-image-loader",
	"expo-image-manipulator",
	"expo-image-picker",
	"expo-intent-launcher",
	"expo-json-utils",
	"expo-keep-awake",
	"expo-linear-gradient",
	"expo-linking",
	"expo-live-photo",
	"expo-local-authentication",
	"expo-localization",
	"expo-location",
	"expo-mail-composer",
	"expo-manifests",
	"expo-maps",
	"expo-media-library",
	"expo-mesh-gradient",
	"expo-module-scripts",
	"expo-modules-autolinking",
	"expo-modules-core",
	"expo-navigation-bar",
	"expo-network",
	"expo-notifications",
	"expo-print",
	"expo-router",
	"expo-screen-capture",
	"expo-screen-orientation",
	"expo-secure-store",
	"expo-sensors",
	"expo-server",
	"expo-sharing",
	"expo-sms",
	"expo-speech",
	"expo-splash-screen",
	"expo-sqlite",
	"expo-status-bar",
	"expo-store-review",
	"expo-structured-headers",
	"expo-symbols",
	"expo-system-ui",
	"expo-task-manager",
	"expo-tracking-transparency",
	"expo-ui",
	"expo-updates",
	"expo-updates-interface",
	"expo-video",
	"expo-video-thumbnails",
	"expo-web-browser",
	"expo-yarn-workspaces",
	"html-elements",
	"install-expo-modules",
	"jest-expo",
	"patch-project",
	"pod-install",
	"unimodules-app-loader",
	"uri-scheme",
)

func setOf(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// HasChangelog reports whether pkg is known to publish a changelog in the
// monorepo.
func HasChangelog(pkg string) bool {
	if withoutChangelog[pkg] {
		return false
	}
	return withChangelog[pkg]
}
