// Package catalog holds the static list of Expo modules changetower knows
// about, their categories and the SDK branches changelogs can be read from.
package catalog

import (
	"slices"
	"strconv"
	"strings"
)

// Module is a known Expo package with its display category.
type Module struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Modules is the known module list, grouped by category.
var Modules = []Module{
	{"expo-audio", "Media & Audio"},
	{"expo-av", "Media & Audio"},
	{"expo-camera", "Media & Audio"},
	{"expo-image", "Media & Audio"},
	{"expo-image-loader", "Media & Audio"},
	{"expo-image-manipulator", "Media & Audio"},
	{"expo-image-picker", "Media & Audio"},
	{"expo-live-photo", "Media & Audio"},
	{"expo-media-library", "Media & Audio"},

	{"expo-battery", "Device & Sensors"},
	{"expo-brightness", "Device & Sensors"},
	{"expo-device", "Device & Sensors"},
	{"expo-haptics", "Device & Sensors"},

	{"expo-location", "Location & Maps"},
	{"expo-maps", "Location & Maps"},

	{"expo-app-integrity", "Authentication & Security"},
	{"expo-apple-authentication", "Authentication & Security"},
	{"expo-auth-session", "Authentication & Security"},
	{"expo-crypto", "Authentication & Security"},
	{"expo-local-authentication", "Authentication & Security"},

	{"expo-asset", "File System & Storage"},
	{"expo-document-picker", "File System & Storage"},
	{"expo-file-system", "File System & Storage"},

	{"expo-contacts", "Communication"},
	{"expo-mail-composer", "Communication"},

	{"expo-linking", "Navigation & Routing"},

	{"expo-background-fetch", "Background Tasks"},
	{"expo-background-task", "Background Tasks"},

	{"expo-notifications", "Notifications & Updates"},

	{"expo-blur", "UI Components"},
	{"expo-checkbox", "UI Components"},
	{"expo-glass-effect", "UI Components"},
	{"expo-linear-gradient", "UI Components"},
	{"expo-mesh-gradient", "UI Components"},
	{"expo-navigation-bar", "UI Components"},

	{"expo-gl", "Graphics & GL"},
	{"expo-processing", "Graphics & GL"},

	{"expo-application", "System & Configuration"},
	{"expo-build-properties", "System & Configuration"},
	{"expo-calendar", "System & Configuration"},
	{"expo-cellular", "System & Configuration"},
	{"expo-clipboard", "System & Configuration"},
	{"expo-constants", "System & Configuration"},
	{"expo-doctor", "System & Configuration"},
	{"expo-env-info", "System & Configuration"},
	{"expo-font", "System & Configuration"},
	{"expo-insights", "System & Configuration"},
	{"expo-intent-launcher", "System & Configuration"},
	{"expo-json-utils", "System & Configuration"},
	{"expo-keep-awake", "System & Configuration"},
	{"expo-localization", "System & Configuration"},
	{"expo-manifests", "System & Configuration"},
	{"expo-network", "System & Configuration"},
	{"expo-network-addons", "System & Configuration"},
	{"expo-print", "System & Configuration"},

	{"expo-blob", "Development & Core"},
	{"expo-dev-client", "Development & Core"},
	{"expo-dev-client-components", "Development & Core"},
	{"expo-dev-launcher", "Development & Core"},
	{"expo-dev-menu", "Development & Core"},
	{"expo-dev-menu-interface", "Development & Core"},
	{"expo-eas-client", "Development & Core"},
	{"expo-modules-autolinking", "Development & Core"},
	{"expo-modules-core", "Development & Core"},
}

// Names returns every known module name in catalog order.
func Names() []string {
	names := make([]string, len(Modules))
	for i, m := range Modules {
		names[i] = m.Name
	}
	return names
}

// Lookup returns the module with the given name.
func Lookup(name string) (Module, bool) {
	for _, m := range Modules {
		if m.Name == name {
			return m, true
		}
	}
	return Module{}, false
}

// Categories returns the distinct categories, sorted.
func Categories() []string {
	var cats []string
	for _, m := range Modules {
		if !slices.Contains(cats, m.Category) {
			cats = append(cats, m.Category)
		}
	}
	slices.Sort(cats)
	return cats
}

// InCategory returns the modules of one category. Matching ignores case.
func InCategory(category string) []Module {
	var out []Module
	for _, m := range Modules {
		if strings.EqualFold(m.Category, category) {
			out = append(out, m)
		}
	}
	return out
}

// Branch is a ref changelogs can be read from.
type Branch struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// LatestSDK is the most recent SDK release branch number.
const LatestSDK = 54

// OldestSDK is the oldest SDK branch offered.
const OldestSDK = 40

// Branches returns main followed by every SDK branch, newest first.
func Branches() []Branch {
	out := []Branch{{Value: "main", Label: "Next (unversioned)"}}
	for n := LatestSDK; n >= OldestSDK; n-- {
		label := "SDK " + strconv.Itoa(n)
		if n == LatestSDK {
			label += " (latest)"
		}
		out = append(out, Branch{Value: SDKBranch(n), Label: label})
	}
	return out
}

// DefaultBranch is the branch used when none is given.
func DefaultBranch() string { return "main" }

// SDKBranch returns the branch name of SDK n.
func SDKBranch(n int) string { return "sdk-" + strconv.Itoa(n) }

// ParseSDKBranch extracts N from a branch named "sdk-N".
func ParseSDKBranch(branch string) (int, bool) {
	rest, ok := strings.CutPrefix(branch, "sdk-")
	if !ok || rest == "" {
		return 0, false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(rest)
	return n, err == nil
}
