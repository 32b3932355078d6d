package deps

import "strings"

// ecosystemPackages are Expo-maintained packages outside the expo-* and
// @expo/* naming scheme.
var ecosystemPackages = map[string]bool{
	"jest-expo":              true,
	"babel-preset-expo":      true,
	"eslint-config-expo":     true,
	"eslint-config-universe": true,
	"eslint-plugin-expo":     true,
	"create-expo":            true,
	"patch-project":          true,
	"pod-install":            true,
	"uri-scheme":             true,
	"install-expo-modules":   true,
	"html-elements":          true,
	"unimodules-app-loader":  true,
}

// IsEcosystemPackage reports whether name belongs to the Expo ecosystem.
// Only such dependencies are followed when explaining a release.
func IsEcosystemPackage(name string) bool {
	if strings.HasPrefix(name, "expo-") || strings.HasPrefix(name, "@expo/") {
		return true
	}
	return ecosystemPackages[name]
}
