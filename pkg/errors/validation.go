package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePackageName validates an npm package name as accepted by the
// changelog source and the registry. Scoped names (@scope/name) are allowed.
//
// The checks are conservative: no empty names, no control characters, no
// path traversal, at most 214 characters (the npm limit) and lowercase only.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 214 {
		return New(ErrCodeInvalidPackage, "package name too long (max 214 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "//", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	if strings.ToLower(name) != name {
		return New(ErrCodeInvalidPackage, "package names must be lowercase: %q", name)
	}

	if !npmPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid npm package name: %q", name)
	}

	return nil
}

var npmPackageNameRegex = regexp.MustCompile(`^(@[a-z0-9-~][a-z0-9-._~]*/)?[a-z0-9-~][a-z0-9-._~]*$`)

// branchRegex matches git refs usable in a raw-content URL path segment.
var branchRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateBranch validates a branch or ref name. Slashes are rejected
// because the ref becomes a single URL path segment.
func ValidateBranch(branch string) error {
	if branch == "" {
		return New(ErrCodeInvalidBranch, "branch cannot be empty")
	}
	if len(branch) > 100 {
		return New(ErrCodeInvalidBranch, "branch too long (max 100 characters)")
	}
	if strings.Contains(branch, "..") || !branchRegex.MatchString(branch) {
		return New(ErrCodeInvalidBranch, "invalid branch name: %q", branch)
	}
	return nil
}

// ValidateVersion checks that v looks like a concrete major.minor.patch version.
func ValidateVersion(v string) error {
	if !versionRegex.MatchString(v) {
		return New(ErrCodeInvalidInput, "invalid version: %q", v)
	}
	return nil
}

var versionRegex = regexp.MustCompile(`^\d+\.\d+\.\d+[0-9A-Za-z.+-]*$`)
