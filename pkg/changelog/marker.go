package changelog

import (
	"regexp"
	"strings"
)

var noChangePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)this version does not introduce any user-facing changes`),
	regexp.MustCompile(`(?i)no user-facing changes`),
}

// listItem matches a Markdown bullet or numbered entry.
var listItem = regexp.MustCompile(`^\s*(?:[-*+]|\d+\.)\s+\S`)

func hasMarker(s string) bool {
	for _, re := range noChangePatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// IsNoChange reports whether a version block is a no-user-facing-changes
// release: it carries the marker and lists no entries other than the
// marker itself.
func IsNoChange(content string) bool {
	if !hasMarker(content) {
		return false
	}
	for _, line := range strings.Split(content, "\n") {
		if listItem.MatchString(line) && !hasMarker(line) {
			return false
		}
	}
	return true
}

// HasRealChanges reports whether a version block describes user-facing
// changes.
func HasRealChanges(block string) bool {
	return !IsNoChange(block)
}

// HasNoUserFacingChanges reports whether every version of a changelog is a
// no-user-facing-changes release.
func HasNoUserFacingChanges(markdown string) bool {
	versions := Parse(markdown)
	if len(versions) == 0 {
		return false
	}
	for _, v := range versions {
		if !IsNoChange(v.Content) {
			return false
		}
	}
	return true
}
