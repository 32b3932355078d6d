package changelog

import (
	"regexp"
	"strings"
	"time"
)

// AllChanges is the label of the single version produced for a changelog
// without version headings.
const AllChanges = "All Changes"

// Version is one release section of a changelog.
type Version struct {
	Version string     `json:"version"`
	Content string     `json:"content"`
	Date    *time.Time `json:"date,omitempty"`
}

var versionHeading = regexp.MustCompile(`(?m)^#{1,3}\s+\[?(\d+\.\d+\.\d+[^\]\s]*)\]?.*$`)

var datePatterns = []struct {
	re     *regexp.Regexp
	layout string
}{
	{regexp.MustCompile(`[-—]\s*(\d{4}-\d{2}-\d{2})`), "2006-01-02"},
	{regexp.MustCompile(`\((\d{4}-\d{2}-\d{2})\)`), "2006-01-02"},
	{regexp.MustCompile(`(\d{4}/\d{2}/\d{2})`), "2006/01/02"},
}

// Parse splits markdown into versions, newest first as they appear. Each
// version's content runs from its heading to the next heading, trimmed.
func Parse(markdown string) []Version {
	matches := versionHeading.FindAllStringSubmatchIndex(markdown, -1)
	if len(matches) == 0 {
		return []Version{{Version: AllChanges, Content: markdown}}
	}

	versions := make([]Version, 0, len(matches))
	for i, m := range matches {
		end := len(markdown)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		versions = append(versions, Version{
			Version: markdown[m[2]:m[3]],
			Content: strings.TrimSpace(markdown[m[0]:end]),
			Date:    headingDate(markdown[m[0]:m[1]]),
		})
	}
	return versions
}

// headingDate extracts a release date from a version heading line. Dates
// are interpreted as UTC midnight.
func headingDate(line string) *time.Time {
	for _, p := range datePatterns {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if t, err := time.Parse(p.layout, m[1]); err == nil {
			return &t
		}
	}
	return nil
}

// ExtractVersion returns the block of markdown belonging to exactly
// version: from the first heading naming it to the next version heading
// or the end of the document, trimmed. ok is false if no heading matches.
func ExtractVersion(markdown, version string) (block string, ok bool) {
	re, err := regexp.Compile(`(?m)^#{1,3}\s+\[?` + regexp.QuoteMeta(version) + `(?:\]|[ \t\r]|$).*$`)
	if err != nil {
		return "", false
	}
	loc := re.FindStringIndex(markdown)
	if loc == nil {
		return "", false
	}

	end := len(markdown)
	if next := versionHeading.FindStringIndex(markdown[loc[1]:]); next != nil {
		end = loc[1] + next[0]
	}
	return strings.TrimSpace(markdown[loc[0]:end]), true
}

// PreviousVersion returns the label that follows current in a newest-first
// list, i.e. the release before it. ok is false if current is missing or
// is the oldest entry.
func PreviousVersion(versions []Version, current string) (string, bool) {
	for i, v := range versions {
		if v.Version == current {
			if i == len(versions)-1 {
				return "", false
			}
			return versions[i+1].Version, true
		}
	}
	return "", false
}
