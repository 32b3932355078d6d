package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/changetower/pkg/changelog"
	"github.com/matzehuels/changetower/pkg/deps"
	"github.com/matzehuels/changetower/pkg/errors"
	"github.com/matzehuels/changetower/pkg/pipeline"
)

const cameraChangelog = `# Changelog

## 17.0.2 - 2025-10-01

### Bug fixes

- Fixed preview rotation.

## 17.0.1 - 2025-09-01

_This version does not introduce any user-facing changes._

## 17.0.0 - 2025-06-01

- Dropped legacy API.
`

const silentChangelog = `## 2.0.1 - 2025-10-02

_This version does not introduce any user-facing changes._
`

var viewNow = time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC)

func versionLabels(vs []pipeline.EnrichedVersion) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Version.Version
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuildViews(t *testing.T) {
	results := []pipeline.Result{{Module: "expo-camera", Content: cameraChangelog}}

	tests := []struct {
		name string
		opts viewOptions
		want []string
	}{
		{"all versions", viewOptions{now: viewNow}, []string{"17.0.2", "17.0.1", "17.0.0"}},
		{"limit", viewOptions{now: viewNow, limit: 2}, []string{"17.0.2", "17.0.1"}},
		{"last 30 days", viewOptions{now: viewNow, dateFilter: changelog.DateLast30Days}, []string{"17.0.2"}},
		{"last 90 days then limit", viewOptions{now: viewNow, dateFilter: changelog.DateLast90Days, limit: 1}, []string{"17.0.2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views := buildViews(results, tt.opts)
			if len(views) != 1 {
				t.Fatalf("got %d views, want 1", len(views))
			}
			if got := versionLabels(views[0].Versions); !equalStrings(got, tt.want) {
				t.Errorf("versions = %v, want %v", got, tt.want)
			}
			if views[0].Unchanged {
				t.Error("expo-camera has real changes and must not be unchanged")
			}
		})
	}
}

func TestBuildViewsKeepsEnrichment(t *testing.T) {
	versions := []pipeline.EnrichedVersion{
		{Version: changelog.Version{Version: "1.0.1", Content: "## 1.0.1"}},
		{Version: changelog.Version{Version: "1.0.0", Content: "## 1.0.0"}},
	}
	versions[0].DependencyTrees = []*deps.Node{{PackageName: "expo-modules-core", OldVersion: "3.0.1", NewVersion: "3.0.2"}}
	results := []pipeline.Result{{Module: "expo-av", Content: "## 1.0.1\n\n## 1.0.0", Versions: versions}}

	views := buildViews(results, viewOptions{now: viewNow, limit: 1})
	if got := versionLabels(views[0].Versions); !equalStrings(got, []string{"1.0.1"}) {
		t.Errorf("versions = %v, want [1.0.1]", got)
	}
	if len(views[0].Versions[0].DependencyTrees) != 1 {
		t.Error("dependency trees should survive filtering")
	}
}

func TestBuildViewsErrors(t *testing.T) {
	results := []pipeline.Result{{Module: "expo-nope", Error: "no changelog on main", ErrorCode: errors.ErrCodeChangelogNotFound}}

	views := buildViews(results, viewOptions{now: viewNow})
	if views[0].Error == "" || views[0].ErrorCode != errors.ErrCodeChangelogNotFound {
		t.Errorf("error not carried: %+v", views[0])
	}
	if views[0].Versions == nil {
		t.Error("versions should be an empty slice, not nil")
	}
}

func TestBuildViewsHideUnchanged(t *testing.T) {
	results := []pipeline.Result{
		{Module: "expo-blur", Content: silentChangelog},
		{Module: "expo-camera", Content: cameraChangelog},
		{Module: "expo-old", Content: "## 1.0.0 - 2020-01-01\n\n- Initial release.\n"},
	}

	views := buildViews(results, viewOptions{now: viewNow, dateFilter: changelog.DateLast30Days, hideUnchanged: true})

	var order []string
	for _, v := range views {
		order = append(order, v.Module)
	}
	want := []string{"expo-camera", "expo-blur", "expo-old"}
	if !equalStrings(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if !views[1].Unchanged || !views[2].Unchanged {
		t.Error("silent and out-of-window modules should be unchanged")
	}
}

func TestBuildViewsAfterLastVisit(t *testing.T) {
	results := []pipeline.Result{{Module: "expo-camera", Content: cameraChangelog}}
	opts := viewOptions{
		now:        viewNow,
		dateFilter: changelog.DateAfterLastVisit,
		lastViewed: map[string]time.Time{"expo-camera": time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
	}

	views := buildViews(results, opts)
	if got := versionLabels(views[0].Versions); !equalStrings(got, []string{"17.0.2", "17.0.1"}) {
		t.Errorf("versions = %v", got)
	}
}

func TestVisitLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "visits.json")

	v := loadVisits(path)
	if len(v.Modules) != 0 {
		t.Fatalf("missing file should load empty, got %v", v.Modules)
	}

	v.mark([]string{"expo-av", "expo-camera"}, viewNow)
	if err := v.save(); err != nil {
		t.Fatal(err)
	}

	loaded := loadVisits(path)
	if !loaded.Modules["expo-av"].Equal(viewNow) || !loaded.Modules["expo-camera"].Equal(viewNow) {
		t.Errorf("round trip lost visits: %v", loaded.Modules)
	}
}
