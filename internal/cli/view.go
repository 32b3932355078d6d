package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/changetower/pkg/changelog"
	"github.com/matzehuels/changetower/pkg/errors"
	"github.com/matzehuels/changetower/pkg/pipeline"
)

// viewOptions selects which versions of each changelog are shown.
type viewOptions struct {
	limit         int
	dateFilter    changelog.DateFilter
	hideUnchanged bool
	now           time.Time
	lastViewed    map[string]time.Time
}

// moduleView is one changelog prepared for display.
type moduleView struct {
	Module    string                     `json:"module"`
	Cached    bool                       `json:"cached"`
	FetchedAt *time.Time                 `json:"fetchedAt,omitempty"`
	Error     string                     `json:"error,omitempty"`
	ErrorCode errors.Code                `json:"errorCode,omitempty"`
	Unchanged bool                       `json:"unchanged"`
	Versions  []pipeline.EnrichedVersion `json:"versions"`
}

// buildViews applies the date window and then the version limit to each
// result. Modules without user-facing changes, or with nothing left in
// the date window, are marked unchanged; with hideUnchanged they move to
// the end, keeping their relative order.
func buildViews(results []pipeline.Result, opts viewOptions) []moduleView {
	views := make([]moduleView, 0, len(results))
	for _, r := range results {
		v := moduleView{
			Module:    r.Module,
			Cached:    r.Cached,
			FetchedAt: r.FetchedAt,
			Error:     r.Error,
			ErrorCode: r.ErrorCode,
			Versions:  []pipeline.EnrichedVersion{},
		}
		if !r.OK() {
			views = append(views, v)
			continue
		}

		versions := r.Versions
		if versions == nil {
			for _, p := range changelog.Parse(r.Content) {
				versions = append(versions, pipeline.EnrichedVersion{Version: p})
			}
		}

		cutoff := opts.dateFilter.Cutoff(opts.now, opts.lastViewed[r.Module])
		inWindow := selectVersions(versions, func(vs []changelog.Version) []changelog.Version {
			return changelog.FilterSince(vs, cutoff)
		})
		v.Versions = selectVersions(inWindow, func(vs []changelog.Version) []changelog.Version {
			return changelog.FilterLimit(vs, opts.limit)
		})
		v.Unchanged = changelog.HasNoUserFacingChanges(r.Content) ||
			(opts.dateFilter != changelog.DateAll && opts.dateFilter != "" && len(inWindow) == 0)
		views = append(views, v)
	}

	if !opts.hideUnchanged {
		return views
	}
	sorted := make([]moduleView, 0, len(views))
	for _, v := range views {
		if !v.Unchanged {
			sorted = append(sorted, v)
		}
	}
	for _, v := range views {
		if v.Unchanged {
			sorted = append(sorted, v)
		}
	}
	return sorted
}

// selectVersions runs a changelog filter over enriched versions, keeping
// the enrichment of the survivors.
func selectVersions(versions []pipeline.EnrichedVersion, filter func([]changelog.Version) []changelog.Version) []pipeline.EnrichedVersion {
	plain := make([]changelog.Version, len(versions))
	for i, v := range versions {
		plain[i] = v.Version
	}
	kept := make(map[string]bool, len(versions))
	for _, v := range filter(plain) {
		kept[v.Version] = true
	}
	out := make([]pipeline.EnrichedVersion, 0, len(kept))
	for _, v := range versions {
		if kept[v.Version.Version] {
			out = append(out, v)
		}
	}
	return out
}

// =============================================================================
// Last visits
// =============================================================================

// visitLog records when each module's changelog was last shown. It backs
// the after-last-visit date filter.
type visitLog struct {
	path    string
	Modules map[string]time.Time `json:"modules"`
}

// loadVisits reads the visit log at path. A missing or unreadable file
// yields an empty log.
func loadVisits(path string) *visitLog {
	v := &visitLog{path: path, Modules: map[string]time.Time{}}
	data, err := os.ReadFile(path)
	if err != nil {
		return v
	}
	if err := json.Unmarshal(data, v); err != nil || v.Modules == nil {
		v.Modules = map[string]time.Time{}
	}
	return v
}

// mark records now as the last visit of each module.
func (v *visitLog) mark(modules []string, now time.Time) {
	for _, m := range modules {
		v.Modules[m] = now
	}
}

func (v *visitLog) save() error {
	if err := os.MkdirAll(filepath.Dir(v.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(v.path, data, 0o644)
}
