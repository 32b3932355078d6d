package cache

import "time"

// ManifestTTL is the lifetime of registry manifest records. A published
// package version never changes upstream, so the TTL is long.
const ManifestTTL = 7 * 24 * time.Hour

// MissingManifestTTL is the lifetime of a record noting that a version
// was not found in the registry.
const MissingManifestTTL = time.Hour

// ChangelogRecord is a cached changelog document for one package on one
// branch. FetchedAt and TTL are in milliseconds.
type ChangelogRecord struct {
	Key       string `json:"key" validate:"required"`
	Module    string `json:"module" validate:"required"`
	Branch    string `json:"branch" validate:"required"`
	Content   string `json:"content" validate:"required"`
	FetchedAt int64  `json:"fetchedAt" validate:"gt=0"`
	TTL       int64  `json:"ttl" validate:"gt=0"`
}

// ChangelogKey returns the store key for a package changelog on a branch.
func ChangelogKey(pkg, branch string) string {
	return pkg + "-" + branch
}

// NewChangelogRecord builds a record fetched at the given time.
func NewChangelogRecord(pkg, branch, content string, fetchedAt time.Time, ttl time.Duration) ChangelogRecord {
	return ChangelogRecord{
		Key:       ChangelogKey(pkg, branch),
		Module:    pkg,
		Branch:    branch,
		Content:   content,
		FetchedAt: fetchedAt.UnixMilli(),
		TTL:       ttl.Milliseconds(),
	}
}

// ValidAt reports whether the record is still fresh at now under ttl.
func (r ChangelogRecord) ValidAt(now time.Time, ttl time.Duration) bool {
	return isFresh(r.FetchedAt, ttl.Milliseconds(), now)
}

// Time returns FetchedAt as a time.Time.
func (r ChangelogRecord) Time() time.Time { return time.UnixMilli(r.FetchedAt) }

// ManifestRecord is a cached registry manifest for one package version.
// Missing records remember a version the registry answered 404 for.
type ManifestRecord struct {
	Key              string            `json:"key" validate:"required"`
	PackageName      string            `json:"packageName" validate:"required"`
	Version          string            `json:"version" validate:"required"`
	Dependencies     map[string]string `json:"dependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	Missing          bool              `json:"missing,omitempty"`
	FetchedAt        int64             `json:"fetchedAt" validate:"gt=0"`
	TTL              int64             `json:"ttl" validate:"gt=0"`
}

// ManifestKey returns the store key for a package version manifest.
func ManifestKey(pkg, version string) string {
	return pkg + ":" + version
}

// ValidAt reports whether the record is still fresh at now under its own TTL.
func (r ManifestRecord) ValidAt(now time.Time) bool {
	return isFresh(r.FetchedAt, r.TTL, now)
}

// isFresh implements now - fetchedAt < ttl on millisecond timestamps.
func isFresh(fetchedAt, ttl int64, now time.Time) bool {
	return now.UnixMilli()-fetchedAt < ttl
}
