package pipeline

import (
	"time"

	"github.com/matzehuels/changetower/pkg/catalog"
)

// TTLPolicy decides how long a cached changelog stays fresh. The main
// branch moves constantly, the latest SDK branch still gets patch
// releases, and older SDK branches are effectively frozen.
type TTLPolicy struct {
	Main      time.Duration
	Latest    time.Duration
	Older     time.Duration
	LatestSDK int
}

// DefaultTTLPolicy returns the policy used when none is configured.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		Main:      time.Hour,
		Latest:    24 * time.Hour,
		Older:     7 * 24 * time.Hour,
		LatestSDK: catalog.LatestSDK,
	}
}

// WithDefaults returns a copy of p with zero fields taken from
// [DefaultTTLPolicy].
func (p TTLPolicy) WithDefaults() TTLPolicy {
	d := DefaultTTLPolicy()
	if p.Main <= 0 {
		p.Main = d.Main
	}
	if p.Latest <= 0 {
		p.Latest = d.Latest
	}
	if p.Older <= 0 {
		p.Older = d.Older
	}
	if p.LatestSDK <= 0 {
		p.LatestSDK = d.LatestSDK
	}
	return p
}

// TTL returns the freshness window for branch. Branches that are neither
// main nor sdk-N get the long window.
func (p TTLPolicy) TTL(branch string) time.Duration {
	if branch == catalog.DefaultBranch() {
		return p.Main
	}
	n, ok := catalog.ParseSDKBranch(branch)
	if !ok {
		return p.Older
	}
	if n >= p.LatestSDK {
		return p.Latest
	}
	return p.Older
}
