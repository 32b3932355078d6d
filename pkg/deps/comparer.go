package deps

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/changetower/pkg/cache"
	"github.com/matzehuels/changetower/pkg/integrations"
	"github.com/matzehuels/changetower/pkg/integrations/npm"
)

// ManifestFetcher retrieves a published version's manifest from a registry.
// [*npm.Client] implements it.
type ManifestFetcher interface {
	FetchManifest(ctx context.Context, pkg, version string) (*npm.Manifest, error)
}

// Manifest holds the dependency sections of one published version.
type Manifest struct {
	Dependencies     map[string]string `json:"dependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
}

// Change is a dependency whose concrete version moved between two
// releases of its dependent.
type Change struct {
	Name       string `json:"name"`
	OldVersion string `json:"oldVersion"`
	NewVersion string `json:"newVersion"`
	IsDev      bool   `json:"isDev,omitempty"`
}

// Comparer diffs the dependencies of two versions of a package.
type Comparer struct {
	registry ManifestFetcher
	store    *cache.Store
	logger   *log.Logger
	now      func() time.Time
}

// NewComparer creates a Comparer. Manifests are cached in store for
// [cache.ManifestTTL] and versions the registry does not know for
// [cache.MissingManifestTTL]; a nil store disables caching.
func NewComparer(registry ManifestFetcher, store *cache.Store, logger *log.Logger) *Comparer {
	if logger == nil {
		logger = log.Default()
	}
	if store == nil {
		store = cache.NewStore(nil, logger)
	}
	return &Comparer{registry: registry, store: store, logger: logger, now: time.Now}
}

// Manifest returns the dependency sections of pkg@version, or nil if the
// manifest cannot be fetched or decoded.
func (c *Comparer) Manifest(ctx context.Context, pkg, version string) *Manifest {
	key := cache.ManifestKey(pkg, version)
	if rec := c.store.Manifests().Get(ctx, key); rec != nil && rec.ValidAt(c.now()) {
		if rec.Missing {
			return nil
		}
		return &Manifest{
			Dependencies:     orEmpty(rec.Dependencies),
			PeerDependencies: orEmpty(rec.PeerDependencies),
			DevDependencies:  orEmpty(rec.DevDependencies),
		}
	}

	m, err := c.registry.FetchManifest(ctx, pkg, version)
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			c.logger.Debug("manifest not found", "package", pkg, "version", version)
			c.store.Manifests().Set(ctx, cache.ManifestRecord{
				Key:         key,
				PackageName: pkg,
				Version:     version,
				Missing:     true,
				FetchedAt:   c.now().UnixMilli(),
				TTL:         cache.MissingManifestTTL.Milliseconds(),
			})
			return nil
		}
		c.logger.Warn("manifest fetch failed", "package", pkg, "version", version, "err", err)
		return nil
	}
	out := &Manifest{
		Dependencies:     orEmpty(m.Dependencies),
		PeerDependencies: orEmpty(m.PeerDependencies),
		DevDependencies:  orEmpty(m.DevDependencies),
	}

	c.store.Manifests().Set(ctx, cache.ManifestRecord{
		Key:              key,
		PackageName:      pkg,
		Version:          version,
		Dependencies:     out.Dependencies,
		PeerDependencies: out.PeerDependencies,
		DevDependencies:  out.DevDependencies,
		FetchedAt:        c.now().UnixMilli(),
		TTL:              cache.ManifestTTL.Milliseconds(),
	})
	return out
}

// FindChanges reports the ecosystem dependencies of pkg whose version
// moved between oldVersion and newVersion. Production changes (regular and
// peer dependencies, peer winning on a name clash) come first, then dev
// changes; each group is sorted by name. If either manifest is unavailable
// the result is empty.
func (c *Comparer) FindChanges(ctx context.Context, pkg, oldVersion, newVersion string) []Change {
	var before, after *Manifest
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		before = c.Manifest(gctx, pkg, oldVersion)
		return nil
	})
	g.Go(func() error {
		after = c.Manifest(gctx, pkg, newVersion)
		return nil
	})
	_ = g.Wait()

	if before == nil || after == nil {
		return nil
	}

	changes := CompareDependencies(prodView(before), prodView(after), false)
	changes = append(changes, CompareDependencies(before.DevDependencies, after.DevDependencies, true)...)

	out := changes[:0]
	for _, ch := range changes {
		if IsEcosystemPackage(ch.Name) {
			out = append(out, ch)
		}
	}
	return out
}

func prodView(m *Manifest) map[string]string {
	view := make(map[string]string, len(m.Dependencies)+len(m.PeerDependencies))
	for k, v := range m.Dependencies {
		view[k] = v
	}
	for k, v := range m.PeerDependencies {
		view[k] = v
	}
	return view
}

// CompareDependencies diffs two dependency maps. A change is reported for
// every name present in both maps whose cleaned versions differ. Names new
// in newDeps and unparseable ranges are skipped. Results are sorted by name.
func CompareDependencies(oldDeps, newDeps map[string]string, isDev bool) []Change {
	var changes []Change
	for name, newRange := range newDeps {
		newVersion, ok := CleanVersion(newRange)
		if !ok {
			continue
		}
		oldRange, present := oldDeps[name]
		if !present || oldRange == "" {
			continue
		}
		oldVersion, ok := CleanVersion(oldRange)
		if !ok {
			continue
		}
		if oldVersion != newVersion {
			changes = append(changes, Change{Name: name, OldVersion: oldVersion, NewVersion: newVersion, IsDev: isDev})
		}
	}
	slices.SortFunc(changes, func(a, b Change) int { return strings.Compare(a.Name, b.Name) })
	return changes
}

var (
	rangeSeparator = regexp.MustCompile(`\s*\|\|\s*`)
	rangeOperators = regexp.MustCompile(`^[\^~>=<]+`)
	concreteSemver = regexp.MustCompile(`^\d+\.\d+\.\d+`)
)

// CleanVersion reduces a version range to a concrete version: the first
// "||" alternative, without leading comparison, caret or tilde operators.
// ok is false unless the result starts with major.minor.patch.
//
//	CleanVersion("^1.2.3")           // "1.2.3", true
//	CleanVersion("5.0.0 || ^6.0.2") // "5.0.0", true
//	CleanVersion("*")                // "", false
func CleanVersion(r string) (string, bool) {
	first := strings.TrimSpace(rangeSeparator.Split(r, 2)[0])
	cleaned := rangeOperators.ReplaceAllString(first, "")
	if !concreteSemver.MatchString(cleaned) {
		return "", false
	}
	return cleaned, true
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
