package deps

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/changetower/pkg/cache"
	"github.com/matzehuels/changetower/pkg/changelog"
	"github.com/matzehuels/changetower/pkg/integrations"
)

const (
	// MaxDepth bounds the recursion of [TreeBuilder.Build].
	MaxDepth = 10

	// MainBranch is the ref dependency changelogs are always read from,
	// whatever branch the explained release came from.
	MainBranch = "main"
)

// Node explains one dependency version bump. A node with HasRealChanges
// set is a root cause and has no children.
type Node struct {
	PackageName          string  `json:"packageName"`
	OldVersion           string  `json:"oldVersion"`
	NewVersion           string  `json:"newVersion"`
	Changelog            string  `json:"changelog,omitempty"`
	HasRealChanges       bool    `json:"hasRealChanges"`
	NoChangelogAvailable bool    `json:"noChangelogAvailable,omitempty"`
	IsDev                bool    `json:"isDev,omitempty"`
	Children             []*Node `json:"children"`
}

// Walk calls fn for n and every descendant, depth first, in child order.
func (n *Node) Walk(fn func(n *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int), depth int) {
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// RootCauses returns the nodes of the tree with real changes.
func (n *Node) RootCauses() []*Node {
	var out []*Node
	n.Walk(func(n *Node, _ int) {
		if n.HasRealChanges {
			out = append(out, n)
		}
	})
	return out
}

// ChangelogFetcher retrieves a package's raw changelog on a branch.
// [*github.Client] implements it.
type ChangelogFetcher interface {
	FetchChangelog(ctx context.Context, pkg, branch string) (string, error)
}

// ChangeFinder reports dependency deltas between two versions.
// [*Comparer] implements it.
type ChangeFinder interface {
	FindChanges(ctx context.Context, pkg, oldVersion, newVersion string) []Change
}

// TreeBuilder builds dependency trees that explain silent releases.
// It is safe for concurrent use.
type TreeBuilder struct {
	changelogs ChangelogFetcher
	changes    ChangeFinder
	memory     *cache.Memory
	inflight   singleflight.Group
	logger     *log.Logger
}

// NewTreeBuilder creates a TreeBuilder. Changelog lookups are cached in
// memory, which must not be nil.
func NewTreeBuilder(changelogs ChangelogFetcher, changes ChangeFinder, memory *cache.Memory, logger *log.Logger) *TreeBuilder {
	if logger == nil {
		logger = log.Default()
	}
	return &TreeBuilder{changelogs: changelogs, changes: changes, memory: memory, logger: logger}
}

// BuildAll explains pkg going from oldVersion to newVersion: one tree per
// changed dependency, the first report of a name winning. Every tree is
// read from [MainBranch].
func (b *TreeBuilder) BuildAll(ctx context.Context, pkg, oldVersion, newVersion string) []*Node {
	var unique []Change
	seen := make(map[string]bool)
	for _, ch := range b.changes.FindChanges(ctx, pkg, oldVersion, newVersion) {
		if seen[ch.Name] {
			continue
		}
		seen[ch.Name] = true
		unique = append(unique, ch)
	}
	return b.buildChanges(ctx, unique, 0, Path{})
}

// Build explains a single bump of pkg. Recursion stops at [MaxDepth], at a
// package version already on path, at a changelog without a block for
// newVersion, and at a block with real changes. Packages without a known
// changelog are traversed through their own dependency deltas.
func (b *TreeBuilder) Build(ctx context.Context, pkg, oldVersion, newVersion, branch string, depth int, path Path, isDev bool) *Node {
	node := &Node{
		PackageName: pkg,
		OldVersion:  oldVersion,
		NewVersion:  newVersion,
		IsDev:       isDev,
		Children:    []*Node{},
	}
	if depth >= MaxDepth || path.Contains(pkg, newVersion) {
		return node
	}
	path = path.With(pkg, newVersion)

	doc, ok := b.changelog(ctx, pkg, branch)
	if !ok {
		node.NoChangelogAvailable = true
	} else {
		block, found := changelog.ExtractVersion(doc, newVersion)
		if !found {
			return node
		}
		node.Changelog = block
		node.HasRealChanges = changelog.HasRealChanges(block)
		if node.HasRealChanges {
			b.logger.Debug("root cause found", "package", pkg, "version", newVersion, "depth", depth)
			return node
		}
	}

	node.Children = b.buildChanges(ctx, b.changes.FindChanges(ctx, pkg, oldVersion, newVersion), depth+1, path)
	return node
}

// buildChanges builds one subtree per change concurrently. Results keep
// the order of changes.
func (b *TreeBuilder) buildChanges(ctx context.Context, changes []Change, depth int, path Path) []*Node {
	nodes := make([]*Node, len(changes))
	var g errgroup.Group
	for i, ch := range changes {
		g.Go(func() error {
			nodes[i] = b.Build(ctx, ch.Name, ch.OldVersion, ch.NewVersion, MainBranch, depth, path, ch.IsDev)
			return nil
		})
	}
	_ = g.Wait()
	return nodes
}

// changelog returns the changelog of pkg on branch. ok is false for
// packages without a known changelog, for documents missing upstream and
// for lookups that failed. Only definite answers are cached; concurrent
// lookups of the same document share one request.
func (b *TreeBuilder) changelog(ctx context.Context, pkg, branch string) (string, bool) {
	if !HasChangelog(pkg) {
		return "", false
	}
	key := cache.MemoryKey(pkg, branch)
	if e, ok := b.memory.Get(ctx, key); ok {
		return e.Content, e.Found && e.Content != ""
	}

	v, _, _ := b.inflight.Do(key, func() (any, error) {
		if e, ok := b.memory.Get(ctx, key); ok {
			return e, nil
		}
		content, err := b.changelogs.FetchChangelog(ctx, pkg, branch)
		if err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				b.memory.Set(ctx, key, cache.MemoryEntry{})
			} else {
				b.logger.Warn("dependency changelog fetch failed", "package", pkg, "branch", branch, "err", err)
			}
			return cache.MemoryEntry{}, nil
		}
		e := cache.MemoryEntry{Content: content, Found: true}
		b.memory.Set(ctx, key, e)
		return e, nil
	})
	e := v.(cache.MemoryEntry)
	return e.Content, e.Found && e.Content != ""
}
