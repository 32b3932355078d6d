package deps

// Path is the set of (package, version) pairs on the ancestor chain of a
// tree node. It is immutable: [Path.With] returns a new Path, so siblings
// built from the same parent never see each other's entries.
type Path struct {
	seen map[string]struct{}
}

func pathKey(pkg, version string) string { return pkg + ":" + version }

// Contains reports whether pkg@version is on the path.
func (p Path) Contains(pkg, version string) bool {
	_, ok := p.seen[pathKey(pkg, version)]
	return ok
}

// With returns a copy of p extended by pkg@version.
func (p Path) With(pkg, version string) Path {
	seen := make(map[string]struct{}, len(p.seen)+1)
	for k := range p.seen {
		seen[k] = struct{}{}
	}
	seen[pathKey(pkg, version)] = struct{}{}
	return Path{seen: seen}
}

// Len returns the number of entries on the path.
func (p Path) Len() int { return len(p.seen) }
