// Package deps explains silent releases by walking dependency version
// deltas.
//
// # Overview
//
// When a version of an Expo package ships with nothing but the
// "no user-facing changes" marker, the real change lives in one of its
// dependencies. This package finds it:
//
//  1. [Comparer] fetches the npm manifests of the old and new version and
//     reports which Expo ecosystem dependencies moved ([Change]).
//  2. [TreeBuilder] reads each moved dependency's own changelog block for
//     its new version. A block with real content is a root cause and ends
//     that branch; otherwise the builder recurses into the dependency's own
//     deltas.
//
// Recursion is bounded by [MaxDepth] and by a per-path cycle guard
// ([Path]); siblings never block each other.
//
// # Usage
//
//	cmp := deps.NewComparer(registry, store, logger)
//	tb := deps.NewTreeBuilder(changelogs, cmp, cache.NewMemory(0), logger)
//	trees := tb.BuildAll(ctx, "expo-camera", "16.0.0", "16.0.1")
//	for _, t := range trees {
//	    fmt.Println(t.PackageName, t.HasRealChanges)
//	}
//
// Manifests are cached in the durable [cache.Store] for seven days;
// dependency changelogs live in a bounded [cache.Memory] for the process
// lifetime.
package deps
