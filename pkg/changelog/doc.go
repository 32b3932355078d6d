// Package changelog parses Expo-style Markdown changelogs.
//
// # Overview
//
// A changelog is split into versions at every heading of level one to
// three whose text starts with a major.minor.patch version, optionally in
// brackets:
//
//	# 16.0.1 - 2025-09-11
//	## [16.0.0] (2025-08-01)
//	### 15.0.2 — 2025/07/20
//
// A document without such headings parses as one "All Changes" version.
//
// # No-user-facing-changes marker
//
// Expo publishes many releases whose only content is the sentence
// "This version does not introduce any user-facing changes." Such blocks
// are detected with two fixed case-insensitive phrases; [HasRealChanges]
// and [IsNoChange] are the single source of truth used both for a
// package's own changelog and for every dependency changelog inspected
// while building dependency trees.
//
// # Filters
//
// [FilterLimit], [FilterSince] and [FilterOutNoChange] narrow a parsed
// version list; [Combine] joins it back into Markdown.
package changelog
