// Package hierarchy provides the tree model consumed by the layout engine.
//
// # Overview
//
// A capability map is a rooted tree given as an ordered mapping from node
// identifier to the ordered identifiers of its children:
//
//	Customer Travel Experience -> [Check-In, Boarding]
//	Check-In                   -> [Luggage Acceptance]
//	Boarding                   -> []
//	Luggage Acceptance         -> []
//
// Key order matters: it decides the rank of each node within its level and
// the order in which the layout engine visits nodes.
//
// # Basic Usage
//
//	b := hierarchy.NewBuilder()
//	_ = b.Add("root", "a", "b")
//	_ = b.Add("a")
//	_ = b.Add("b")
//	h, err := b.Build()
//
// Query structural facts with [Hierarchy.Root], [Hierarchy.LevelOf],
// [Hierarchy.RankOf], [Hierarchy.ParentOf], [Hierarchy.SiblingsOf] and
// [Hierarchy.NodesAtLevel]. Call [Hierarchy.Validate] to reject malformed input
// before computing anything from it.
//
// # Invariants
//
// A valid hierarchy has exactly one root, every child is itself a key, no
// child sequence repeats an identifier, no identifier has two parents and no
// identifier is its own ancestor. Violations are reported as
// MALFORMED_HIERARCHY errors from package errors; lookups of absent
// identifiers as UNKNOWN_NODE; nodes deeper than the search bound as
// DEPTH_EXCEEDED.
//
// # Concurrency
//
// A built Hierarchy is immutable. The lazily built index is guarded by a
// sync.Once, so concurrent queries are safe.
package hierarchy
