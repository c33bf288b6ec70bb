// Package layout computes the position and size of every node in a
// capability map.
//
// # Overview
//
// The engine runs two passes over a [hierarchy.Hierarchy]:
//
//  1. Structural (top-down, key order): one [Node] per identifier with its
//     level, rank, parent, siblings and children. Inner nodes get taller the
//     shallower they are: height = baseHeight + padding*2*(maxDepth-level).
//  2. Geometry (bottom-up, reverse key order): leaves keep the base width
//     and are spaced by rank; an inner node spans its children
//     (sum of child widths minus two paddings) and is centered over them.
//     The root is additionally shifted left by one base width.
//
// Leaf x positions follow
//
//	x = startX + padding*maxDepth + (baseWidth/2)*(rank+1) + padding*rank + padding*parent.rank
//
// and every node sits at y = startY + level*levelSpacing.
//
// # Usage
//
//	h, _ := io.ImportJSON("map.json")
//	res, err := layout.NewEngine(layout.DefaultConfig()).Compute(ctx, h)
//	if err != nil {
//	    return err
//	}
//	for _, n := range res.Nodes {
//	    fmt.Println(n)
//	}
//
// A zero MaxDepth in [Config] is replaced by the depth of the hierarchy; the
// effective value is reported in [Result.Config].
//
// # Errors
//
// Compute validates the hierarchy before any geometry is computed and
// returns MALFORMED_HIERARCHY, UNKNOWN_NODE or DEPTH_EXCEEDED errors from
// package errors unchanged. No partial result is ever returned.
//
// [hierarchy.Hierarchy]: github.com/matzehuels/capmap/pkg/hierarchy
package layout
