// Package pkg provides the core libraries for capmap capability maps.
//
// # Overview
//
// capmap turns a capability hierarchy (every entry lists its children) into
// a 2-D diagram in which leaves sit side by side at the bottom and every
// parent box is wide enough to enclose its children. The pkg directory is
// organized into these areas:
//
//  1. [hierarchy] - The tree model: ordered keys, children, levels, validation
//  2. [layout] - The two-pass engine that sizes and positions every node
//  3. [document] - The serialized layout handed between commands and services
//  4. [render] - The render contract, stencils and the sinks behind it
//  5. [pipeline] - Orchestration (import → layout → render) with caching
//
// # Architecture
//
// The typical data flow through capmap:
//
//	Hierarchy file (JSON, TOML, YAML)
//	         ↓
//	    [io] package (decode, keep key order)
//	         ↓
//	    [hierarchy] package (validate: one root, no dangling children)
//	         ↓
//	    [layout] package (leaf pass, then parents bottom-up)
//	         ↓
//	    [document] package (shapes with size, position and relations)
//	         ↓
//	    [render/sink] package (SVG, PNG, PDF, DOT, JSON, MongoDB)
//
// # Quick Start
//
// Lay out and render a hierarchy:
//
//	import (
//	    "github.com/matzehuels/capmap/pkg/document"
//	    capio "github.com/matzehuels/capmap/pkg/io"
//	    "github.com/matzehuels/capmap/pkg/layout"
//	    "github.com/matzehuels/capmap/pkg/render"
//	    "github.com/matzehuels/capmap/pkg/render/sink"
//	)
//
//	// 1. Read the hierarchy
//	h, _ := capio.Import("airport.toml")
//
//	// 2. Compute the layout
//	res, _ := layout.NewEngine(layout.DefaultConfig()).Compute(ctx, h)
//	doc := document.FromResult(res, "Airport")
//
//	// 3. Draw it
//	_ = render.Draw(ctx, sink.NewSVG(), render.Job{Document: doc, Output: "airport.svg"})
//
// # Package Organization
//
// [hierarchy] - Identifiers, ordered children, level lookups bounded by a
// search depth, and structural validation with coded errors.
//
// [io] - Readers and writers for JSON (object and entry-list forms), TOML
// and YAML that preserve key order.
//
// [layout] - [layout.Engine] computes widths bottom-up from the leaves and
// places parents centered over their children. [layout.Node] carries the
// full descriptor: level, rank, parent, siblings, children and geometry.
//
// [document] - The JSON form of a layout, validated on read.
//
// [render] - The [render.Surface] contract sinks implement, shape masters
// loaded from TOML stencils, and [render.Draw] which drops every shape.
//
// [render/sink] - Concrete surfaces: SVG, PNG (rasterized with x/image),
// PDF (via rsvg-convert), DOT (checked with go-graphviz), a JSON drawing,
// and a MongoDB collection.
//
// [cache] - File, Redis and null caches keyed by content hashes.
//
// [pipeline] - The runner shared by the CLI and the HTTP server.
//
// [observability] - Optional hooks for logging or metrics.
//
// [errors] - Coded errors shared by every package.
//
// [hierarchy]: https://pkg.go.dev/github.com/matzehuels/capmap/pkg/hierarchy
// [io]: https://pkg.go.dev/github.com/matzehuels/capmap/pkg/io
// [layout]: https://pkg.go.dev/github.com/matzehuels/capmap/pkg/layout
// [document]: https://pkg.go.dev/github.com/matzehuels/capmap/pkg/document
// [render]: https://pkg.go.dev/github.com/matzehuels/capmap/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/capmap/pkg/render/sink
// [cache]: https://pkg.go.dev/github.com/matzehuels/capmap/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/capmap/pkg/pipeline
// [observability]: https://pkg.go.dev/github.com/matzehuels/capmap/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/capmap/pkg/errors
package pkg
