// Package io reads and writes capability map hierarchies.
//
// # Overview
//
// A hierarchy file maps each node identifier to the ordered list of its
// children. Key order is significant (it decides rank within a level), so
// every reader here keeps document order instead of decoding into a Go map.
//
// # Formats
//
// JSON (object or entry array):
//
//	{"Travel": ["Check-In", "Boarding"], "Check-In": [], "Boarding": []}
//
// TOML:
//
//	Travel = ["Check-In", "Boarding"]
//	Check-In = []
//	Boarding = []
//
// YAML:
//
//	Travel: [Check-In, Boarding]
//	Check-In:
//	Boarding:
//
// # Import
//
// Use [Import] to pick the decoder from the file extension, or the
// format-specific [ImportJSON], [ImportTOML], [ImportYAML] and their
// io.Reader counterparts. Options such as
// hierarchy.WithMaxSearchDepth are passed through to the builder.
//
//	h, err := io.Import("airport.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := h.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// Readers report syntax problems as INVALID_FORMAT and duplicate keys as
// MALFORMED_HIERARCHY. Whole-tree invariants are left to Validate so that a
// malformed file can still be loaded and inspected.
//
// # Export
//
// [WriteJSON] and [WriteYAML] emit keys in hierarchy order; the output
// round-trips through the matching reader.
package io
