// Package sink provides concrete render surfaces for capmap drawings.
//
// Each surface implements [render.Surface] and [render.Linker]:
//
//   - [SVG] writes a standalone SVG document, optionally with connectors
//   - [PNG] rasterizes natively with 4x supersampling and the Go Regular font
//   - [PDF] converts the SVG output with rsvg-convert
//   - [DOT] emits a Graphviz graph with pinned positions, or renders it to SVG
//   - [JSON] writes the format-neutral [Drawing]
//   - [Mongo] upserts the [Drawing] into a MongoDB collection
//
// Every surface except [Mongo] also implements io.WriterTo and can be used
// with [render.Capture].
//
// Shapes are painted largest first so that groups lie beneath their members.
// Labels of shapes with linked children sit along the top edge; leaf labels
// are centered.
//
// # Usage
//
//	opener, err := sink.ForFormat("svg", sink.Options{Connectors: true})
//	if err != nil {
//	    return err
//	}
//	err = render.Draw(ctx, opener, render.Job{Document: doc, Output: "map.svg"})
package sink
