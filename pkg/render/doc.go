// Package render defines the contract between computed layouts and the
// sinks that draw them.
//
// # Overview
//
// A sink is anything that can open a target document, drop shape masters at
// given coordinates, grow them and save the result. The contract is four
// small interfaces:
//
//   - [Opener]: opens a [Surface] from a template (empty means blank)
//   - [Surface]: drops a [Master] at (x, y) and saves to a path
//   - [Shape]: moves one of its four edges and carries a text label
//   - [Linker]: optional, connects a child shape to its parent
//
// [Draw] drives any sink through that contract for a [document.Document]:
//
//	err := render.Draw(ctx, sink.NewSVG(), render.Job{
//	    Document: doc,
//	    Output:   "airport.svg",
//	})
//
// Shapes are resized symmetrically: each edge moves by half of the
// difference between the shape size and the master's base size, so the
// shape stays centered on its layout position.
//
// # Stencils
//
// Masters live in a [Stencil]. [DefaultStencil] has one master named
// "Capability"; [LoadStencil] reads custom stencils from TOML.
//
// # Errors
//
// Every failure reported by a sink comes back from Draw as a RENDER_FAILED
// error whose cause is the sink's own error, untouched.
//
// # Format Conversion
//
// [ToPDF] converts SVG to PDF with the external rsvg-convert tool.
//
// [document.Document]: github.com/matzehuels/capmap/pkg/document
package render
