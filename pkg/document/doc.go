// Package document defines the serialized form of a computed capability map
// layout.
//
// A [Document] is the data contract between the layout engine and everything
// downstream: render sinks draw from it, the cache stores it, the HTTP API
// returns it and the MongoDB sink persists it. Field tags cover both JSON
// and BSON.
//
//	res, _ := layout.NewEngine(cfg).Compute(ctx, h)
//	doc := document.FromResult(res, "Airport")
//	_ = document.WriteFile(doc, "airport.layout.json")
//
// Shapes keep hierarchy key order; X and Y are shape centers. The bounding
// box fields let sinks fit their canvas around all shapes.
package document
