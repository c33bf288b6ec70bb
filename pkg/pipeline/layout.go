package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/capmap/pkg/document"
	"github.com/matzehuels/capmap/pkg/hierarchy"
	"github.com/matzehuels/capmap/pkg/layout"
	"github.com/matzehuels/capmap/pkg/observability"
)

// =============================================================================
// Layout Generation
// =============================================================================

// ComputeLayout runs the layout engine on h and converts the result to a
// document. The engine result is returned as well for callers that want
// the linked node graph.
func ComputeLayout(ctx context.Context, h *hierarchy.Hierarchy, opts Options) (doc document.Document, res *layout.Result, err error) {
	if err := opts.ValidateForLayout(); err != nil {
		return document.Document{}, nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, h.Len())
	start := time.Now()
	defer func() {
		depth := 0
		if res != nil {
			depth = res.Config.MaxDepth
		}
		hooks.OnLayoutComplete(ctx, h.Len(), depth, time.Since(start), err)
	}()

	engine := layout.NewEngine(opts.Config,
		layout.WithLogger(opts.Logger),
		layout.WithParallel(opts.Parallel))
	res, err = engine.Compute(ctx, h)
	if err != nil {
		return document.Document{}, nil, err
	}
	return document.FromResult(res, opts.Title), res, nil
}
