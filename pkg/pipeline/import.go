package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/capmap/pkg/cache"
	"github.com/matzehuels/capmap/pkg/hierarchy"
	capio "github.com/matzehuels/capmap/pkg/io"
	"github.com/matzehuels/capmap/pkg/observability"
)

// Import reads opts.Input and validates the hierarchy. Its level search
// bound is opts.Config.MaxSearchDepth, or the default when that is zero.
func Import(ctx context.Context, opts Options) (h *hierarchy.Hierarchy, err error) {
	if opts.Input == "" {
		return nil, fmt.Errorf("input is required")
	}

	hooks := observability.Pipeline()
	hooks.OnImportStart(ctx, opts.Input)
	start := time.Now()
	defer func() {
		n := 0
		if h != nil {
			n = h.Len()
		}
		hooks.OnImportComplete(ctx, opts.Input, n, time.Since(start), err)
	}()

	h, err = capio.Import(opts.Input, hierarchy.WithMaxSearchDepth(opts.Config.MaxSearchDepth))
	if err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// hierarchyKey is the hashed form of a hierarchy.
type hierarchyKey struct {
	Entries        []hierarchy.Entry `json:"entries"`
	MaxSearchDepth int               `json:"max_search_depth"`
}

// HashHierarchy returns a content hash of h covering key order, children
// and the search bound.
func HashHierarchy(h *hierarchy.Hierarchy) string {
	sum, _ := cache.HashJSON(hierarchyKey{Entries: h.Entries(), MaxSearchDepth: h.MaxSearchDepth()})
	return sum
}
