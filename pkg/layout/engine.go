package layout

import (
	"context"
	"io"
	"math"
	"slices"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	errs "github.com/matzehuels/capmap/pkg/errors"
	"github.com/matzehuels/capmap/pkg/hierarchy"
)

// Engine computes node geometry from a hierarchy and a sizing configuration.
// An Engine holds no per-computation state and may be shared.
type Engine struct {
	cfg      Config
	logger   *log.Logger
	parallel bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-node debug dumps.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithParallel finalizes the subtrees below the root concurrently.
// Results are identical to a sequential run.
func WithParallel(on bool) Option {
	return func(e *Engine) { e.parallel = on }
}

// NewEngine returns an engine for cfg.
func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine's sizing configuration.
func (e *Engine) Config() Config { return e.cfg }

// Compute runs both passes over h and returns every node positioned and
// sized. A positive Config.MaxSearchDepth replaces h's search bound. The
// hierarchy is validated first, and geometry that would give a node a
// non-positive size is INVALID_CONFIG; on any error no result is returned.
func (e *Engine) Compute(ctx context.Context, h *hierarchy.Hierarchy) (*Result, error) {
	if h == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "hierarchy is nil")
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	h = h.WithSearchDepth(e.cfg.MaxSearchDepth)
	if err := h.Validate(); err != nil {
		return nil, err
	}

	cfg := e.cfg
	cfg.MaxSearchDepth = h.MaxSearchDepth()
	depth, err := h.Depth()
	if err != nil {
		return nil, err
	}
	switch {
	case cfg.MaxDepth == 0:
		cfg.MaxDepth = depth
	case cfg.MaxDepth < depth:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "max depth %d is below the hierarchy depth %d", cfg.MaxDepth, depth)
	}

	c := &computation{cfg: cfg, h: h, logger: e.logger}
	if err := c.structural(ctx); err != nil {
		return nil, err
	}
	if err := c.geometry(ctx, e.parallel); err != nil {
		return nil, err
	}

	for _, n := range c.order {
		c.logger.Debug("node", "dump", n.String())
	}
	e.logger.Debug("layout computed", "nodes", len(c.order), "max_depth", cfg.MaxDepth)

	return &Result{Nodes: c.order, Root: c.root, Config: cfg, byID: c.byID}, nil
}

// computation is the state of one Compute call.
type computation struct {
	cfg    Config
	h      *hierarchy.Hierarchy
	logger *log.Logger

	order []*Node // hierarchy key order
	byID  map[string]*Node
	root  *Node
}

// =============================================================================
// Phase 1: structural pass
// =============================================================================

// structural creates one node per key in key order and resolves its level,
// rank, parent, siblings and children. Heights are set as soon as children
// are known.
func (c *computation) structural(ctx context.Context) error {
	keys := c.h.Keys()
	c.order = make([]*Node, len(keys))
	c.byID = make(map[string]*Node, len(keys))
	for i, id := range keys {
		n := &Node{
			Value:  id,
			Width:  c.cfg.BaseWidth,
			Height: c.cfg.BaseHeight,
			X:      c.cfg.StartX,
			Y:      c.cfg.StartY,
		}
		c.order[i] = n
		c.byID[id] = n
	}

	for _, n := range c.order {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.resolve(n); err != nil {
			return err
		}
	}
	return nil
}

func (c *computation) resolve(n *Node) error {
	level, err := c.h.LevelOf(n.Value)
	if err != nil {
		return err
	}
	if level > c.cfg.MaxSearchDepth {
		return errs.DepthExceeded(n.Value, c.cfg.MaxSearchDepth)
	}
	rank, err := c.h.RankOf(n.Value)
	if err != nil {
		return err
	}
	n.Level, n.Rank = level, rank

	if level == 0 {
		c.root = n
	} else {
		parentID, ok, err := c.h.ParentOf(n.Value)
		if err != nil {
			return err
		}
		if !ok {
			return errs.MalformedHierarchy("node %q at level %d has no parent", n.Value, level)
		}
		n.Parent = c.byID[parentID]

		sibs, err := c.h.SiblingsOf(n.Value)
		if err != nil {
			return err
		}
		n.Siblings = c.lookupAll(sibs)
	}

	kids, err := c.h.ChildrenOf(n.Value)
	if err != nil {
		return err
	}
	n.Children = c.lookupAll(kids)

	if !n.IsLeaf() {
		n.Height = c.cfg.BaseHeight + c.cfg.PaddingSize*2*float64(c.cfg.MaxDepth-level)
	}
	return nil
}

func (c *computation) lookupAll(ids []string) []*Node {
	if len(ids) == 0 {
		return nil
	}
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = c.byID[id]
	}
	return out
}

// =============================================================================
// Phase 2: geometry pass
// =============================================================================

// geometry finalizes width, x and y bottom-up. Nodes are visited in reverse
// key order and every node finalizes its children before itself, so no
// node is read before it is final and none is written twice.
func (c *computation) geometry(ctx context.Context, parallel bool) error {
	if parallel && len(c.root.Children) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for _, child := range c.root.Children {
			g.Go(func() error { return c.finalize(gctx, child) })
		}
		if err := g.Wait(); err != nil {
			return err
		}
		return c.finalize(ctx, c.root)
	}

	for _, n := range slices.Backward(c.order) {
		if err := c.finalize(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (c *computation) finalize(ctx context.Context, n *Node) error {
	if n.final {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := c.finalize(ctx, child); err != nil {
			return err
		}
	}

	cfg := c.cfg
	if n.IsLeaf() {
		parentRank := 0
		if n.Parent != nil {
			parentRank = n.Parent.Rank
		}
		n.Width = cfg.BaseWidth
		n.X = cfg.StartX +
			cfg.PaddingSize*float64(cfg.MaxDepth) +
			(cfg.BaseWidth/2)*float64(n.Rank+1) +
			cfg.PaddingSize*float64(n.Rank) +
			cfg.PaddingSize*float64(parentRank)
	} else {
		var width, xsum float64
		for _, child := range n.Children {
			width += child.Width
			xsum += child.X
		}
		n.Width = width - cfg.PaddingSize*2
		if n.Width <= 0 {
			return errs.New(errs.ErrCodeInvalidConfig, "node %q would be %g wide: padding %g is too large for base width %g",
				n.Value, n.Width, cfg.PaddingSize, cfg.BaseWidth)
		}
		n.X = xsum / float64(len(n.Children))
		if n.IsRoot() {
			n.X -= cfg.BaseWidth
		}
	}
	n.Y = cfg.StartY + float64(n.Level)*cfg.LevelSpacing
	n.final = true
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result is the output of a layout computation.
type Result struct {
	Nodes  []*Node // hierarchy key order
	Root   *Node
	Config Config // effective configuration, MaxDepth resolved

	byID map[string]*Node
}

// Lookup returns the node for id.
func (r *Result) Lookup(id string) (*Node, bool) {
	n, ok := r.byID[id]
	return n, ok
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal span of the box.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical span of the box.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Bounds returns the box enclosing every shape.
func (r *Result) Bounds() Rect {
	if len(r.Nodes) == 0 {
		return Rect{}
	}
	b := Rect{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, n := range r.Nodes {
		b.MinX = math.Min(b.MinX, n.Left())
		b.MaxX = math.Max(b.MaxX, n.Right())
		b.MinY = math.Min(b.MinY, n.Bottom())
		b.MaxY = math.Max(b.MaxY, n.Top())
	}
	return b
}
