package hierarchy

import (
	"slices"
	"sync"

	errs "github.com/matzehuels/capmap/pkg/errors"
)

// DefaultMaxSearchDepth bounds level searches. Nodes deeper than this are
// reported with a DEPTH_EXCEEDED error instead of a wrong level.
const DefaultMaxSearchDepth = 10

// Entry is one hierarchy key with its ordered children.
type Entry struct {
	ID       string   `json:"id" toml:"id"`
	Children []string `json:"children" toml:"children"`
}

// Option configures a Hierarchy.
type Option func(*Hierarchy)

// WithMaxSearchDepth sets the level search bound. Values below 1 are ignored.
func WithMaxSearchDepth(n int) Option {
	return func(h *Hierarchy) {
		if n > 0 {
			h.maxSearchDepth = n
		}
	}
}

// Hierarchy is an ordered mapping from node identifier to ordered child
// identifiers. It is immutable once built and safe for concurrent reads.
//
// Structural facts (root, level, rank, parent) are derived lazily from an
// index built once on first use. Every query returns exactly what a fresh
// breadth-first search from the root would return.
type Hierarchy struct {
	keys           []string
	children       map[string][]string
	maxSearchDepth int

	once   sync.Once
	idx    *index
	idxErr error
}

// index holds the memoized structural facts of a validated hierarchy.
type index struct {
	root    string
	level   map[string]int
	rank    map[string]int
	parent  map[string]string
	byLevel [][]string // level -> ids in key order
}

var errBuilderUsed = errs.New(errs.ErrCodeInternal, "builder already built")

// Builder accumulates entries in insertion order.
type Builder struct {
	h   *Hierarchy
	err error
}

// NewBuilder returns a builder for a new hierarchy.
func NewBuilder(opts ...Option) *Builder {
	h := &Hierarchy{
		children:       make(map[string][]string),
		maxSearchDepth: DefaultMaxSearchDepth,
	}
	for _, opt := range opts {
		opt(h)
	}
	return &Builder{h: h}
}

// Add appends a key with its children. The first error is sticky and is
// returned again by Build.
func (b *Builder) Add(id string, children ...string) error {
	if b.err != nil {
		return b.err
	}
	if b.h == nil {
		return errBuilderUsed
	}
	if err := errs.ValidateNodeID(id); err != nil {
		b.err = err
		return err
	}
	if _, exists := b.h.children[id]; exists {
		b.err = errs.MalformedHierarchy("duplicate key %q", id)
		return b.err
	}
	b.h.keys = append(b.h.keys, id)
	b.h.children[id] = slices.Clone(children)
	return nil
}

// Build returns the hierarchy. Structural invariants are checked by
// [Hierarchy.Validate], not here, so malformed trees can still be inspected.
func (b *Builder) Build() (*Hierarchy, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.h == nil {
		return nil, errBuilderUsed
	}
	h := b.h
	b.h = nil
	return h, nil
}

// FromEntries builds a hierarchy from entries in order.
func FromEntries(entries []Entry, opts ...Option) (*Hierarchy, error) {
	b := NewBuilder(opts...)
	for _, e := range entries {
		if err := b.Add(e.ID, e.Children...); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

// Keys returns the identifiers in hierarchy key order.
func (h *Hierarchy) Keys() []string { return slices.Clone(h.keys) }

// Len returns the number of keys.
func (h *Hierarchy) Len() int { return len(h.keys) }

// Contains reports whether id is a key.
func (h *Hierarchy) Contains(id string) bool {
	_, ok := h.children[id]
	return ok
}

// MaxSearchDepth returns the level search bound.
func (h *Hierarchy) MaxSearchDepth() int { return h.maxSearchDepth }

// WithSearchDepth returns a hierarchy with the same entries and a level
// search bound of n, which may be higher or lower than h's. h itself is
// unchanged. Values below 1, or equal to the current bound, return h.
func (h *Hierarchy) WithSearchDepth(n int) *Hierarchy {
	if n < 1 || n == h.maxSearchDepth {
		return h
	}
	return &Hierarchy{keys: h.keys, children: h.children, maxSearchDepth: n}
}

// Entries returns a copy of the hierarchy as ordered entries.
func (h *Hierarchy) Entries() []Entry {
	out := make([]Entry, len(h.keys))
	for i, k := range h.keys {
		out[i] = Entry{ID: k, Children: slices.Clone(h.children[k])}
	}
	return out
}

// ChildrenOf returns the child sequence of id verbatim (empty for leaves).
// The returned slice must not be modified.
func (h *Hierarchy) ChildrenOf(id string) ([]string, error) {
	kids, ok := h.children[id]
	if !ok {
		return nil, errs.UnknownNode(id)
	}
	return kids, nil
}

// Validate checks every structural invariant and returns the first
// violation:
//
//  1. The hierarchy is not empty
//  2. Every child identifier is a key
//  3. No child sequence contains duplicates
//  4. No identifier has more than one parent
//  5. Exactly one key appears in no child sequence (the root)
//  6. Every key is reachable from the root (no detached cycles)
func (h *Hierarchy) Validate() error {
	_, err := h.index()
	return err
}

// Root returns the identifier that is a key but nobody's child.
func (h *Hierarchy) Root() (string, error) {
	idx, err := h.index()
	if err != nil {
		return "", err
	}
	return idx.root, nil
}

// LevelOf returns the breadth-first distance from the root to id.
func (h *Hierarchy) LevelOf(id string) (int, error) {
	if !h.Contains(id) {
		return 0, errs.UnknownNode(id)
	}
	idx, err := h.index()
	if err != nil {
		return 0, err
	}
	lvl := idx.level[id]
	if lvl > h.maxSearchDepth {
		return 0, errs.DepthExceeded(id, h.maxSearchDepth)
	}
	return lvl, nil
}

// NodesAtLevel returns all identifiers at level n, in hierarchy key order.
func (h *Hierarchy) NodesAtLevel(n int) ([]string, error) {
	idx, err := h.index()
	if err != nil {
		return nil, err
	}
	if n > h.maxSearchDepth {
		return nil, errs.New(errs.ErrCodeDepthExceeded, "level %d is beyond the search bound %d", n, h.maxSearchDepth)
	}
	if n < 0 || n >= len(idx.byLevel) {
		return nil, nil
	}
	return slices.Clone(idx.byLevel[n]), nil
}

// RankOf returns the index of id among the nodes sharing its level.
func (h *Hierarchy) RankOf(id string) (int, error) {
	if _, err := h.LevelOf(id); err != nil {
		return 0, err
	}
	idx, _ := h.index()
	return idx.rank[id], nil
}

// ParentOf returns the unique key whose children contain id. The boolean is
// false for the root.
func (h *Hierarchy) ParentOf(id string) (string, bool, error) {
	if !h.Contains(id) {
		return "", false, errs.UnknownNode(id)
	}
	idx, err := h.index()
	if err != nil {
		return "", false, err
	}
	p, ok := idx.parent[id]
	return p, ok, nil
}

// SiblingsOf returns the children of id's parent without id, order
// preserved. The root has no siblings.
func (h *Hierarchy) SiblingsOf(id string) ([]string, error) {
	parent, ok, err := h.ParentOf(id)
	if err != nil || !ok {
		return nil, err
	}
	var out []string
	for _, s := range h.children[parent] {
		if s != id {
			out = append(out, s)
		}
	}
	return out, nil
}

// Depth returns the deepest level in the hierarchy.
func (h *Hierarchy) Depth() (int, error) {
	idx, err := h.index()
	if err != nil {
		return 0, err
	}
	depth := len(idx.byLevel) - 1
	if depth > h.maxSearchDepth {
		deepest := idx.byLevel[depth][0]
		return 0, errs.DepthExceeded(deepest, h.maxSearchDepth)
	}
	return depth, nil
}

func (h *Hierarchy) index() (*index, error) {
	h.once.Do(func() {
		h.idx, h.idxErr = buildIndex(h)
	})
	return h.idx, h.idxErr
}

func buildIndex(h *Hierarchy) (*index, error) {
	if len(h.keys) == 0 {
		return nil, errs.MalformedHierarchy("hierarchy is empty")
	}

	parent := make(map[string]string, len(h.keys))
	for _, k := range h.keys {
		seen := make(map[string]bool, len(h.children[k]))
		for _, c := range h.children[k] {
			if _, ok := h.children[c]; !ok {
				return nil, errs.MalformedHierarchy("child %q of %q is not a key", c, k)
			}
			if seen[c] {
				return nil, errs.MalformedHierarchy("duplicate child %q under %q", c, k)
			}
			seen[c] = true
			if prev, ok := parent[c]; ok {
				return nil, errs.MalformedHierarchy("node %q has two parents: %q and %q", c, prev, k)
			}
			parent[c] = k
		}
	}

	var roots []string
	for _, k := range h.keys {
		if _, ok := parent[k]; !ok {
			roots = append(roots, k)
		}
	}
	switch len(roots) {
	case 1:
	case 0:
		return nil, errs.MalformedHierarchy("no root: every key is someone's child")
	default:
		return nil, errs.MalformedHierarchy("%d roots (%q, %q, ...): exactly one is required", len(roots), roots[0], roots[1])
	}

	level := bfsLevels(h, roots[0])
	for _, k := range h.keys {
		if _, ok := level[k]; !ok {
			return nil, errs.MalformedHierarchy("node %q is unreachable from root %q (cycle)", k, roots[0])
		}
	}

	idx := &index{
		root:   roots[0],
		level:  level,
		rank:   make(map[string]int, len(h.keys)),
		parent: parent,
	}
	for _, k := range h.keys {
		lvl := level[k]
		for len(idx.byLevel) <= lvl {
			idx.byLevel = append(idx.byLevel, nil)
		}
		idx.rank[k] = len(idx.byLevel[lvl])
		idx.byLevel[lvl] = append(idx.byLevel[lvl], k)
	}
	return idx, nil
}

// bfsLevels walks the tree level by level from root. Parent uniqueness is
// checked beforehand, so each node is enqueued at most once and the walk
// terminates even when a detached cycle exists.
func bfsLevels(h *Hierarchy, root string) map[string]int {
	level := map[string]int{root: 0}
	frontier := []string{root}
	for depth := 1; len(frontier) > 0; depth++ {
		var next []string
		for _, id := range frontier {
			for _, c := range h.children[id] {
				if _, seen := level[c]; seen {
					continue
				}
				level[c] = depth
				next = append(next, c)
			}
		}
		frontier = next
	}
	return level
}
