package document

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	errs "github.com/matzehuels/capmap/pkg/errors"
	"github.com/matzehuels/capmap/pkg/layout"
)

// =============================================================================
// Document - Serialized Layout
// =============================================================================

// Document is the serialized form of a computed layout. It is what render
// sinks consume, what the cache stores and what the API returns.
type Document struct {
	ID    string `json:"id" bson:"_id"`
	Title string `json:"title,omitempty" bson:"title,omitempty"`

	// Bounding box enclosing every shape.
	MinX   float64 `json:"min_x" bson:"min_x"`
	MinY   float64 `json:"min_y" bson:"min_y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	// Config is the effective sizing configuration (MaxDepth resolved).
	Config layout.Config `json:"config" bson:"config"`

	// Shapes in hierarchy key order.
	Shapes []Shape `json:"shapes" bson:"shapes"`
}

// =============================================================================
// Shape - Positioned Node
// =============================================================================

// Shape is one positioned node. X and Y are the shape center.
type Shape struct {
	ID     string  `json:"id" bson:"id"`
	Label  string  `json:"label" bson:"label"`
	Level  int     `json:"level" bson:"level"`
	Rank   int     `json:"rank" bson:"rank"`
	Parent string  `json:"parent,omitempty" bson:"parent,omitempty"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// IsRoot reports whether the shape has no parent.
func (s Shape) IsRoot() bool { return s.Parent == "" }

// FromResult converts a layout result into a document with a fresh ID.
func FromResult(res *layout.Result, title string) Document {
	b := res.Bounds()
	doc := Document{
		ID:     uuid.NewString(),
		Title:  title,
		MinX:   b.MinX,
		MinY:   b.MinY,
		Width:  b.Width(),
		Height: b.Height(),
		Config: res.Config,
		Shapes: make([]Shape, len(res.Nodes)),
	}
	for i, n := range res.Nodes {
		s := Shape{
			ID:     n.Value,
			Label:  n.Value,
			Level:  n.Level,
			Rank:   n.Rank,
			X:      n.X,
			Y:      n.Y,
			Width:  n.Width,
			Height: n.Height,
		}
		if n.Parent != nil {
			s.Parent = n.Parent.Value
		}
		doc.Shapes[i] = s
	}
	return doc
}

// Validate checks that the document can be rendered.
func (d Document) Validate() error {
	if len(d.Shapes) == 0 {
		return errs.New(errs.ErrCodeInvalidInput, "document has no shapes")
	}
	seen := make(map[string]bool, len(d.Shapes))
	roots := 0
	for _, s := range d.Shapes {
		if s.ID == "" {
			return errs.New(errs.ErrCodeInvalidInput, "shape with empty id")
		}
		if seen[s.ID] {
			return errs.New(errs.ErrCodeInvalidInput, "duplicate shape %q", s.ID)
		}
		seen[s.ID] = true
		if s.Width <= 0 || s.Height <= 0 {
			return errs.New(errs.ErrCodeInvalidInput, "shape %q has non-positive size %gx%g", s.ID, s.Width, s.Height)
		}
		if s.IsRoot() {
			roots++
		}
	}
	for _, s := range d.Shapes {
		if !s.IsRoot() && !seen[s.Parent] {
			return errs.New(errs.ErrCodeInvalidInput, "shape %q has unknown parent %q", s.ID, s.Parent)
		}
	}
	if roots != 1 {
		return errs.New(errs.ErrCodeInvalidInput, "document has %d root shapes, want 1", roots)
	}
	return nil
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal serializes a document to pretty-printed JSON bytes.
func Marshal(d Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Unmarshal deserializes JSON bytes into a document and validates it.
func Unmarshal(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "unmarshal document")
	}
	if err := d.Validate(); err != nil {
		return Document{}, err
	}
	return d, nil
}

// WriteFile writes a document to a JSON file.
func WriteFile(d Document, path string) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a document from a JSON file.
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}
