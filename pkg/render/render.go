package render

import (
	"context"
	"io"

	"github.com/matzehuels/capmap/pkg/document"
	errs "github.com/matzehuels/capmap/pkg/errors"
)

// Edge names one side of a dropped shape.
type Edge int

const (
	EdgeLeft Edge = iota
	EdgeRight
	EdgeTop
	EdgeBottom
)

func (e Edge) String() string {
	switch e {
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// Shape is a primitive placed on a surface.
type Shape interface {
	// Resize moves one edge outward by amount (inward when negative).
	Resize(edge Edge, amount float64)
	// SetText sets the shape's label.
	SetText(text string)
}

// Surface is an open target document.
type Surface interface {
	// Drop places an instance of m centered at (x, y) with the master's
	// base size.
	Drop(m Master, x, y float64) (Shape, error)
	// Save persists the document to path.
	Save(ctx context.Context, path string) error
}

// Linker is implemented by surfaces that draw connectors between shapes.
type Linker interface {
	Link(parent, child Shape) error
}

// Opener opens a surface from a template. An empty template means a blank
// document.
type Opener interface {
	Open(ctx context.Context, template string) (Surface, error)
}

// OpenerFunc adapts a function to [Opener].
type OpenerFunc func(ctx context.Context, template string) (Surface, error)

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context, template string) (Surface, error) {
	return f(ctx, template)
}

// Job describes one render.
type Job struct {
	Document document.Document
	Template string  // passed to Opener.Open
	Stencil  Stencil // zero value means DefaultStencil
	Master   string  // master name, defaults to DefaultMasterName
	Output   string  // passed to Surface.Save
}

// Draw renders every shape of job.Document onto a surface from opener and
// saves it to job.Output.
//
// Each shape is dropped at its center, grown symmetrically from the master's
// base size by moving every edge half of the size delta, and labelled. If
// the surface implements [Linker], each shape is then linked to its parent.
//
// Errors from the sink are returned as RENDER_FAILED with the sink error as
// the unmodified cause.
func Draw(ctx context.Context, opener Opener, job Job) error {
	surface, err := place(ctx, opener, job)
	if err != nil {
		return err
	}
	if err := surface.Save(ctx, job.Output); err != nil {
		return errs.RenderFailed(err, "save %s", job.Output)
	}
	return nil
}

// Capture is like [Draw] but writes the result to w instead of saving it.
// The surface must implement io.WriterTo.
func Capture(ctx context.Context, opener Opener, job Job, w io.Writer) error {
	surface, err := place(ctx, opener, job)
	if err != nil {
		return err
	}
	wt, ok := surface.(io.WriterTo)
	if !ok {
		return errs.New(errs.ErrCodeInvalidFormat, "surface %T cannot be captured", surface)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errs.RenderFailed(err, "write output")
	}
	return nil
}

func place(ctx context.Context, opener Opener, job Job) (Surface, error) {
	if err := job.Document.Validate(); err != nil {
		return nil, err
	}

	stencil := job.Stencil
	if len(stencil.Masters) == 0 {
		stencil = DefaultStencil()
	}
	name := job.Master
	if name == "" {
		name = DefaultMasterName
	}
	m, err := stencil.Master(name)
	if err != nil {
		return nil, errs.RenderFailed(err, "master %q", name)
	}
	if m.BaseWidth <= 0 {
		m.BaseWidth = job.Document.Config.BaseWidth
	}
	if m.BaseHeight <= 0 {
		m.BaseHeight = job.Document.Config.BaseHeight
	}
	if m.BaseWidth <= 0 || m.BaseHeight <= 0 {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "master %q has no base size", m.Name)
	}

	surface, err := opener.Open(ctx, job.Template)
	if err != nil {
		return nil, errs.RenderFailed(err, "open template %q", job.Template)
	}

	placed := make(map[string]Shape, len(job.Document.Shapes))
	for _, s := range job.Document.Shapes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		shape, err := surface.Drop(m, s.X, s.Y)
		if err != nil {
			return nil, errs.RenderFailed(err, "drop %q", s.ID)
		}
		dw := (s.Width - m.BaseWidth) / 2
		dh := (s.Height - m.BaseHeight) / 2
		shape.Resize(EdgeLeft, dw)
		shape.Resize(EdgeRight, dw)
		shape.Resize(EdgeTop, dh)
		shape.Resize(EdgeBottom, dh)
		shape.SetText(s.Label)
		placed[s.ID] = shape
	}

	if linker, ok := surface.(Linker); ok {
		for _, s := range job.Document.Shapes {
			if s.IsRoot() {
				continue
			}
			if err := linker.Link(placed[s.Parent], placed[s.ID]); err != nil {
				return nil, errs.RenderFailed(err, "link %q to %q", s.ID, s.Parent)
			}
		}
	}
	return surface, nil
}
