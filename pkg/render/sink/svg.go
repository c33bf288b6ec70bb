package sink

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"os"

	"github.com/matzehuels/capmap/pkg/fonts"
	"github.com/matzehuels/capmap/pkg/render"
)

// DefaultScale is the number of output pixels per layout unit. Layout units
// default to inches, so this matches a 96 dpi screen.
const DefaultScale = 96.0

// DefaultMargin is the blank border around the drawing, in layout units.
const DefaultMargin = 0.25

type SVGOption func(*SVG)

// WithScale sets pixels per layout unit.
func WithScale(px float64) SVGOption { return func(s *SVG) { s.scale = px } }

// WithMargin sets the border around the drawing in layout units.
func WithMargin(m float64) SVGOption { return func(s *SVG) { s.margin = m } }

// WithConnectors draws a line from each linked shape to its parent's top
// edge.
func WithConnectors() SVGOption { return func(s *SVG) { s.connectors = true } }

// SVG is a surface that writes a standalone SVG document.
type SVG struct {
	*canvas
	scale      float64
	margin     float64
	connectors bool
}

// NewSVG returns an opener for SVG surfaces. A non-empty template names a
// file whose contents (typically <defs> or <style>) are inserted at the top
// of the document.
func NewSVG(opts ...SVGOption) render.Opener {
	return render.OpenerFunc(func(_ context.Context, template string) (render.Surface, error) {
		return openSVG(template, opts...)
	})
}

func openSVG(template string, opts ...SVGOption) (*SVG, error) {
	var header string
	if template != "" {
		data, err := os.ReadFile(template)
		if err != nil {
			return nil, err
		}
		header = string(data)
	}
	s := &SVG{canvas: newCanvas(header), scale: DefaultScale, margin: DefaultMargin}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// WriteTo writes the SVG document to w.
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	s.render(&buf)
	return buf.WriteTo(w)
}

// Save writes the SVG document to path.
func (s *SVG) Save(_ context.Context, path string) error {
	var buf bytes.Buffer
	s.render(&buf)
	return writeFile(path, buf.Bytes())
}

func (s *SVG) viewport() viewport {
	return viewport{ext: s.extent(), margin: s.margin, scale: s.scale}
}

func (s *SVG) render(buf *bytes.Buffer) {
	vp := s.viewport()
	w, h := vp.width(), vp.height()
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	if s.template != "" {
		buf.WriteString(s.template)
		if s.template[len(s.template)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	fmt.Fprintf(buf, `  <rect width="100%%" height="100%%" fill="white"/>`+"\n")

	if s.connectors {
		s.renderConnectors(buf, vp)
	}
	order := s.paintOrder()
	for _, b := range order {
		s.renderBox(buf, vp, b)
	}
	for _, b := range order {
		s.renderText(buf, vp, b)
	}
	buf.WriteString("</svg>\n")
}

func (s *SVG) renderBox(buf *bytes.Buffer, vp viewport, b *box) {
	m := b.master
	r := m.Radius * vp.scale
	fmt.Fprintf(buf, `  <rect class="shape" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f" ry="%.2f" fill="%s" stroke="%s" stroke-width="1"/>`+"\n",
		vp.x(b.left), vp.y(b.top), b.width()*vp.scale, b.height()*vp.scale, r, r,
		attr(m.Fill), attr(m.Stroke))
}

func (s *SVG) renderText(buf *bytes.Buffer, vp viewport, b *box) {
	if b.text == "" {
		return
	}
	size := b.master.FontSize * b.master.BaseHeight
	fmt.Fprintf(buf, `  <text class="label" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="%s" font-size="%.2f" fill="%s">%s</text>`+"\n",
		vp.x(b.centerX()), vp.y(labelY(b, size)), attr(fonts.FallbackFontFamily), size*vp.scale, attr(b.master.TextColor), html.EscapeString(b.text))
}

func (s *SVG) renderConnectors(buf *bytes.Buffer, vp viewport) {
	for _, b := range s.boxes {
		if b.parent == nil {
			continue
		}
		fmt.Fprintf(buf, `  <line class="connector" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-opacity="0.4"/>`+"\n",
			vp.x(b.centerX()), vp.y(b.top), vp.x(b.parent.centerX()), vp.y(b.parent.top), attr(b.master.Stroke))
	}
}

func attr(s string) string { return html.EscapeString(s) }
