package sink

import (
	"cmp"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/matzehuels/capmap/pkg/render"
)

// box is the shape every sink in this package hands out. Coordinates are
// layout units with y growing upward.
type box struct {
	master   render.Master
	left     float64
	right    float64
	bottom   float64
	top      float64
	text     string
	parent   *box
	children int
	order    int
}

func (b *box) Resize(e render.Edge, amount float64) {
	switch e {
	case render.EdgeLeft:
		b.left -= amount
	case render.EdgeRight:
		b.right += amount
	case render.EdgeTop:
		b.top += amount
	case render.EdgeBottom:
		b.bottom -= amount
	}
}

func (b *box) SetText(text string) { b.text = text }

func (b *box) width() float64   { return b.right - b.left }
func (b *box) height() float64  { return b.top - b.bottom }
func (b *box) centerX() float64 { return (b.left + b.right) / 2 }
func (b *box) centerY() float64 { return (b.bottom + b.top) / 2 }
func (b *box) area() float64    { return b.width() * b.height() }

// canvas collects dropped boxes. Sinks embed it and add Save.
type canvas struct {
	template string
	boxes    []*box
}

func newCanvas(template string) *canvas {
	return &canvas{template: template}
}

func (c *canvas) Drop(m render.Master, x, y float64) (render.Shape, error) {
	if m.BaseWidth <= 0 || m.BaseHeight <= 0 {
		return nil, fmt.Errorf("master %q has no base size", m.Name)
	}
	b := &box{
		master: m,
		left:   x - m.BaseWidth/2,
		right:  x + m.BaseWidth/2,
		bottom: y - m.BaseHeight/2,
		top:    y + m.BaseHeight/2,
		order:  len(c.boxes),
	}
	c.boxes = append(c.boxes, b)
	return b, nil
}

func (c *canvas) Link(parent, child render.Shape) error {
	p, ok := parent.(*box)
	if !ok {
		return fmt.Errorf("shape %T was not dropped on this surface", parent)
	}
	ch, ok := child.(*box)
	if !ok {
		return fmt.Errorf("shape %T was not dropped on this surface", child)
	}
	ch.parent = p
	p.children++
	return nil
}

// paintOrder returns boxes largest first so enclosing shapes are painted
// beneath the shapes they contain. Ties keep drop order.
func (c *canvas) paintOrder() []*box {
	out := slices.Clone(c.boxes)
	slices.SortStableFunc(out, func(a, b *box) int {
		return cmp.Compare(b.area(), a.area())
	})
	return out
}

type extent struct {
	minX, minY, maxX, maxY float64
}

func (e extent) width() float64  { return e.maxX - e.minX }
func (e extent) height() float64 { return e.maxY - e.minY }

func (c *canvas) extent() extent {
	if len(c.boxes) == 0 {
		return extent{}
	}
	e := extent{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, b := range c.boxes {
		e.minX = math.Min(e.minX, b.left)
		e.minY = math.Min(e.minY, b.bottom)
		e.maxX = math.Max(e.maxX, b.right)
		e.maxY = math.Max(e.maxY, b.top)
	}
	return e
}

// viewport maps layout units to output pixels with y flipped downward.
type viewport struct {
	ext    extent
	margin float64 // layout units
	scale  float64 // pixels per layout unit
}

func (v viewport) x(x float64) float64 { return (x - v.ext.minX + v.margin) * v.scale }
func (v viewport) y(y float64) float64 { return (v.ext.maxY - y + v.margin) * v.scale }
func (v viewport) width() float64      { return (v.ext.width() + 2*v.margin) * v.scale }
func (v viewport) height() float64     { return (v.ext.height() + 2*v.margin) * v.scale }

// labelY returns where a box's label baseline center sits in layout units.
// Boxes that enclose children carry their label along the top edge.
func labelY(b *box, fontSize float64) float64 {
	if b.children > 0 {
		return b.top - fontSize*1.2
	}
	return b.centerY()
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}
