package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/capmap/pkg/render"
)

// Drawing is the placed-and-sized content of a surface, independent of any
// output format. Coordinates are layout units with y growing upward.
type Drawing struct {
	Name     string       `json:"name" bson:"_id"`
	Template string       `json:"template,omitempty" bson:"template,omitempty"`
	MinX     float64      `json:"min_x" bson:"min_x"`
	MinY     float64      `json:"min_y" bson:"min_y"`
	Width    float64      `json:"width" bson:"width"`
	Height   float64      `json:"height" bson:"height"`
	Shapes   []DrawnShape `json:"shapes" bson:"shapes"`
}

// DrawnShape is one shape of a [Drawing]. Parent is the index of the parent
// shape in Drawing.Shapes, or -1 when the shape was never linked.
type DrawnShape struct {
	Master string  `json:"master" bson:"master"`
	Label  string  `json:"label" bson:"label"`
	Parent int     `json:"parent" bson:"parent"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

func (c *canvas) drawing(name string) Drawing {
	e := c.extent()
	d := Drawing{
		Name:     name,
		Template: c.template,
		MinX:     e.minX,
		MinY:     e.minY,
		Width:    e.width(),
		Height:   e.height(),
		Shapes:   make([]DrawnShape, len(c.boxes)),
	}
	for i, b := range c.boxes {
		parent := -1
		if b.parent != nil {
			parent = b.parent.order
		}
		d.Shapes[i] = DrawnShape{
			Master: b.master.Name,
			Label:  b.text,
			Parent: parent,
			X:      b.centerX(),
			Y:      b.centerY(),
			Width:  b.width(),
			Height: b.height(),
		}
	}
	return d
}

// JSON is a surface that writes its [Drawing] as indented JSON.
type JSON struct {
	*canvas
}

// NewJSON returns an opener for JSON surfaces. The template is recorded in
// the drawing but not read.
func NewJSON() render.Opener {
	return render.OpenerFunc(func(_ context.Context, template string) (render.Surface, error) {
		return &JSON{canvas: newCanvas(template)}, nil
	})
}

// Drawing returns the current content of the surface.
func (j *JSON) Drawing(name string) Drawing { return j.drawing(name) }

// WriteTo writes the drawing to w.
func (j *JSON) WriteTo(w io.Writer) (int64, error) {
	data, err := j.marshal("")
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Save writes the drawing to path. The drawing is named after path.
func (j *JSON) Save(_ context.Context, path string) error {
	data, err := j.marshal(path)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func (j *JSON) marshal(name string) ([]byte, error) {
	data, err := json.MarshalIndent(j.drawing(name), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal drawing: %w", err)
	}
	return append(data, '\n'), nil
}
