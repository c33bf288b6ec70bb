package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/capmap/pkg/render"
)

// pointsPerUnit converts layout units (inches) to Graphviz points.
const pointsPerUnit = 72.0

// DOT is a surface that emits an undirected Graphviz graph with every node
// pinned at its layout position. Saving to a .svg path renders the graph
// with neato; any other path receives the DOT source.
type DOT struct {
	*canvas
}

// NewDOT returns an opener for DOT surfaces. Templates are not supported.
func NewDOT() render.Opener {
	return render.OpenerFunc(func(_ context.Context, template string) (render.Surface, error) {
		if template != "" {
			return nil, fmt.Errorf("dot surfaces take no template, got %q", template)
		}
		return &DOT{canvas: newCanvas("")}, nil
	})
}

// WriteTo writes the DOT source to w.
func (d *DOT) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, d.String())
	return int64(n), err
}

// Save writes DOT source, or an SVG rendering when path ends in .svg.
func (d *DOT) Save(ctx context.Context, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		svg, err := renderDOT(ctx, d.String())
		if err != nil {
			return err
		}
		return writeFile(path, svg)
	}
	return writeFile(path, []byte(d.String()))
}

// String returns the DOT source.
func (d *DOT) String() string {
	var buf bytes.Buffer
	buf.WriteString("graph capmap {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fixedsize=true, fontname=\"Helvetica\"];\n")
	buf.WriteString("\n")

	ids := make(map[*box]string, len(d.boxes))
	for _, b := range d.paintOrder() {
		id := fmt.Sprintf("n%d", b.order)
		ids[b] = id
		fmt.Fprintf(&buf, "  %s [label=%q, pos=\"%.2f,%.2f!\", width=%.4f, height=%.4f, fillcolor=%q, color=%q, fontcolor=%q];\n",
			id, b.text, b.centerX()*pointsPerUnit, b.centerY()*pointsPerUnit, b.width(), b.height(),
			b.master.Fill, b.master.Stroke, b.master.TextColor)
	}

	var edges []string
	for _, b := range d.boxes {
		if b.parent != nil {
			edges = append(edges, fmt.Sprintf("  %s -- %s;\n", ids[b.parent], ids[b]))
		}
	}
	if len(edges) > 0 {
		buf.WriteString("\n")
		for _, e := range edges {
			buf.WriteString(e)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func renderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	gv.SetLayout(graphviz.NEATO)
	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
