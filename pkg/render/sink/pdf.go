package sink

import (
	"bytes"
	"context"
	"io"

	"github.com/matzehuels/capmap/pkg/render"
)

// PDF is an SVG surface saved through rsvg-convert.
type PDF struct {
	*SVG
}

// NewPDF returns an opener for PDF surfaces. Options and templates behave as
// for [NewSVG]. Save requires rsvg-convert on PATH; see [render.HasRSVG].
func NewPDF(opts ...SVGOption) render.Opener {
	return render.OpenerFunc(func(_ context.Context, template string) (render.Surface, error) {
		s, err := openSVG(template, opts...)
		if err != nil {
			return nil, err
		}
		return &PDF{SVG: s}, nil
	})
}

// Save converts the SVG document to PDF and writes it to path.
func (p *PDF) Save(ctx context.Context, path string) error {
	pdf, err := p.pdf(ctx)
	if err != nil {
		return err
	}
	return writeFile(path, pdf)
}

func (p *PDF) pdf(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	p.render(&buf)
	return render.ToPDF(ctx, buf.Bytes())
}

// WriteTo writes the PDF document to w.
func (p *PDF) WriteTo(w io.Writer) (int64, error) {
	pdf, err := p.pdf(context.Background())
	if err != nil {
		return 0, err
	}
	n, err := w.Write(pdf)
	return int64(n), err
}
