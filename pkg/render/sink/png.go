package sink

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/capmap/pkg/fonts"
	"github.com/matzehuels/capmap/pkg/render"
)

// supersample is the factor PNG output is drawn at before downscaling.
const supersample = 4

type PNGOption func(*PNG)

// WithPNGScale sets pixels per layout unit.
func WithPNGScale(px float64) PNGOption { return func(p *PNG) { p.scale = px } }

// WithPNGMargin sets the border around the drawing in layout units.
func WithPNGMargin(m float64) PNGOption { return func(p *PNG) { p.margin = m } }

// PNG is a surface that rasterizes shapes with the Go Regular font. Corner
// radii are not drawn.
type PNG struct {
	*canvas
	scale  float64
	margin float64
}

// NewPNG returns an opener for PNG surfaces. Templates are not supported.
func NewPNG(opts ...PNGOption) render.Opener {
	return render.OpenerFunc(func(_ context.Context, template string) (render.Surface, error) {
		if template != "" {
			return nil, fmt.Errorf("png surfaces take no template, got %q", template)
		}
		p := &PNG{canvas: newCanvas(""), scale: DefaultScale, margin: DefaultMargin}
		for _, opt := range opts {
			opt(p)
		}
		return p, nil
	})
}

// WriteTo encodes the image as PNG to w.
func (p *PNG) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	if err := p.encode(&buf); err != nil {
		return 0, err
	}
	return buf.WriteTo(w)
}

// Save writes the PNG image to path.
func (p *PNG) Save(_ context.Context, path string) error {
	var buf bytes.Buffer
	if err := p.encode(&buf); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

func (p *PNG) encode(w io.Writer) error {
	vp := viewport{ext: p.extent(), margin: p.margin, scale: p.scale}
	width, height := int(math.Ceil(vp.width())), int(math.Ceil(vp.height()))
	if width <= 0 || height <= 0 {
		return fmt.Errorf("empty drawing")
	}

	large, err := p.raster(viewport{ext: vp.ext, margin: vp.margin, scale: vp.scale * supersample})
	if err != nil {
		return err
	}
	final := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(final, final.Bounds(), large, large.Bounds(), draw.Over, nil)
	return png.Encode(w, final)
}

func (p *PNG) raster(vp viewport) (*image.RGBA, error) {
	w, h := int(math.Ceil(vp.width())), int(math.Ceil(vp.height()))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	faces, err := fonts.NewFaces()
	if err != nil {
		return nil, err
	}
	defer faces.Close()

	order := p.paintOrder()
	for _, b := range order {
		fill, err := parseHexColor(b.master.Fill)
		if err != nil {
			return nil, err
		}
		stroke, err := parseHexColor(b.master.Stroke)
		if err != nil {
			return nil, err
		}
		r := image.Rect(int(vp.x(b.left)), int(vp.y(b.top)), int(vp.x(b.right)), int(vp.y(b.bottom)))
		draw.Draw(img, r, image.NewUniform(fill), image.Point{}, draw.Over)
		strokeRect(img, r, supersample, stroke)
	}

	for _, b := range order {
		if b.text == "" {
			continue
		}
		size := b.master.FontSize * b.master.BaseHeight
		px := math.Round(size * vp.scale)
		if px < 1 {
			continue
		}
		face, err := faces.Face(px)
		if err != nil {
			return nil, err
		}
		c, err := parseHexColor(b.master.TextColor)
		if err != nil {
			return nil, err
		}
		drawTextCentered(img, face, int(vp.x(b.centerX())), int(vp.y(labelY(b, size))), b.text, c)
	}
	return img, nil
}

func strokeRect(img *image.RGBA, r image.Rectangle, width int, c color.Color) {
	src := image.NewUniform(c)
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width), src, image.Point{}, draw.Over)
	draw.Draw(img, image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y), src, image.Point{}, draw.Over)
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y), src, image.Point{}, draw.Over)
	draw.Draw(img, image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y), src, image.Point{}, draw.Over)
}

// drawTextCentered draws text with its visual center at (x, y).
func drawTextCentered(img *image.RGBA, face font.Face, x, y int, text string, c color.Color) {
	width := font.MeasureString(face, text).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x - width/2), Y: fixed.I(y + ascent*35/100)},
	}
	d.DrawString(text)
}

// parseHexColor accepts #rgb and #rrggbb.
func parseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
