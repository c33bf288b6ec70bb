// Package fonts provides the label font shared by the raster and vector
// sinks.
//
// Labels are set in Go Regular, which ships with golang.org/x/image, so PNG
// output looks the same on every machine without a font lookup. SVG output
// names the same family first and falls back to common sans-serif fonts.
package fonts

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontFamily is the CSS font-family name of the label font.
const FontFamily = "Go"

// FallbackFontFamily is the CSS font-family list used by SVG labels.
const FallbackFontFamily = `Go, Helvetica, Arial, sans-serif`

var (
	labelFont    *opentype.Font
	labelFontErr error
	labelOnce    sync.Once
)

// Label returns the parsed label font. It is parsed once per process.
func Label() (*opentype.Font, error) {
	labelOnce.Do(func() {
		labelFont, labelFontErr = opentype.Parse(goregular.TTF)
	})
	return labelFont, labelFontErr
}

// Faces hands out label faces by pixel size. It is not safe for concurrent
// use; each rasterization keeps its own.
type Faces struct {
	font  *opentype.Font
	faces map[float64]font.Face
}

// NewFaces returns an empty face cache over the label font.
func NewFaces() (*Faces, error) {
	f, err := Label()
	if err != nil {
		return nil, err
	}
	return &Faces{font: f, faces: map[float64]font.Face{}}, nil
}

// Face returns the face for px pixels, creating it on first use.
func (f *Faces) Face(px float64) (font.Face, error) {
	if face, ok := f.faces[px]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f.font, &opentype.FaceOptions{Size: px, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, err
	}
	f.faces[px] = face
	return face, nil
}

// Close releases every face.
func (f *Faces) Close() error {
	for px, face := range f.faces {
		face.Close()
		delete(f.faces, px)
	}
	return nil
}
