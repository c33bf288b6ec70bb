package sink

import (
	"slices"

	errs "github.com/matzehuels/capmap/pkg/errors"
	"github.com/matzehuels/capmap/pkg/render"
)

// Output formats understood by [ForFormat].
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// Formats lists the file formats in the order they are documented.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatDOT, FormatJSON}

// Options holds the settings shared by the file sinks. Zero values select
// the defaults.
type Options struct {
	Scale      float64 // pixels per layout unit
	Margin     float64 // layout units
	Connectors bool    // svg and pdf only
}

// ForFormat returns the opener for a file format.
func ForFormat(format string, opts Options) (render.Opener, error) {
	var svgOpts []SVGOption
	var pngOpts []PNGOption
	if opts.Scale > 0 {
		svgOpts = append(svgOpts, WithScale(opts.Scale))
		pngOpts = append(pngOpts, WithPNGScale(opts.Scale))
	}
	if opts.Margin > 0 {
		svgOpts = append(svgOpts, WithMargin(opts.Margin))
		pngOpts = append(pngOpts, WithPNGMargin(opts.Margin))
	}
	if opts.Connectors {
		svgOpts = append(svgOpts, WithConnectors())
	}

	switch format {
	case FormatSVG:
		return NewSVG(svgOpts...), nil
	case FormatPNG:
		return NewPNG(pngOpts...), nil
	case FormatPDF:
		return NewPDF(svgOpts...), nil
	case FormatDOT:
		return NewDOT(), nil
	case FormatJSON:
		return NewJSON(), nil
	}
	return nil, errs.New(errs.ErrCodeInvalidFormat, "unknown output format %q (want one of %v)", format, Formats)
}

// IsFormat reports whether format is one of [Formats].
func IsFormat(format string) bool { return slices.Contains(Formats, format) }
