package render

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/capmap/pkg/errors"
)

// DefaultMasterName is the master used when a job names none.
const DefaultMasterName = "Capability"

// Master is a reusable shape template. A zero base size means "use the
// layout's base size".
type Master struct {
	Name       string  `toml:"-"`
	BaseWidth  float64 `toml:"base_width"`
	BaseHeight float64 `toml:"base_height"`
	Fill       string  `toml:"fill"`
	Stroke     string  `toml:"stroke"`
	TextColor  string  `toml:"text_color"`
	Radius     float64 `toml:"radius"`
	FontSize   float64 `toml:"font_size"` // fraction of the base height
}

// Stencil is a named collection of masters.
type Stencil struct {
	Name    string            `toml:"name"`
	Masters map[string]Master `toml:"masters"`
}

// DefaultStencil returns the built-in stencil with a single "Capability"
// master.
func DefaultStencil() Stencil {
	return Stencil{
		Name: "capmap",
		Masters: map[string]Master{
			DefaultMasterName: {
				Name:      DefaultMasterName,
				Fill:      "#e3f2fd",
				Stroke:    "#1565c0",
				TextColor: "#0d2137",
				Radius:    0.05,
				FontSize:  0.22,
			},
		},
	}
}

// Master returns the master called name.
func (s Stencil) Master(name string) (Master, error) {
	m, ok := s.Masters[name]
	if !ok {
		return Master{}, errs.New(errs.ErrCodeNotFound, "master %q not in stencil %q (have %v)", name, s.Name, s.Names())
	}
	m.Name = name
	return m, nil
}

// Names returns the master names in sorted order.
func (s Stencil) Names() []string {
	return slices.Sorted(maps.Keys(s.Masters))
}

// ReadStencil decodes a TOML stencil:
//
//	name = "airport"
//
//	[masters.Capability]
//	fill = "#fff3e0"
//	stroke = "#e65100"
//
// Fields left out of a master are taken from the default Capability master.
func ReadStencil(r io.Reader) (Stencil, error) {
	var s Stencil
	if _, err := toml.NewDecoder(r).Decode(&s); err != nil {
		return Stencil{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode stencil")
	}
	if len(s.Masters) == 0 {
		return Stencil{}, errs.New(errs.ErrCodeInvalidFormat, "stencil %q defines no masters", s.Name)
	}
	def := DefaultStencil().Masters[DefaultMasterName]
	for name, m := range s.Masters {
		m.Name = name
		if m.Fill == "" {
			m.Fill = def.Fill
		}
		if m.Stroke == "" {
			m.Stroke = def.Stroke
		}
		if m.TextColor == "" {
			m.TextColor = def.TextColor
		}
		if m.FontSize <= 0 {
			m.FontSize = def.FontSize
		}
		if m.BaseWidth < 0 || m.BaseHeight < 0 || m.Radius < 0 {
			return Stencil{}, errs.New(errs.ErrCodeInvalidFormat, "master %q has negative dimensions", name)
		}
		s.Masters[name] = m
	}
	return s, nil
}

// LoadStencil reads a TOML stencil file. See [ReadStencil].
func LoadStencil(path string) (Stencil, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stencil{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadStencil(f)
}
