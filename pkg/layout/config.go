package layout

import (
	errs "github.com/matzehuels/capmap/pkg/errors"
	"github.com/matzehuels/capmap/pkg/hierarchy"
)

// Default sizing values. Units are whatever the render sink uses; the
// defaults match a Visio-style page measured in inches.
const (
	DefaultPaddingSize  = 0.1
	DefaultBaseWidth    = 1.811
	DefaultBaseHeight   = 0.787402
	DefaultStartX       = 0.0
	DefaultStartY       = 5.0
	DefaultLevelSpacing = 0.0
)

// Config is the sizing configuration of the layout engine.
type Config struct {
	// PaddingSize is the spacing unit. It widens inner nodes' height,
	// shrinks their width, and shifts leaves apart.
	PaddingSize float64 `json:"padding_size" bson:"padding_size" toml:"padding_size"`

	// MaxDepth is the expected tree depth used by the height and leaf
	// position formulas. Zero derives it from the hierarchy; a value below
	// the hierarchy's depth is rejected by Compute.
	MaxDepth int `json:"max_depth" bson:"max_depth" toml:"max_depth"`

	// BaseWidth and BaseHeight are the size of an unresized shape master.
	BaseWidth  float64 `json:"base_width" bson:"base_width" toml:"base_width"`
	BaseHeight float64 `json:"base_height" bson:"base_height" toml:"base_height"`

	// StartX is added to every leaf x, shifting the whole drawing right of
	// the usual origin; the default 0 leaves the leaf formula unchanged.
	// StartY is the y of level 0.
	StartX float64 `json:"start_x" bson:"start_x" toml:"start_x"`
	StartY float64 `json:"start_y" bson:"start_y" toml:"start_y"`

	// LevelSpacing is added to y once per level. Zero stacks every level on
	// the same baseline so inner shapes enclose their children.
	LevelSpacing float64 `json:"level_spacing" bson:"level_spacing" toml:"level_spacing"`

	// MaxSearchDepth bounds level lookups and replaces the hierarchy's own
	// bound, raising or lowering it. Zero keeps the hierarchy's bound.
	MaxSearchDepth int `json:"max_search_depth" bson:"max_search_depth" toml:"max_search_depth"`
}

// DefaultConfig returns the default sizing configuration.
func DefaultConfig() Config {
	return Config{
		PaddingSize:    DefaultPaddingSize,
		BaseWidth:      DefaultBaseWidth,
		BaseHeight:     DefaultBaseHeight,
		StartX:         DefaultStartX,
		StartY:         DefaultStartY,
		LevelSpacing:   DefaultLevelSpacing,
		MaxSearchDepth: hierarchy.DefaultMaxSearchDepth,
	}
}

// Validate rejects configurations that cannot produce positive shapes.
func (c Config) Validate() error {
	switch {
	case c.BaseWidth <= 0:
		return errs.New(errs.ErrCodeInvalidConfig, "base width must be positive, got %g", c.BaseWidth)
	case c.BaseHeight <= 0:
		return errs.New(errs.ErrCodeInvalidConfig, "base height must be positive, got %g", c.BaseHeight)
	case c.PaddingSize < 0:
		return errs.New(errs.ErrCodeInvalidConfig, "padding size cannot be negative, got %g", c.PaddingSize)
	case c.LevelSpacing < 0:
		return errs.New(errs.ErrCodeInvalidConfig, "level spacing cannot be negative, got %g", c.LevelSpacing)
	case c.MaxDepth < 0:
		return errs.New(errs.ErrCodeInvalidConfig, "max depth cannot be negative, got %d", c.MaxDepth)
	case c.MaxSearchDepth < 0:
		return errs.New(errs.ErrCodeInvalidConfig, "max search depth cannot be negative, got %d", c.MaxSearchDepth)
	}
	return nil
}
