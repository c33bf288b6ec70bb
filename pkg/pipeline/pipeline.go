// Package pipeline provides the import → layout → render pipeline for capmap.
//
// This package implements the complete pipeline used by the CLI and the HTTP
// server. By centralizing this logic, both entry points cache, log and
// validate the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Import: Read a hierarchy file (JSON, TOML or YAML)
//  2. Layout: Compute every node's size and position with [layout.Engine]
//  3. Render: Draw the layout document onto one or more sinks
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "airport.toml",
//	    Formats: []string{"svg", "png"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Layout an in-memory hierarchy
//	doc, err := runner.Layout(ctx, h, opts)
//
//	// Render an existing layout document
//	artifacts, err := runner.Render(ctx, doc, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/capmap/pkg/cache"
	"github.com/matzehuels/capmap/pkg/document"
	errs "github.com/matzehuels/capmap/pkg/errors"
	"github.com/matzehuels/capmap/pkg/hierarchy"
	"github.com/matzehuels/capmap/pkg/layout"
	"github.com/matzehuels/capmap/pkg/render"
	"github.com/matzehuels/capmap/pkg/render/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = sink.FormatSVG

// Format constants for output formats.
const (
	FormatSVG  = sink.FormatSVG
	FormatPNG  = sink.FormatPNG
	FormatPDF  = sink.FormatPDF
	FormatDOT  = sink.FormatDOT
	FormatJSON = sink.FormatJSON
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Import options
	Input string `json:"input,omitempty"` // hierarchy file path (CLI only)

	// Layout options
	Config   layout.Config `json:"config"`
	Parallel bool          `json:"parallel,omitempty"`
	Title    string        `json:"title,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Stencil    string   `json:"-"` // stencil file path
	Template   string   `json:"-"` // sink template path
	Master     string   `json:"master,omitempty"`
	Scale      float64  `json:"scale,omitempty"`
	Margin     float64  `json:"margin,omitempty"`
	Connectors bool     `json:"connectors,omitempty"`

	// Refresh bypasses cache reads. Results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Hierarchy is the imported hierarchy.
	Hierarchy *hierarchy.Hierarchy

	// HierarchyHash is the content hash of the hierarchy.
	HierarchyHash string

	// Document is the computed layout.
	Document document.Document

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	ImportTime time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout document came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults sets default values for layout computation. A zero
// Config is replaced by [layout.DefaultConfig] as a whole, so a caller
// that sets any field owns every field.
func (o *Options) SetLayoutDefaults() {
	if o.Config == (layout.Config{}) {
		o.Config = layout.DefaultConfig()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return o.Config.Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Master == "" {
		o.Master = render.DefaultMasterName
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 || o.Margin < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "scale and margin cannot be negative")
	}
	return ValidateFormats(o.Formats)
}

// ValidateAndSetDefaults validates and sets defaults for the full pipeline.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// SinkOptions returns the shared sink settings.
func (o *Options) SinkOptions() sink.Options {
	return sink.Options{Scale: o.Scale, Margin: o.Margin, Connectors: o.Connectors}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Config: o.Config}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
// stencilHash and templateHash are content hashes of the referenced files.
func (o *Options) ArtifactKeyOpts(format, stencilHash, templateHash string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Stencil:    stencilHash,
		Master:     o.Master,
		Template:   templateHash,
		Scale:      o.Scale,
		Margin:     o.Margin,
		Connectors: o.Connectors,
	}
}
