package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/capmap/pkg/document"
	"github.com/matzehuels/capmap/pkg/observability"
	"github.com/matzehuels/capmap/pkg/render"
	"github.com/matzehuels/capmap/pkg/render/sink"
)

// RenderDocument draws doc in every requested format.
func RenderDocument(ctx context.Context, doc document.Document, opts Options) (artifacts map[string][]byte, err error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	stencil, err := loadStencil(opts.Stencil)
	if err != nil {
		return nil, err
	}

	artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(ctx, doc, stencil, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		opts.Logger.Debug("rendered", "format", format, "bytes", len(data))
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, doc document.Document, stencil render.Stencil, format string, opts Options) ([]byte, error) {
	opener, err := sink.ForFormat(format, opts.SinkOptions())
	if err != nil {
		return nil, err
	}
	job := render.Job{
		Document: doc,
		Stencil:  stencil,
		Master:   opts.Master,
	}
	// Only the SVG-based sinks read a template file.
	if format == FormatSVG || format == FormatPDF {
		job.Template = opts.Template
	}
	var buf bytes.Buffer
	if err := render.Capture(ctx, opener, job, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func loadStencil(path string) (render.Stencil, error) {
	if path == "" {
		return render.DefaultStencil(), nil
	}
	return render.LoadStencil(path)
}
