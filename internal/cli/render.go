package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/capmap/pkg/document"
	errs "github.com/matzehuels/capmap/pkg/errors"
	"github.com/matzehuels/capmap/pkg/pipeline"
	"github.com/matzehuels/capmap/pkg/render"
	"github.com/matzehuels/capmap/pkg/render/sink"
)

// envMongo names a MongoDB server that --publish writes drawings to.
const envMongo = "CAPMAP_MONGO_URI"

// renderFlags are the sink flags shared by render and visualize.
type renderFlags struct {
	formats string
	output  string
	noCache bool
	publish string
}

func bindRenderFlags(cmd *cobra.Command, opts *pipeline.Options, rf *renderFlags) {
	f := cmd.Flags()
	f.StringVarP(&rf.output, "output", "o", "", "output file (single format) or base path (multiple)")
	f.BoolVar(&rf.noCache, "no-cache", false, "disable caching")
	f.BoolVar(&opts.Refresh, "refresh", false, "re-render even when cached")
	f.StringVarP(&rf.formats, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	f.StringVar(&opts.Stencil, "stencil", "", "TOML stencil file with shape masters")
	f.StringVar(&opts.Master, "master", opts.Master, "stencil master to draw every shape with")
	f.StringVar(&opts.Template, "template", "", "SVG fragment placed under the shapes (svg, pdf)")
	f.Float64Var(&opts.Scale, "scale", 0, "pixels per layout unit (default 96)")
	f.Float64Var(&opts.Margin, "margin", 0, "margin around the drawing in layout units (default 0.25)")
	f.BoolVar(&opts.Connectors, "connectors", false, "draw parent/child connector lines")
	f.StringVar(&rf.publish, "publish", "", "also store the drawing under this name in MongoDB (env "+envMongo+")")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
}

// renderCommand creates the render command that goes from hierarchy to output.
func (c *CLI) renderCommand() *cobra.Command {
	var rf renderFlags
	opts := pipeline.Options{}
	setCLIDefaults(&opts)
	var lf *layoutFlags

	cmd := &cobra.Command{
		Use:   "render [hierarchy]",
		Short: "Lay out and render a hierarchy in one step",
		Long: `Lay out and render a hierarchy in one step.

Equivalent to 'layout' followed by 'visualize'. Both stages are cached, so a
second run with the same inputs is served from the cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := lf.apply(cmd); err != nil {
				return err
			}
			opts.Formats = parseFormats(rf.formats)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			opts.Input = args[0]
			return c.runRender(cmd.Context(), opts, rf)
		},
	}

	lf = bindLayoutFlags(cmd, &opts)
	bindRenderFlags(cmd, &opts, &rf)

	return cmd
}

// runRender executes the full pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, rf renderFlags) error {
	runner, err := c.newRunner(ctx, rf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     opts.Input,
		output:    rf.output,
		cacheHit:  result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
		nodeCount: result.Stats.NodeCount,
		depth:     maxLevel(result.Document),
	}); err != nil {
		return err
	}

	if rf.publish != "" {
		return c.publish(ctx, result.Document, opts, rf.publish)
	}
	return nil
}

// publish stores the drawing of doc in MongoDB under name.
func (c *CLI) publish(ctx context.Context, doc document.Document, opts pipeline.Options, name string) error {
	if err := errs.ValidatePath(name); err != nil {
		return err
	}
	uri := os.Getenv(envMongo)
	if uri == "" {
		return fmt.Errorf("--publish needs %s", envMongo)
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	coll, err := sink.ConnectMongo(ctx, uri, appName, "drawings")
	if err != nil {
		return err
	}
	defer coll.Database().Client().Disconnect(context.Background())

	job := render.Job{Document: doc, Master: opts.Master, Output: name}
	if opts.Stencil != "" {
		if job.Stencil, err = render.LoadStencil(opts.Stencil); err != nil {
			return err
		}
	}
	if err := render.Draw(ctx, sink.NewMongo(coll), job); err != nil {
		return err
	}
	printSuccess("Published drawing %s", StyleHighlight.Render(name))
	return nil
}

// =============================================================================
// Artifact Output
// =============================================================================

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
	nodeCount int
	depth     int
}

// writeArtifacts writes one file per format. With a single format and an
// explicit output path that path is used as is.
func writeArtifacts(p artifactWriteParams) error {
	base := basePath(p.output, p.input)
	var written []string
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("no %s output produced", format)
		}
		path := base + "." + format
		if len(p.formats) == 1 && p.output != "" {
			path = p.output
		} else if filepath.Clean(path) == filepath.Clean(p.input) {
			// Never overwrite the input, e.g. hierarchy.json with -f json.
			path = base + ".drawing." + format
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	printSuccess("Rendered %d file(s)", len(written))
	for _, path := range written {
		printFile(path)
	}
	printStats(p.nodeCount, p.depth, p.cacheHit)
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// maxLevel returns the deepest level in doc.
func maxLevel(doc document.Document) int {
	depth := 0
	for _, s := range doc.Shapes {
		depth = max(depth, s.Level)
	}
	return depth
}
