package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/capmap/pkg/document"
	"github.com/matzehuels/capmap/pkg/pipeline"
)

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var rf renderFlags
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render a computed layout document",
		Long: `Render a computed layout document.

The visualize command takes a layout.json file (produced by 'layout') and
draws it with the chosen sinks. The layout holds every size and position, so
this step only places shapes.

Results are cached locally for faster subsequent runs.

Use 'render' as a shortcut to go directly from a hierarchy to visual output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(rf.formats)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], opts, rf)
		},
	}

	bindRenderFlags(cmd, &opts, &rf)

	return cmd
}

// runVisualize loads the layout document and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, rf renderFlags) error {
	doc, err := document.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, rf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d shapes...", len(doc.Shapes)))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, doc, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	if err := writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    rf.output,
		cacheHit:  cacheHit,
		nodeCount: len(doc.Shapes),
		depth:     maxLevel(doc),
	}); err != nil {
		return err
	}

	if rf.publish != "" {
		return c.publish(ctx, doc, opts, rf.publish)
	}
	return nil
}
