package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/capmap/pkg/hierarchy"
	capio "github.com/matzehuels/capmap/pkg/io"
)

// convertCommand creates the convert command for rewriting hierarchy files.
func (c *CLI) convertCommand() *cobra.Command {
	var noValidate bool

	cmd := &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Convert a hierarchy between JSON, TOML and YAML",
		Long: `Convert a hierarchy between file formats.

The input may be .json, .toml or .yaml; the output may be .json or .yaml.
Key order is kept, so the converted file lays out identically.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)

			h, err := capio.Import(in)
			if err != nil {
				return fmt.Errorf("read %s: %w", in, err)
			}
			if !noValidate {
				if err := h.Validate(); err != nil {
					return err
				}
			}
			if err := capio.Export(h, out); err != nil {
				return err
			}

			prog.done(fmt.Sprintf("Converted %d nodes", h.Len()))
			printSuccess("Converted %s", in)
			printFile(out)
			printStats(h.Len(), depthOf(h), false)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "skip structural checks (single root, no dangling children)")

	return cmd
}

// depthOf returns the hierarchy depth, or zero when it cannot be computed.
func depthOf(h *hierarchy.Hierarchy) int {
	d, err := h.Depth()
	if err != nil {
		return 0
	}
	return d
}
