package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/matzehuels/capmap/pkg/pipeline"
)

// inspectCommand creates the inspect command for browsing node descriptors.
func (c *CLI) inspectCommand() *cobra.Command {
	var plain bool
	opts := pipeline.Options{}
	setCLIDefaults(&opts)
	var lf *layoutFlags

	cmd := &cobra.Command{
		Use:   "inspect [hierarchy]",
		Short: "Browse the computed node descriptors",
		Long: `Browse the computed node descriptors.

Lays out the hierarchy and opens an interactive list of every node with its
level, rank, size, center and relations. With --plain, or when stdout is not
a terminal, the hierarchy is printed as a tree instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := lf.apply(cmd); err != nil {
				return err
			}
			opts.Input = args[0]
			interactive := !plain && term.IsTerminal(os.Stdout.Fd())
			return c.runInspect(cmd.Context(), opts, interactive)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print a static tree instead of the interactive view")
	lf = bindLayoutFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, opts pipeline.Options, interactive bool) error {
	opts.Logger = c.Logger

	h, err := pipeline.Import(ctx, opts)
	if err != nil {
		return fmt.Errorf("load hierarchy %s: %w", opts.Input, err)
	}
	_, res, err := pipeline.ComputeLayout(ctx, h, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	if !interactive {
		fmt.Fprintln(out, nodeTree(res.Root))
		return nil
	}

	p := tea.NewProgram(NewNodeListModel(res), tea.WithContext(ctx), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
