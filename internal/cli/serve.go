package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/capmap/internal/server"
	"github.com/matzehuels/capmap/pkg/observability"
	"github.com/matzehuels/capmap/pkg/render/sink"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout and render pipeline over HTTP",
		Long: `Serve the layout and render pipeline over HTTP.

Endpoints:
  GET  /healthz
  POST /v1/layout              hierarchy → layout document
  POST /v1/render?format=svg   hierarchy → artifact (add &save=name to store it)
  POST /v1/visualize?format=   layout document → artifact
  GET  /v1/drawings/{name}     stored drawing

Set ` + envMongo + ` to store drawings in MongoDB and --redis (or ` + envRedis + `)
to share the cache between instances.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	hooks := observability.NewLogHooks(c.Logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)

	opts := []server.Option{server.WithLogger(c.Logger)}
	if uri := os.Getenv(envMongo); uri != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		coll, err := sink.ConnectMongo(connectCtx, uri, appName, "drawings")
		cancel()
		if err != nil {
			return err
		}
		defer coll.Database().Client().Disconnect(context.Background())
		opts = append(opts, server.WithDrawings(coll))
		c.Logger.Info("storing drawings in mongodb", "collection", coll.Name())
	}

	printInfo("Serving on %s", StyleHighlight.Render(addr))
	return server.New(runner, opts...).ListenAndServe(ctx, addr)
}
