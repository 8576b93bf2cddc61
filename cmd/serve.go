package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/sqlscope/internal/api"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis engine over HTTP",
	Long: `Start a JSON HTTP API backed by the same engine and cache as the CLI.

Routes:
  POST /api/analyze  - batch analysis of {"reports": [...]}
  POST /api/compare  - compare {"sql_a": "...", "sql_b": "..."}
  POST /api/inspect  - inspect {"sql": "..."}
  GET  /api/scoring  - scoring definitions
  GET  /healthz      - health check

The server stops gracefully on SIGINT or SIGTERM.

Examples:
  # Serve on the default address
  sqlscope serve

  # Serve on all interfaces
  sqlscope serve --addr 0.0.0.0:9000`,
	PreRunE: inlineSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(os.Stderr, "Serving SQLScope API on http://%s\n", cfg.ServeAddr)
		return api.NewServer(cfg, cacheManager).Run(ctx, cfg.ServeAddr)
	},
}
