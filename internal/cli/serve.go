package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/arrestflow/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive flowchart over HTTP",
	Long: `Serve starts a web page with the fact form and the flowchart. Facts live
in the URL, so any state can be bookmarked or shared.

Endpoints:
  /                  fact form and flowchart
  /graph/<format>    rendered graph (svg, png, dot, mermaid, json, text)
  /api/view          JSON view for the facts in the query string
  /api/reduce        POST an interaction, get the next facts
  /healthz, /metrics

Example:
  arrestflow serve
  arrestflow serve --addr :8080 --rules rules.yaml --watch`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default from config)")
	serveCmd.Flags().Bool("watch", false, "reload the --rules file when it changes")
}

// newLogger builds the server logger, at debug level with --verbose
func newLogger() (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, p, err := setup()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(p, cfg.Server, logger)

	if cfg.Server.Watch {
		if cfg.Rules.File == "" {
			logger.Warn("--watch needs --rules, nothing to watch")
		} else {
			go func() {
				if err := server.WatchRules(ctx, cfg.Rules.File, p, logger); err != nil {
					logger.Error("rules watcher stopped", zap.Error(err))
				}
			}()
		}
	}

	fmt.Fprintf(os.Stderr, "Serving arrestflow on http://%s\n", cfg.Server.Addr)
	return srv.Run(ctx)
}
