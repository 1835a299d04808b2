package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexiusacademia/gobulb/internal/server"
	"github.com/alexiusacademia/gobulb/internal/stress"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveEnvFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the stress-bulb engine over HTTP.

Endpoints:
  POST /api/stress           - stress at one point
  POST /api/point-load       - stress under a concentrated load
  POST /api/influence-depth  - influence depths below the centre
  POST /api/bulb             - stress bulb summary and centre section
  POST /api/report           - technical report (text, or PDF with Accept: application/pdf)
  GET  /healthz              - liveness and cache statistics
  GET  /metrics              - Prometheus metrics

Environment variables (also read from a .env file):
  GOBULB_ADDR, GOBULB_CACHE_DIR, GOBULB_LOG_LEVEL, GOBULB_RATE_LIMIT

Examples:
  gobulb serve
  gobulb serve --addr :9090 --config gobulb.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address, overrides the configuration")
	serveCmd.Flags().StringVar(&serveEnvFile, "env-file", ".env", "Environment file loaded before start")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(serveEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	// The log level may have come from the environment.
	l, err := newLogger(cfg.Log, verbose, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logger = l
	slog.SetDefault(logger)

	engine, err := openEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	method, err := stress.ParseMethod(cfg.Engine.DefaultMethod)
	if err != nil {
		return err
	}
	srv := server.New(engine, server.Options{
		Config:        cfg.Server,
		DefaultMethod: method,
		Logger:        logger,
	})

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return srv.Run(ctx)
}
