package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/artpar/typesmith/adapters/metrics"
	httpchannel "github.com/artpar/typesmith/core/channel/http"
	"github.com/artpar/typesmith/core/codegen"
	"github.com/artpar/typesmith/core/exporter"
)

func (c *Channel) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve registered shapes over HTTP",
		Long: `Start the introspection server.

Routes:
  GET  /health                     - liveness
  GET  /shapes                     - registered shapes
  GET  /shapes/{name}              - generated file for one shape
  POST /shapes/{name}/instantiate  - validate a JSON payload
  GET  /preview                    - every file a generation run would write
  GET  /metrics                    - Prometheus metrics (metrics.enabled)

Environment variables:
  TYPESMITH_SERVER_HOST      - Listen host (default: 127.0.0.1)
  TYPESMITH_SERVER_PORT      - Listen port (default: 8080)
  TYPESMITH_METRICS_ENABLED  - Expose /metrics (default: false)

Examples:
  typesmith serve
  typesmith serve --port 9000 --metrics`,
		Args: cobra.NoArgs,
		RunE: c.runServe,
	}

	cmd.Flags().String("host", "", "override server.host")
	cmd.Flags().Int("port", 0, "override server.port")
	cmd.Flags().Bool("metrics", false, "expose Prometheus metrics regardless of metrics.enabled")

	return cmd
}

func (c *Channel) runServe(cmd *cobra.Command, args []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if metrics, _ := cmd.Flags().GetBool("metrics"); metrics {
		cfg.Metrics.Enabled = true
	}

	logger := newLogger(cfg.Logging, cmd.ErrOrStderr())

	recorders := exporter.Multi{exporter.NewLogExporter(logger)}
	var (
		metricsHandler http.Handler
		requestMetrics *metrics.Collector
	)
	if cfg.Metrics.Enabled {
		prom := exporter.NewPrometheusExporter(exporter.PrometheusConfig{
			Prefix:         cfg.Metrics.Prefix,
			RuntimeMetrics: true,
		})
		recorders = append(recorders, prom)
		metricsHandler = prom.Handler()
		requestMetrics = metrics.NewWithRegistry(prom.Registry(), cfg.Metrics.Prefix)
		logger.Info().Str("path", cfg.Metrics.Path).Msg("prometheus metrics enabled")
	}

	gen := codegen.New(
		codegen.WithExtension(cfg.Output.Extension),
		codegen.WithLogger(logger),
		codegen.WithMetrics(recorders),
	)

	channel := httpchannel.New(c.registry, httpchannel.Options{
		Addr:           cfg.Server.Addr(),
		Logger:         logger,
		Generator:      gen,
		Recorder:       recorders,
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Metrics.Path,
		RequestMetrics: requestMetrics,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := channel.Start(ctx); err != nil {
		return fmt.Errorf("start http channel: %w", err)
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return channel.Stop(shutdownCtx)
}
