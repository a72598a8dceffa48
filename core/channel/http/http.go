// Package http serves registered declarations over HTTP.
// Clients can list shapes, fetch the generated TypeScript for one shape,
// preview a full generation run and validate payloads by instantiating a
// shape.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/artpar/typesmith/adapters/metrics"
	"github.com/artpar/typesmith/core/codegen"
	"github.com/artpar/typesmith/core/exporter"
	"github.com/artpar/typesmith/core/registry"
)

// Options configures a Channel.
type Options struct {
	// Addr is the listen address. Empty means embedded mode: Start is a no-op
	// and the router is served by the caller through Handler.
	Addr string

	// Logger receives request and server logs.
	Logger zerolog.Logger

	// Generator renders units. Defaults to codegen.New().
	Generator *codegen.Generator

	// Recorder receives instantiation metrics.
	Recorder exporter.Recorder

	// MetricsHandler is mounted at MetricsPath when set.
	MetricsHandler http.Handler

	// MetricsPath defaults to /metrics.
	MetricsPath string

	// RequestMetrics records per-route request metrics when set.
	RequestMetrics *metrics.Collector
}

// Channel implements the HTTP channel for a declaration registry.
type Channel struct {
	router   chi.Router
	registry *registry.Registry
	gen      *codegen.Generator
	recorder exporter.Recorder
	logger   zerolog.Logger
	addr     string
	server   *http.Server
}

// New creates a new HTTP channel.
func New(reg *registry.Registry, opts Options) *Channel {
	if opts.Generator == nil {
		opts.Generator = codegen.New()
	}
	if opts.Recorder == nil {
		opts.Recorder = exporter.NewNoopExporter()
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}

	c := &Channel{
		router:   chi.NewRouter(),
		registry: reg,
		gen:      opts.Generator,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		addr:     opts.Addr,
	}

	// Middleware
	c.router.Use(middleware.RequestID)
	c.router.Use(middleware.RealIP)
	c.router.Use(NewLoggingMiddleware(c.logger, opts.MetricsPath))
	if opts.RequestMetrics != nil {
		c.router.Use(opts.RequestMetrics.Middleware("/health", opts.MetricsPath))
	}
	c.router.Use(middleware.Recoverer)

	c.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if opts.MetricsHandler != nil {
		c.router.Handle(opts.MetricsPath, opts.MetricsHandler)
	}

	shapes := NewShapeHandler(reg, c.gen, c.recorder)
	c.router.Mount("/shapes", shapes.Routes())
	c.router.Get("/preview", shapes.preview)

	return c
}

// Name returns the channel name.
func (c *Channel) Name() string {
	return "http"
}

// Handler returns the HTTP handler.
func (c *Channel) Handler() http.Handler {
	return c.router
}

// Start starts the HTTP server in the background.
func (c *Channel) Start(ctx context.Context) error {
	// Only start if addr is set (standalone mode)
	if c.addr == "" {
		return nil
	}

	c.server = &http.Server{
		Addr:              c.addr,
		Handler:           c.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Error().Err(err).Str("addr", c.addr).Msg("HTTP server error")
		}
	}()

	c.logger.Info().Str("addr", c.addr).Msg("HTTP server started")
	return nil
}

// Stop stops the HTTP server.
func (c *Channel) Stop(ctx context.Context) error {
	if c.server != nil {
		return c.server.Shutdown(ctx)
	}
	return nil
}
