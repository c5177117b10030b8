package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/heartmarshall/spiral-worksheets/internal/auth"
	"github.com/heartmarshall/spiral-worksheets/internal/config"
	"github.com/heartmarshall/spiral-worksheets/internal/transport/middleware"
	"github.com/heartmarshall/spiral-worksheets/internal/transport/rest"
)

// Run is the server entry point. It loads configuration, wires the
// services and serves the HTTP API until SIGINT or SIGTERM.
func Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting server",
		slog.String("version", BuildVersion()),
		slog.String("llm_provider", cfg.LLM.Provider),
		slog.Bool("run_log", cfg.Database.Enabled()),
	)

	c, err := Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	limiter := middleware.NewRateLimiter(5 * time.Minute)
	defer limiter.Stop()

	router := rest.NewRouter(rest.Handlers{
		Health:    newHealthHandler(c),
		Pipeline:  rest.NewPipelineHandler(c.Runner, logger),
		Review:    rest.NewReviewHandler(c.Review, logger),
		Worksheet: rest.NewWorksheetHandler(c.Worksheets, logger),
	}, rest.RouterDeps{
		Tokens:      auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL),
		RateLimiter: limiter,
		CORS:        cfg.CORS,
		RateLimit:   cfg.Server.RateLimitPerMinute,
		Log:         logger,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	return serve(ctx, srv, cfg.Server.ShutdownTimeout, logger)
}

// serve runs srv until ctx is cancelled, then drains in-flight requests
// for at most timeout.
func serve(ctx context.Context, srv *http.Server, timeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func newHealthHandler(c *Components) *rest.HealthHandler {
	if pool := c.Database(); pool != nil {
		return rest.NewHealthHandler(c.Sheets, pool, BuildVersion())
	}
	return rest.NewHealthHandler(c.Sheets, nil, BuildVersion())
}
