package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

func main() {

	// Load config
	cfg := config.MustLoad()

	// Logger setup
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Otel, cfg.Env)
	if err != nil {
		slog.Error("❌ Error initializing tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app, err := newApp(cfg)
	if err != nil {
		slog.Error("❌ Error initializing the application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := app.store.Close(); err != nil {
			slog.Error("⚠️ Error closing cart storage", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Cart storage closed")
		}
	}()

	slog.Info("storage initialized",
		slog.String("backend", cfg.Storage.Backend),
		slog.String("gateway", cfg.Gateway.Provider),
		slog.Int("products", len(app.catalog.Products)))

	// Setup http server
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if app.memory != nil {
		g.Go(func() error {
			return app.memory.Run(gctx, cfg.Storage.CleanupInterval)
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

		// Graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
			return err
		}

		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Warn("⚠️ Tracer shutdown encountered an issue", slog.String("error", err.Error()))
		}

		slog.Info("✅ Server shut down gracefully. All connections closed.")
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("❌ Server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})

	return slog.New(handler).With(
		slog.String("service", cfg.Otel.ServiceName),
		slog.String("env", cfg.Env),
	)
}
