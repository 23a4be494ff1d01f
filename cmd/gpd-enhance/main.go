package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/use-agent/gpd-enhance/api"
	"github.com/use-agent/gpd-enhance/auth"
	"github.com/use-agent/gpd-enhance/config"
	"github.com/use-agent/gpd-enhance/enhance"
	"github.com/use-agent/gpd-enhance/extractor"
	"github.com/use-agent/gpd-enhance/listing"
	"github.com/use-agent/gpd-enhance/sources"
	"github.com/use-agent/gpd-enhance/webhook"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("gpd-enhance starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"store", cfg.Store.Driver,
		"autoScrape", cfg.Enhance.AutoScrape,
	)

	// ── 3. Open listing store ───────────────────────────────────────
	store, err := openStore(cfg.Store)
	if err != nil {
		slog.Error("failed to open listing store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// ── 4. Sources and enhancement service ──────────────────────────
	ex := extractor.New(cfg.Fetch)
	registry := sources.NewRegistry(append([]sources.Source{sources.NewWebsite(ex)}, sources.Stubs()...)...)
	svc := enhance.New(store, registry, webhook.NewNotifier(cfg.Webhook), cfg.Enhance)
	nonces := auth.NewNonces(cfg.Auth.NonceSecret, cfg.Auth.NonceLifetime)

	// ── 5. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(svc, store, nonces, cfg, time.Now())

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("gpd-enhance stopped")
}

func openStore(cfg config.StoreConfig) (listing.Store, error) {
	switch cfg.Driver {
	case "memory":
		return listing.NewMemoryStore(), nil
	default:
		s, err := listing.NewSQLiteStore(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
