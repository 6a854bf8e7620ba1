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

	"github.com/use-agent/skulookup/api"
	"github.com/use-agent/skulookup/browser"
	"github.com/use-agent/skulookup/cleaner"
	"github.com/use-agent/skulookup/config"
	"github.com/use-agent/skulookup/engine"
	"github.com/use-agent/skulookup/extractor"
	"github.com/use-agent/skulookup/lookup"
	"github.com/use-agent/skulookup/sitemap"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("skulookup starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"sitemap", cfg.Sitemap.URL,
		"indexTTL", cfg.Sitemap.TTL,
	)

	// ── 3. Fetch engines ────────────────────────────────────────────
	engines := []engine.Engine{
		engine.NewHTTPEngine(cfg.Page.UserAgent, cfg.Page.TLSFingerprint),
	}

	// ── 3b. Optional browser fallback ───────────────────────────────
	if cfg.Browser.Enabled {
		br, err := browser.New(cfg.Browser, cfg.Page.UserAgent)
		if err != nil {
			slog.Error("failed to launch browser", "error", err)
			os.Exit(1)
		}
		defer br.Close()

		// br.Render matches engine.RodFetchFunc, so engine/ never imports browser/.
		engines = append(engines, engine.NewRodEngine(br.Render))
		slog.Info("browser engine enabled", "maxPages", cfg.Browser.MaxPages, "stealth", cfg.Browser.Stealth)
	}

	memory := engine.NewDomainMemory(cfg.Engine.MemoryTTL)
	dispatcher := engine.NewDispatcher(engines, memory)

	// ── 4. Index, extractor, cleaner ────────────────────────────────
	indexer := sitemap.NewIndexer(cfg.Sitemap, &http.Client{})
	ext := extractor.New(dispatcher, cfg.Page.Timeout)
	svc := lookup.NewService(indexer, cfg.Sitemap.TTL, ext, cleaner.NewCleaner())

	// ── 5. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()
	router := api.NewRouter(appCtx, svc, cfg, dispatcher.Names(), startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
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

	// Give in-flight lookups 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("skulookup stopped")
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
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
