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

	"github.com/openshelf/meeplesync/api"
	"github.com/openshelf/meeplesync/bgg"
	"github.com/openshelf/meeplesync/cache"
	"github.com/openshelf/meeplesync/config"
	"github.com/openshelf/meeplesync/queue"
	"github.com/openshelf/meeplesync/scheduler"
	"github.com/openshelf/meeplesync/store"
	"github.com/openshelf/meeplesync/webhook"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("meeplesync starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"db", cfg.DB.Path,
	)

	// ── 3. Open catalog store ───────────────────────────────────────
	st, err := store.Open(cfg.DB.Path)
	if err != nil {
		slog.Error("failed to open store", "path", cfg.DB.Path, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// ── 4. Remote backend selector ──────────────────────────────────
	selector := bgg.NewSelector(cfg.Remote, cfg.Browser)
	slog.Info("remote backend", "backend", selector.BackendName())

	// ── 5. Webhook notifier (nil when no URL configured) ────────────
	notifier := webhook.NewNotifier(cfg.Webhook.URL, cfg.Webhook.Secret)

	// ── 6. Job queue (recovers interrupted jobs) ────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q, err := queue.New(st, selector, cfg.Queue, notifier)
	if err != nil {
		slog.Error("failed to initialise queue", "error", err)
		os.Exit(1)
	}
	q.Start(ctx)

	// ── 7. Sync scheduler ───────────────────────────────────────────
	sched := scheduler.New(st, selector, q, cfg.Sync, cfg.Remote.Username, notifier)
	if err := sched.Start(ctx); err != nil {
		slog.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	// ── 8. Response cache + router ──────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	startTime := time.Now()
	router := api.NewRouter(st, q, sched, selector, cfg, cc, startTime)

	// ── 9. Start HTTP server ────────────────────────────────────────
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

	// ── 10. Graceful shutdown ───────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	sched.Stop()
	cancel()
	q.Wait()

	slog.Info("meeplesync stopped")
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
