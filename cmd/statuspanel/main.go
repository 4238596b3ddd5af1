package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lems/statuspanel/internal/api"
	"github.com/lems/statuspanel/internal/config"
	"github.com/lems/statuspanel/internal/health"
	"github.com/lems/statuspanel/internal/logger"
	"github.com/lems/statuspanel/internal/metrics"
	"github.com/lems/statuspanel/internal/poller"
	"github.com/lems/statuspanel/internal/storage"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	logger.Init(cfg.LogFormat, level)

	if err := run(cfg); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// Create storage
	var store storage.Storage
	var err error

	switch cfg.Storage {
	case config.StorageSQLite:
		store, err = storage.NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("create SQLite storage: %w", err)
		}
		logger.Info("Using SQLite storage", "path", cfg.SQLitePath)
	default:
		store = storage.NewMemoryStorage()
		logger.Info("Using in-memory storage")
	}
	defer store.Close()

	m := metrics.New()
	hub := api.NewSSEHub()
	recorder := storage.NewRecorder(store, cfg.HistoryTTL)

	// Create poller and its subscribers
	p := poller.New(health.NewClient(cfg.HealthURL, cfg.CheckTimeout))
	p.OnSnapshot(hub.BroadcastSnapshot)
	p.OnSnapshot(m.ObserveSnapshot)
	p.OnSnapshot(recorder.Record)
	p.OnCheck(m.ObserveCheck)

	handlers := api.NewHandlers(p, store, hub, cfg.PollInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.NewServer(handlers, m.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
		// SSE запросы завершаются по сигналу вместе с контекстом
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	handle, err := p.Start(cfg.PollInterval)
	if err != nil {
		return fmt.Errorf("start poller: %w", err)
	}
	defer p.Stop(handle)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "addr", "http://localhost"+httpServer.Addr)
		logger.Info("Health endpoint", "url", cfg.HealthURL)
		logger.Info("Poll interval", "interval", cfg.PollInterval)
		logger.Info("History TTL", "ttl", cfg.HistoryTTL)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		// Останавливаем поллер до HTTP сервера, чтобы SSE клиенты не ждали новых снимков
		p.Stop(handle)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}
