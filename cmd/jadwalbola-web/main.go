package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matthewjhunter/jadwalbola"
	"github.com/matthewjhunter/jadwalbola/internal/logging"
	"github.com/matthewjhunter/jadwalbola/internal/storage"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "config file path (.yaml or .toml)")
	dbPath := flag.String("db", "", "path to SQLite database (overrides config)")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	cfg, err := storage.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jadwalbola-web: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *addr != "" {
		cfg.Web.Addr = *addr
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "jadwalbola-web: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	engine, err := jadwalbola.NewEngine(jadwalbola.EngineConfig{
		DBPath:      cfg.Database.Path,
		BusyTimeout: time.Duration(cfg.Database.BusyTimeoutMS) * time.Millisecond,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("open engine", zap.Error(err))
	}
	defer engine.Close()

	srv := &http.Server{
		Addr:         cfg.Web.Addr,
		Handler:      newServer(engine, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("listening", zap.String("addr", cfg.Web.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	<-done
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
		return
	}
	logger.Info("stopped")
}

// newServer wraps the router in the middleware chain.
func newServer(engine *jadwalbola.Engine, logger *zap.Logger) http.Handler {
	logger = logger.Named("web")
	return requestID(logRequests(logger, recovery(logger, newRouter(engine, logger))))
}
