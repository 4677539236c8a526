// jadwalbola-mcp is a standalone MCP server over the JadwalBola on-device
// database. It serves favorite-team and prediction tools over stdio so an
// assistant can read and edit the same data the app shows.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matthewjhunter/jadwalbola"
	"github.com/matthewjhunter/jadwalbola/internal/logging"
	"github.com/matthewjhunter/jadwalbola/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "config file path (.yaml or .toml)")
	dbPath := flag.String("db", "", "path to SQLite database (overrides config)")
	flag.Parse()

	cfg, err := storage.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jadwalbola-mcp: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	// stdout carries the protocol; logging.New writes to stderr.
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "jadwalbola-mcp: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	engine, err := jadwalbola.NewEngine(jadwalbola.EngineConfig{
		DBPath:      cfg.Database.Path,
		BusyTimeout: time.Duration(cfg.Database.BusyTimeoutMS) * time.Millisecond,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("create engine", zap.Error(err))
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("jadwalbola-mcp starting", zap.String("db", cfg.Database.Path))
	srv := newServer(engine, logger)
	if err := srv.mcpServer().Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
