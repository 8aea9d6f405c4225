package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/cyst-tools-mcp/internal/config"
	"github.com/ironsheep/cyst-tools-mcp/internal/logging"
	"github.com/ironsheep/cyst-tools-mcp/internal/server"
	"github.com/ironsheep/cyst-tools-mcp/internal/taskstore"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := os.Getenv("CYST_MCP_CONFIG")

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("cyst-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("cyst-tools-mcp - MCP server for dental cyst analysis")
			fmt.Println()
			fmt.Println("Usage: cyst-tools-mcp [options] [config.yaml]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  CYST_MCP_CONFIG=path         YAML configuration file")
			fmt.Println("  CYST_MCP_LOG_LEVEL=debug     Log level (debug, info, warn, error)")
			fmt.Println("  CYST_MCP_STORE_BACKEND=redis Task store (memory, redis)")
			fmt.Println("  CYST_MCP_REDIS_ADDR=host:port")
			fmt.Println()
			fmt.Println("A .env file in the working directory is loaded when present.")
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		default:
			configPath = os.Args[1]
		}
	}

	if err := run(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "cyst-tools-mcp: %v\n", err)
		os.Exit(1)
	}
}

// run serves until stdin closes or a signal arrives. Deferred cleanup runs
// before the process exits, including on error.
func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("logger error: %w", err)
	}
	defer logging.Sync(logger)

	logger.Info("starting cyst-tools-mcp",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
		zap.String("store", cfg.Store.Backend))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open task store", zap.Error(err))
		return err
	}
	defer store.Close()

	srv := server.New(cfg, taskstore.NewTracker(store), logger)
	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil {
		if ctx.Err() != nil {
			logger.Info("shutting down", zap.String("reason", ctx.Err().Error()))
			return nil
		}
		logger.Error("server error", zap.Error(err))
		return err
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (taskstore.Store, error) {
	if cfg.Store.Backend != config.BackendRedis {
		return taskstore.NewMemoryStore(), nil
	}
	store := taskstore.NewRedisStore(taskstore.RedisOptions{
		Addr:     cfg.Store.RedisAddr,
		Password: cfg.Store.RedisPassword,
		DB:       cfg.Store.RedisDB,
		TTL:      cfg.Store.TTL,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Store.RedisAddr, err)
	}
	return store, nil
}
