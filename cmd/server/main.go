package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/rpggio/estimator/internal/backend"
	"github.com/rpggio/estimator/internal/config"
	"github.com/rpggio/estimator/internal/document"
	"github.com/rpggio/estimator/internal/domain/activity"
	"github.com/rpggio/estimator/internal/domain/project"
	"github.com/rpggio/estimator/internal/mcp"
	"github.com/rpggio/estimator/internal/sqlite"
	"github.com/rpggio/estimator/internal/transport"
	"github.com/rpggio/estimator/internal/workspace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer fileWriter.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if err := ensureDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.RunMigrations(); err != nil {
		return err
	}

	client := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout, logger)

	store := project.NewStore(sqlite.NewStateRepository(db), client, logger)
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("load projects: %w", err)
	}
	if err := store.Sync(ctx); err != nil {
		logger.Warn("initial project sync failed, using local state", "error", err)
	}

	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)

	opts := workspace.Options{
		MaxFileSize: cfg.Upload.MaxFileSize,
		IngestDelay: cfg.Upload.IngestDelay,
	}
	if cfg.Archive.Enabled() {
		archive, err := document.NewS3Archive(ctx, document.S3Options{
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Bucket:    cfg.Archive.Bucket,
			UseSSL:    cfg.Archive.UseSSL,
		}, logger)
		if err != nil {
			return fmt.Errorf("connect archive: %w", err)
		}
		opts.Archive = archive
	}

	ws := workspace.NewService(store, client, activitySvc, opts, logger)
	mcpServer := mcp.NewServer(mcp.Config{Workspace: ws, Logger: logger})

	if cfg.Transport.Mode == "stdio" {
		logger.Info("starting stdio transport")
		// Run blocks until stdin closes or the context is canceled.
		return mcpServer.Run(ctx, &sdkmcp.StdioTransport{})
	}
	return runHTTP(ctx, cfg, logger, ws, mcpServer)
}

func runHTTP(ctx context.Context, cfg config.Config, logger *slog.Logger, ws *workspace.Service, mcpServer *sdkmcp.Server) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
	)

	opts := transport.Options{
		MCP:           mcpHandler,
		MaxUploadSize: cfg.Upload.MaxFileSize * 4,
		Logger:        logger,
	}
	if cfg.Auth.Token != "" {
		opts.Auth = transport.AuthMiddleware(cfg.Auth.Token)
	} else {
		logger.Warn("no API token configured, HTTP surfaces are unauthenticated")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewServer(ws, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func ensureDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
