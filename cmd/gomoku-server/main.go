package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/AloySobek/ft-gomoku/internal/config"
	"github.com/AloySobek/ft-gomoku/internal/logging"
	"github.com/AloySobek/ft-gomoku/internal/server"
	"github.com/AloySobek/ft-gomoku/internal/store"
)

func main() {
	fs := pflag.NewFlagSet("gomoku-server", pflag.ExitOnError)
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("backend stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	settings, err := cfg.Engine.Settings()
	if err != nil {
		return err
	}

	var boards store.BoardStore = store.NewMemoryBoardStore()
	if cfg.Redis.Addr != "" {
		redisStore, err := store.NewRedisBoardStore(sigCtx, cfg.Redis)
		if err != nil {
			return err
		}
		boards = redisStore
		log.Info("board snapshots in redis", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.TTL))
	}
	defer boards.Close()

	var archive store.Archive = store.NopArchive{}
	if cfg.Mongo.URI != "" {
		mongoArchive, err := store.NewMongoArchive(sigCtx, cfg.Mongo)
		if err != nil {
			return err
		}
		archive = mongoArchive
		log.Info("finished games archived in mongodb", zap.String("database", cfg.Mongo.Database))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
		defer cancel()
		if err := archive.Close(ctx); err != nil {
			log.Warn("close archive", zap.Error(err))
		}
	}()

	srv := server.New(log, config.NewSettingsStore(settings), boards, archive)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Routes(),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()
	log.Info("backend listening", zap.String("addr", cfg.Server.Addr), zap.Int("board_size", settings.BoardSize), zap.Int("depth", settings.Depth))

	var runErr error
	select {
	case <-sigCtx.Done():
		log.Info("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := httpServer.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Warn("forced close failed", zap.Error(closeErr))
		}
	}
	return runErr
}
