package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ryooooooya/shogi-ganbaru/internal/analysisbuilder"
	appcfg "github.com/ryooooooya/shogi-ganbaru/internal/config"
	"github.com/ryooooooya/shogi-ganbaru/internal/obslog"
	"github.com/ryooooooya/shogi-ganbaru/internal/server"
	"go.uber.org/zap"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	deps, err := analysisbuilder.New(cfg, logger)
	if err != nil {
		logger.Fatal("analysis init failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.New(deps.Service, deps.Fetcher, cfg.EnginePath, logger).Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // deep analyses of long games are slow
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("engine", cfg.EnginePath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if deps.Cache != nil {
		_ = deps.Cache.Close()
	}
	if deps.Repo != nil {
		_ = deps.Repo.Close()
	}
}
