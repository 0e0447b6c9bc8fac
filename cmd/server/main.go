package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medvault/medvault/internal/app"
	"github.com/medvault/medvault/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", zap.Error(err))
		os.Exit(1)
	}

	if err := logger.Init(cfg.Log.Level); err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	gin.SetMode(gin.ReleaseMode)

	rt, err := buildRuntime(cfg)
	if err != nil {
		logger.Error("failed to build runtime", zap.Error(err))
		os.Exit(1)
	}
	defer rt.close()

	if rt.cleaner != nil {
		if err := rt.cleaner.Start(); err != nil {
			logger.Error("failed to start maintenance cleaner", zap.Error(err))
			os.Exit(1)
		}
		defer rt.cleaner.Stop()
	}

	server := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: rt.router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server failed", zap.Error(err))
		os.Exit(1)
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
