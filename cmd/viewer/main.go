package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rcip-agent/internal/api"
	"rcip-agent/internal/core/store"
	"rcip-agent/internal/infrastructure/config"
	"rcip-agent/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	recordStore, err := store.New(cfg.Output.Dir)
	if err != nil {
		common.LogFatal("failed to open output directory", zap.Error(err))
	}

	router := api.SetupRouter(cfg, recordStore)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Viewer.Port),
		Handler:      router,
		ReadTimeout:  cfg.Viewer.ReadTimeout,
		WriteTimeout: cfg.Viewer.WriteTimeout,
		IdleTimeout:  cfg.Viewer.IdleTimeout,
	}

	go func() {
		common.LogInfo("viewer started",
			zap.Int("port", cfg.Viewer.Port),
			zap.String("output_dir", cfg.Output.Dir),
			zap.String("version", cfg.App.Version),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("failed to start viewer", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("shutting down viewer...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("viewer forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	common.LogInfo("viewer exited")
}
