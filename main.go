package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chaos-io/bgstudio/config"
	"github.com/chaos-io/bgstudio/handler"
	"github.com/chaos-io/bgstudio/studio"
	"github.com/chaos-io/bgstudio/studio/rembg"
	"github.com/chaos-io/bgstudio/util"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := util.InitLogger(cfg.Server.Mode); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer util.Sync()

	util.Logger.Info("starting bgstudio",
		zap.String("version", Version),
		zap.String("git_commit", GitCommit),
		zap.String("rembg_backend", cfg.RemBG.Backend))

	remover, err := rembg.New(cfg.RemBG.Options())
	if err != nil {
		util.Logger.Fatal("failed to create background remover", zap.Error(err))
	}
	if c, ok := remover.(interface{ Close() error }); ok {
		defer func() {
			_ = c.Close()
		}()
	}

	monitor := rembg.NewMonitor(cfg.RemBG.Backend, remover, cfg.RemBG.Timeout)
	if err := monitor.Start(cfg.RemBG.ProbeSchedule); err != nil {
		util.Logger.Fatal("failed to schedule rembg probe", zap.Error(err))
	}
	defer monitor.Stop()

	pipeline := studio.NewPipeline(remover, studio.NewCompositor(studio.DefaultOptions()))
	imageHandler := handler.NewImageHandler(pipeline, monitor, Version)

	gin.SetMode(cfg.Server.Mode)
	srv := &http.Server{
		Addr:         cfg.Server.ListenAddr(),
		Handler:      handler.NewRouter(imageHandler, cfg.Upload.MaxMemory),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		util.Logger.Info("server starting", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			util.Logger.Error("server stopped", zap.Error(err))
		}
	case sig := <-sigCh:
		util.Logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			util.Logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
