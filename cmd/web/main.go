package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mclarke-dev/docuchat/internal/app"
	"github.com/mclarke-dev/docuchat/internal/config"
	"github.com/mclarke-dev/docuchat/pkg/log"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg, err := config.LoadConfig()
	if err != nil {
		fallback := log.New("local")
		fallback.Fatal().Err(err).Msg("config load failed")
	}
	logger := log.New(cfg.AppEnv)

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}

	go application.Server.Start()
	logger.Info().Msg("docuchat web client is running")

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}
