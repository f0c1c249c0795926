package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"recipe-analyzer/api/internal/app"
	"recipe-analyzer/api/internal/config"
	"recipe-analyzer/api/internal/httpserver"
	"recipe-analyzer/api/internal/logger"
)

func main() {
	// .env is optional outside local development.
	_ = godotenv.Load()

	lg, err := logger.New(os.Getenv("ENV"))
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync(lg)

	cfg, err := config.Load()
	if err != nil {
		lg.Fatal("config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("init", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			lg.Warn("close", zap.Error(err))
		}
	}()

	router := httpserver.NewRouter(a.Handler, "ok")
	if err := httpserver.Serve(ctx, ":"+cfg.Port, router, lg); err != nil {
		lg.Error("server stopped", zap.Error(err))
	}
}
