package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/anhngo/fido-gateway/internal/app"
	"github.com/anhngo/fido-gateway/internal/config"
	gwhttp "github.com/anhngo/fido-gateway/internal/http"
	"github.com/anhngo/fido-gateway/internal/observability/logger"
)

var version = "dev"

func main() {
	// .env es opcional; las env vars del sistema siguen valiendo.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       os.Getenv("LOG_LEVEL"),
		ServiceName: "fido-gateway",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()

	a, err := app.New(cfg)
	if err != nil {
		logger.L().Fatal("app wiring failed", logger.Err(err))
	}

	readTimeout, _ := time.ParseDuration(cfg.Server.ReadTimeout)
	writeTimeout, _ := time.ParseDuration(cfg.Server.WriteTimeout)
	srv := gwhttp.NewServer(cfg.Server.Addr, a.Handler, readTimeout, writeTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.L().Info("fido-gateway listening",
		logger.Any("addr", cfg.Server.Addr),
		logger.Any("provider", cfg.Provider.BaseURL),
	)

	if err := gwhttp.Start(ctx, srv); err != nil {
		logger.L().Fatal("server failed", logger.Err(err))
	}
	logger.L().Info("fido-gateway stopped")
}
