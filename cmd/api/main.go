package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/app"
	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/config"
)

func main() {
	if err := run(); err != nil {
		log.Printf("wanaship-api: %v", err)
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine; configuration falls back to real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	return application.Run(ctx)
}
