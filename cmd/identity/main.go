package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/commercekit/shop-platform/internal/infra/app"
	"github.com/commercekit/shop-platform/internal/infra/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.NewIdentity(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init identity service: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		log.Printf("identity service stopped: %v", err)
		os.Exit(1)
	}
}
