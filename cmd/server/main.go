package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Gunvolt24/shoecart/config"
	"github.com/Gunvolt24/shoecart/internal/app"
)

func main() {
	_ = godotenv.Load(".env.local")

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "shoecart: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := app.Bootstrap(ctx, &cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer cleanup()

	return a.Run(ctx)
}
