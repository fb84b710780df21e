// Command studyrag answers questions about a library of study material.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/studyrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/studyrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/studyrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/studyrag/internal/core/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal; keys may come from the environment.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	home, err := file.HomeDir()
	if err != nil {
		return err
	}
	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settingsService.SetEnv(os.Getenv)

	cli.SetSettingsService(settingsService)
	cli.SetBootstrap(newBootstrap(home, settingsService))

	return cli.Execute(ctx)
}
