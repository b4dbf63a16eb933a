package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"profitpulse/internal/config"
	"profitpulse/internal/container"
	"profitpulse/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appConfig); err != nil {
		stop()
		log.Fatal(err)
	}
}

// run wires the container and serves until ctx is cancelled
func run(ctx context.Context, appConfig *config.Config) error {
	appContainer, err := container.New(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create application container: %w", err)
	}
	defer func() {
		if err := appContainer.Shutdown(context.Background()); err != nil {
			log.Printf("Failed to shut down container: %v", err)
		}
	}()

	if err := appContainer.InitWithDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := appContainer.InitAI(ctx); err != nil {
		return fmt.Errorf("failed to initialize AI analysis: %w", err)
	}

	server, err := ui.NewServer(appConfig.Server, ui.Dependencies{
		Loader:   appContainer.Loader,
		Analyzer: appContainer.Analyzer,
		Repo:     appContainer.AnalysisRepo,
		Logger:   appContainer.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	return server.Run(ctx, ":"+appConfig.Server.Port)
}
