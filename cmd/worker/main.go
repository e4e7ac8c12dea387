package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"clinica/internal/infrastructure/cache"
	"clinica/internal/infrastructure/config"
	"clinica/internal/infrastructure/database"
	"clinica/internal/infrastructure/repository"
	"clinica/internal/infrastructure/scheduler"
	"clinica/internal/shared/logger"
)

// Standalone janitor worker for deployments that run the expiry sweep out of
// process. It owns no request traffic, so its cache tier starts empty and
// the sweep effectively maintains the durable store.
func main() {
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger()
	log.Infow("starting session janitor worker", "environment", env)

	if err := database.Init(&cfg.Database); err != nil {
		log.Errorw("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	durableStore := repository.NewSessionRepository(database.Get())
	janitor := scheduler.NewSessionJanitor(
		cache.NewSessionCache(),
		durableStore,
		cfg.Janitor.Interval(),
		log.Named("session_janitor"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	janitor.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down janitor worker")
	janitor.Stop()
}
