package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	sessionApp "clinica/internal/application/session"
	domain "clinica/internal/domain/session"
	"clinica/internal/infrastructure/cache"
	"clinica/internal/infrastructure/config"
	"clinica/internal/infrastructure/database"
	"clinica/internal/infrastructure/events"
	"clinica/internal/infrastructure/repository"
	"clinica/internal/infrastructure/scheduler"
	httpRouter "clinica/internal/interfaces/http"
	"clinica/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the session service HTTP server",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()
	log.Infow("starting server", "environment", env)

	gin.SetMode(mapEnvToGinMode(env))
	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	var sink domain.EventSink
	if cfg.Events.Sink == "redis" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		sink = events.NewRedisEventSink(redisClient)
		log.Infow("using redis security event sink", "addr", cfg.Redis.GetAddr())
	} else {
		sink = repository.NewSecurityEventRepository(database.Get())
	}

	sessionCache := cache.NewSessionCache()
	durableStore := repository.NewSessionRepository(database.Get())
	recordStore := sessionApp.NewRecordStore(sessionCache, durableStore, log.Named("session_store"))
	fingerprints := repository.NewFingerprintRepository(database.Get())

	sessionService := sessionApp.NewService(recordStore, sink, fingerprints, cfg.Session, log.Named("session_service"))

	janitor := scheduler.NewSessionJanitor(sessionCache, durableStore, cfg.Janitor.Interval(), log.Named("session_janitor"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	janitor.Start(ctx)
	defer janitor.Stop()

	router := httpRouter.NewRouter(sessionService, log)
	router.SetupRoutes()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "address", cfg.Server.GetAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func mapEnvToGinMode(env string) string {
	switch env {
	case "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
