// cmd/api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sokohub/sokohub-backend/internal/config"
	"github.com/sokohub/sokohub-backend/internal/infrastructure/database/postgres"
	"github.com/sokohub/sokohub-backend/internal/infrastructure/database/redis"
	"github.com/sokohub/sokohub-backend/internal/interfaces/http/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	db, err := postgres.NewConnection(cfg)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	migration := postgres.NewMigration(db, cfg)
	if err := migration.RunAutoMigrations(); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}
	if err := migration.SeedDevelopmentData(); err != nil {
		logrus.Warnf("Failed to seed development data: %v", err)
	}

	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		logrus.Warnf("Redis unavailable, continuing without it: %v", err)
		redisClient = nil
	}

	router := routes.SetupRoutes(db, redisClient, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"port":        cfg.Server.Port,
			"environment": cfg.App.Environment,
		}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logrus.Warnf("Failed to close redis client: %v", err)
		}
	}

	logrus.Info("server stopped")
}

func setupLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
