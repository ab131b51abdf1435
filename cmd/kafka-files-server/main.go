package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/kafka-files/pkg/kafkafile"
	"github.com/tendant/kafka-files/pkg/kafkafile/api"
	"github.com/tendant/kafka-files/pkg/kafkafile/config"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	serverConfig, err := config.Load(config.WithEnv())
	if err != nil {
		slog.Error("Failed to load server configuration", "err", err)
		os.Exit(1)
	}

	logger := newLogger(serverConfig.Environment)
	slog.SetDefault(logger)

	ctx := context.Background()
	registry, closer, err := serverConfig.BuildRegistry(ctx, logger)
	if err != nil {
		logger.Error("Failed to build registry", "err", err)
		os.Exit(1)
	}
	defer closer.Close()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", serverConfig.Port),
		Handler:           routes(registry, serverConfig, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Kafka file server starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"database", serverConfig.DatabaseType,
			"storage", serverConfig.StorageType)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "err", err)
	}

	logger.Info("Server exiting")
}

func newLogger(environment string) *slog.Logger {
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func routes(registry kafkafile.Registry, serverConfig *config.ServerConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.MetricsMiddleware())
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{
			"status":      "healthy",
			"environment": serverConfig.Environment,
			"storage":     string(registry.StorageKind()),
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	files := api.NewFilesHandler(registry,
		api.WithClusterNameResolver(api.StaticClusterNames(serverConfig.ClusterNames)),
		api.WithHandlerLogger(logger),
	)
	r.Mount("/kafka-files", files.Routes())

	return r
}
