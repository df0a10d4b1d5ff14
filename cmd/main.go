package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet-tracker/internal/config"
	"fleet-tracker/internal/database"
	"fleet-tracker/internal/logger"
	"fleet-tracker/internal/notifier"
	"fleet-tracker/internal/routes"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
	)

	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		logger.Fatal("Database configuration is missing. Please set DB_HOST and DB_NAME environment variables.")
	}

	db, err := database.NewDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	router, trackingService := routes.SetupRoutes(cfg, db)

	var changeNotifier *notifier.ChangeNotifier
	if cfg.MQTT.Broker != "" {
		changeNotifier = notifier.NewChangeNotifier(&cfg.MQTT, func(ctx context.Context, orgID uuid.UUID) error {
			_, err := trackingService.Refresh(ctx, orgID, true)
			return err
		})
		if err := changeNotifier.Start(); err != nil {
			logger.Fatal("Failed to start change notifier", zap.Error(err))
		}
		defer changeNotifier.Stop()

		for _, raw := range cfg.MQTT.WatchedOrgs {
			orgID, err := uuid.Parse(raw)
			if err != nil {
				logger.Warn("Skipping invalid watched org id", zap.String("org_id", raw))
				continue
			}
			if err := changeNotifier.Watch(orgID); err != nil {
				logger.Fatal("Failed to subscribe organization to change streams",
					zap.String("org_id", raw),
					zap.Error(err),
				)
			}
		}
	} else {
		logger.Warn("MQTT broker not configured; push-triggered reconciliation disabled")
	}

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	addr := net.JoinHostPort(host, port)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Failed to shutdown server", zap.Error(err))
	}

	log.Println("Server exited properly")
}
