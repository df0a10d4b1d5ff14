package routes

import (
	"net/http"

	"fleet-tracker/internal/config"
	"fleet-tracker/internal/database"
	"fleet-tracker/internal/middleware"
	"fleet-tracker/internal/tracking/handler"
	"fleet-tracker/internal/tracking/repository"
	"fleet-tracker/internal/tracking/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires the tracking pipeline and returns the HTTP router plus
// the tracking service, which the change notifier also drives.
func SetupRoutes(cfg *config.Config, db *database.Database) (*gin.Engine, *service.TrackingService) {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	trackingService := service.NewTrackingService(service.Sources{
		Assets:       repository.NewAssetRepository(db),
		FleetSets:    repository.NewFleetSetRepository(db),
		LiveStates:   repository.NewLiveStateRepository(db),
		Capabilities: repository.NewCapabilityRepository(db),
		Executions:   repository.NewExecutionRepository(db),
		Parties:      repository.NewPartyRepository(db),
	}, service.NewStore())
	trackingHandler := handler.NewTrackingHandler(trackingService)

	v1 := router.Group("/api/v1")
	{
		trackingHandler.RegisterRoutes(v1)
	}

	return router, trackingService
}
