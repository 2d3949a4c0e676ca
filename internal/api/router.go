package api

import (
	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/nba-props/internal/api/handlers"
	"github.com/stitts-dev/nba-props/internal/api/middleware"
	"github.com/stitts-dev/nba-props/internal/services"
)

// Dependencies are the handlers and settings the router mounts
type Dependencies struct {
	Projections *handlers.ProjectionHandler
	Health      *handlers.HealthHandler
	WebSocket   *handlers.WebSocketHandler
	Metrics     *services.Metrics
	JWTSecret   string
}

// SetupRoutes registers every route on the engine
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health", deps.Health.GetHealth)
	router.GET("/ready", deps.Health.GetReady)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	if deps.WebSocket != nil {
		router.GET("/ws", deps.WebSocket.HandleWebSocket)
	}

	v1 := router.Group("/api/v1")
	v1.GET("/projections", deps.Projections.GetProjections)
	v1.GET("/projections/status", deps.Projections.GetPassStatus)
	v1.GET("/passes", deps.Projections.ListPasses)
	v1.GET("/passes/:id", deps.Projections.GetPass)

	admin := v1.Group("")
	admin.Use(middleware.AuthRequired(deps.JWTSecret))
	admin.POST("/passes", deps.Projections.RunPass)
}
