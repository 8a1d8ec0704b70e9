// Package app assembles the demo gin application that exercises the event
// translation layer. The same engine is served by net/http in cmd/server and
// handed to the Lambda proxy in cmd/lambda.
package app

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dpruessner/lambda-event-to-http/internal/config"
	"github.com/dpruessner/lambda-event-to-http/internal/middleware"
)

// New builds the demo application engine from the given configuration.
func New(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger())
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	router.Use(middleware.ErrorHandler())

	authService := middleware.NewAuthService(&middleware.AuthConfig{
		JWTSecret:     cfg.JWT.Secret,
		TokenDuration: time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
	})

	SetupRoutes(router, &RouterConfig{
		AuthService: authService,
	})

	return router
}
