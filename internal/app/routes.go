package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dpruessner/lambda-event-to-http/internal/config"
	"github.com/dpruessner/lambda-event-to-http/internal/middleware"
)

// RouterConfig holds dependencies for setting up routes
type RouterConfig struct {
	AuthService *middleware.AuthService
}

// SetupRoutes configures all demo routes
func SetupRoutes(router *gin.Engine, rc *RouterConfig) {
	demoHandler := NewDemoHandler()
	authHandler := NewAuthHandler(rc.AuthService)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "lambda-event-to-http",
			"mode":    config.GetDeploymentMode(),
		})
	})

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	// Translation demo routes
	router.POST("/echo", demoHandler.Echo)
	router.GET("/event", demoHandler.Event)
	router.GET("/binary", demoHandler.Binary)
	router.GET("/cookies", demoHandler.Cookies)
	router.GET("/subdomains", demoHandler.Subdomains)

	// Authentication routes (no auth required)
	auth := router.Group("/auth")
	{
		auth.POST("/token", authHandler.Token)
	}

	// Protected API routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Authentication(rc.AuthService))
	{
		v1.GET("/me", authHandler.Me)
	}
}
