package main

import (
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dpruessner/lambda-event-to-http/internal/app"
	"github.com/dpruessner/lambda-event-to-http/internal/config"
	"github.com/dpruessner/lambda-event-to-http/pkg/proxy"
)

var p *proxy.Proxy

func init() {
	cfg, err := config.GetOptimizedConfig()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	configureLogging(cfg)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := app.New(cfg)

	p = proxy.New(engine,
		proxy.WithSubdomainOffset(cfg.Proxy.SubdomainOffset),
		proxy.WithBasePath(cfg.Proxy.BasePath),
	)
}

func configureLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Log.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}

func main() {
	// Raw payloads keep one function serving both API Gateway formats
	awslambda.Start(p.Handle)
}
