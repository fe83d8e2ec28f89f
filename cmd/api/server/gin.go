package server

import (
	"net/http"
	"time"

	ginhandler "harness-sample-app/internal/adapter/gin/handler"
	"harness-sample-app/internal/adapter/gin/middleware"
	ginrouter "harness-sample-app/internal/adapter/gin/router"
	"harness-sample-app/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(
	userHandler *ginhandler.UserHandler,
	systemHandler *ginhandler.SystemHandler,
	rateLimiter *middleware.RateLimiter,
	m *metrics.Collector,
	ginAddr string,
	environment string,
	l *zap.Logger,
) *http.Server {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin router with all middleware and routes
	router := ginrouter.SetupRouter(userHandler, systemHandler, rateLimiter, m, l)

	l.Info("Gin REST API configured", zap.String("address", ginAddr))

	return &http.Server{
		Addr:              ginAddr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
