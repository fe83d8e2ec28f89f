package router

import (
	"harness-sample-app/internal/adapter/gin/handler"
	"harness-sample-app/internal/adapter/gin/middleware"
	"harness-sample-app/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter configures and returns a Gin router with all routes and middleware.
// rateLimiter and m may be nil, in which case no limiting or metrics apply.
func SetupRouter(
	userHandler *handler.UserHandler,
	systemHandler *handler.SystemHandler,
	rateLimiter *middleware.RateLimiter,
	m *metrics.Collector,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = false

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Metrics(m))
	router.Use(rateLimiter.Middleware())

	router.GET("/", systemHandler.Welcome)
	router.GET("/health", systemHandler.Health)

	users := router.Group("/api/users")
	{
		users.GET("", userHandler.ListUsers)
		users.POST("", userHandler.CreateUser)
		users.GET("/:id", userHandler.GetUser)
	}

	router.NoRoute(systemHandler.NotFound)

	return router
}
