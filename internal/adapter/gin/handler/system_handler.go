package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// WelcomeMessage is returned by GET /.
const WelcomeMessage = "Welcome to Harness Sample App"

// SystemHandler serves the endpoints that do not touch the user store.
type SystemHandler struct {
	startedAt time.Time
	now       func() time.Time
}

// NewSystemHandler creates a SystemHandler whose uptime counts from startedAt.
func NewSystemHandler(startedAt time.Time) *SystemHandler {
	return &SystemHandler{startedAt: startedAt, now: time.Now}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"` // seconds
}

// Welcome handles GET /
func (h *SystemHandler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": WelcomeMessage})
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	now := h.now()
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Uptime:    now.Sub(h.startedAt).Seconds(),
	})
}

// NotFound answers every unmatched route.
func (h *SystemHandler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: "Route not found"})
}
