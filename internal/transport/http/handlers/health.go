package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// DatabaseChecker reports backend connectivity for readiness probes.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler exposes liveness and readiness information.
type HealthHandler struct {
	startedAt time.Time
	db        DatabaseChecker
}

// NewHealthHandler builds a health handler. A nil checker disables the
// database probe.
func NewHealthHandler(db DatabaseChecker) *HealthHandler {
	return &HealthHandler{startedAt: time.Now().UTC(), db: db}
}

// Status reports liveness.
func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		StartedAt: h.startedAt,
	})
}

// Ready reports readiness, verifying the database connection.
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, HealthResponse{
				Status:    "degraded",
				StartedAt: h.startedAt,
			})
			return
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		StartedAt: h.startedAt,
	})
}
