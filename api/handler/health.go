package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/meeplesync/models"
	"github.com/openshelf/meeplesync/queue"
)

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status     string `json:"status"`
	Uptime     string `json:"uptime"`
	Backend    string `json:"backend"`
	QueueDepth int64  `json:"queueDepth"`
	Version    string `json:"version"`
}

// BackendNamer reports which remote backend is currently active.
type BackendNamer interface {
	BackendName() string
}

// Health returns a handler for GET /api/v1/health.
//
// Degrades status when the queue has stopped draining while work is
// still pending.
func Health(q *queue.Queue, backend BackendNamer, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		var depth int64
		if qs, err := q.Status(); err == nil {
			depth = qs.PendingCount
			if qs.IsStopping && depth > 0 {
				status = "degraded"
			}
		} else {
			status = "degraded"
		}

		c.JSON(http.StatusOK, HealthResponse{
			Status:     status,
			Uptime:     time.Since(startTime).Round(time.Second).String(),
			Backend:    backend.BackendName(),
			QueueDepth: depth,
			Version:    "0.1.0",
		})
	}
}

// errorJSON writes the uniform error envelope.
func errorJSON(c *gin.Context, httpStatus int, code, message string) {
	c.JSON(httpStatus, models.ErrorResponse{
		Error: &models.ErrorDetail{Code: code, Message: message},
	})
}
