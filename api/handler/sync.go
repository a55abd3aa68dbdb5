package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/meeplesync/models"
	"github.com/openshelf/meeplesync/scheduler"
)

// TriggerSync returns a handler for POST /api/v1/sync.
//
// Starts a full collection sync immediately. Returns 409 when one is
// already running.
func TriggerSync(s *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.TriggerSync(); err != nil {
			var se *models.SyncError
			if errors.As(err, &se) && se.Code == models.ErrCodeSyncInFlight {
				c.JSON(http.StatusConflict, models.ErrorResponse{Error: se.ToDetail()})
				return
			}
			errorJSON(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to start sync")
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "started"})
	}
}

// SyncStatus returns a handler for GET /api/v1/sync/status.
func SyncStatus(s *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := s.Status()
		if err != nil {
			errorJSON(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to read sync status")
			return
		}
		c.JSON(http.StatusOK, status)
	}
}
