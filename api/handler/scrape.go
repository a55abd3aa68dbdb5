package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/meeplesync/models"
	"github.com/openshelf/meeplesync/queue"
)

// Enqueue returns a handler for POST /api/v1/scrape/:id.
//
// Enqueues one refresh job and returns 202 immediately; the actual remote
// fetch happens in the queue worker.
func Enqueue(q *queue.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID := strings.TrimSpace(c.Param("id"))
		if !validGameID(gameID) {
			errorJSON(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "game id must be a positive integer")
			return
		}

		var req models.EnqueueRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				errorJSON(c, http.StatusBadRequest, models.ErrCodeInvalidInput, err.Error())
				return
			}
		}

		jobID, err := q.Enqueue(gameID, req.Name)
		if err != nil {
			errorJSON(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to enqueue job")
			return
		}

		c.JSON(http.StatusAccepted, models.EnqueueResponse{
			JobID:  jobID,
			GameID: gameID,
			Status: models.JobPending,
		})
	}
}

// EnqueueBatch returns a handler for POST /api/v1/scrape/batch.
func EnqueueBatch(q *queue.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.EnqueueBatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errorJSON(c, http.StatusBadRequest, models.ErrCodeInvalidInput, err.Error())
			return
		}
		for _, id := range req.GameIDs {
			if !validGameID(id) {
				errorJSON(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "game id must be a positive integer: "+id)
				return
			}
		}

		batchID, err := q.EnqueueMany(req.GameIDs)
		if err != nil {
			errorJSON(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to enqueue batch")
			return
		}

		c.JSON(http.StatusAccepted, models.EnqueueBatchResponse{
			BatchID: batchID,
			Total:   len(req.GameIDs),
			Status:  models.JobPending,
		})
	}
}

// QueueStatus returns a handler for GET /api/v1/scrape/status.
func QueueStatus(q *queue.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := q.Status()
		if err != nil {
			errorJSON(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to read queue status")
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

// BatchStatus returns a handler for GET /api/v1/scrape/batch/:id.
func BatchStatus(q *queue.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		batch, err := q.BatchStatus(c.Param("id"))
		if err != nil {
			errorJSON(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to read batch status")
			return
		}
		if batch.Total == 0 {
			errorJSON(c, http.StatusNotFound, models.ErrCodeNotFound, "unknown batch id")
			return
		}
		c.JSON(http.StatusOK, batch)
	}
}

// StopQueue returns a handler for POST /api/v1/scrape/stop.
//
// The stop is cooperative: the in-flight job finishes, remaining pending
// jobs are cancelled by the worker.
func StopQueue(q *queue.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		q.Stop()
		c.JSON(http.StatusOK, gin.H{"status": "stopping"})
	}
}

// validGameID accepts non-empty strings of ASCII digits.
func validGameID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
