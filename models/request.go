package models

// ErrorResponse is the uniform error envelope for API responses.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}

// EnqueueRequest is the payload for POST /api/v1/scrape/:id.
type EnqueueRequest struct {
	// Name is the display name shown in queue status while the job waits.
	// Optional; the refresh itself is keyed by the path id.
	Name string `json:"name,omitempty"`
}

// EnqueueBatchRequest is the payload for POST /api/v1/scrape/batch.
type EnqueueBatchRequest struct {
	// GameIDs is the list of remote ids to refresh. Required.
	GameIDs []string `json:"gameIds" binding:"required,min=1,max=500"`
}

// EnqueueResponse is the immediate response for a single enqueue.
type EnqueueResponse struct {
	JobID  int64  `json:"jobId"`
	GameID string `json:"gameId"`
	Status string `json:"status"`
}

// EnqueueBatchResponse is the immediate response for a batch enqueue.
type EnqueueBatchResponse struct {
	BatchID string `json:"batchId"`
	Total   int    `json:"total"`
	Status  string `json:"status"`
}
