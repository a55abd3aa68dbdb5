package models

import "time"

// Job lifecycle statuses. Transitions are monotonic:
// pending → processing → {completed | failed | cancelled}.
const (
	JobPending    = "pending"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
	JobCancelled  = "cancelled"
)

// ScrapeJob is one unit of "refresh this game's details" work.
// Jobs persist so pending/processing work survives a restart. The
// auto-increment id doubles as the FIFO ordering key.
type ScrapeJob struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	GameID     string    `gorm:"index" json:"gameId"`
	GameName   string    `json:"gameName"`
	Status     string    `gorm:"index" json:"status"`
	Error      string    `json:"error,omitempty"`
	BatchID    string    `gorm:"index" json:"batchId,omitempty"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// JobCounts is the number of jobs per status over some scope
// (global, or filtered to one batch).
type JobCounts struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
	Cancelled  int64 `json:"cancelled"`
}

// Total returns the number of jobs across all statuses.
func (c JobCounts) Total() int64 {
	return c.Pending + c.Processing + c.Completed + c.Failed + c.Cancelled
}

// BatchStatus is a batch-scoped view derived from the same underlying job
// records as the global counters.
type BatchStatus struct {
	ID        string `json:"id"`
	Total     int64  `json:"total"`
	Completed int64  `json:"completed"`
	Failed    int64  `json:"failed"`
	Cancelled int64  `json:"cancelled"`
	Pending   int64  `json:"pending"`
}

// QueueStatus is the observable state of the scrape job queue.
type QueueStatus struct {
	IsProcessing   bool         `json:"isProcessing"`
	IsStopping     bool         `json:"isStopping"`
	CurrentJob     *ScrapeJob   `json:"currentJob,omitempty"`
	PendingCount   int64        `json:"pendingCount"`
	CompletedCount int64        `json:"completedCount"`
	FailedCount    int64        `json:"failedCount"`
	CancelledCount int64        `json:"cancelledCount"`
	RecentJobs     []ScrapeJob  `json:"recentJobs"`
	CurrentBatch   *BatchStatus `json:"currentBatch,omitempty"`
}

// SyncResult summarizes one finished full-collection sync.
type SyncResult struct {
	Username  string        `json:"username"`
	Owned     int           `json:"owned"`
	Refreshed int           `json:"refreshed"`
	BatchID   string        `json:"batchId,omitempty"`
	Duration  time.Duration `json:"-"`
}

// SyncStatus is the observable state of the sync scheduler.
type SyncStatus struct {
	IsSyncing    bool       `json:"isSyncing"`
	LastSyncedAt *time.Time `json:"lastSyncedAt"`
	NextDueAt    *time.Time `json:"nextDueAt"`
}
