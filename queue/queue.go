// Package queue decouples "a game's details should be refreshed" from when
// that refresh happens. A single worker drains jobs in enqueue order, so the
// remote service never sees concurrent requests from this subsystem.
package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/meeplesync/bgg"
	"github.com/openshelf/meeplesync/config"
	"github.com/openshelf/meeplesync/models"
	"github.com/openshelf/meeplesync/store"
)

// galleryLimit bounds how many gallery images one refresh collects.
const galleryLimit = 10

// pollInterval is how often the idle worker re-checks for pending jobs in
// case a wake signal was missed.
const pollInterval = 2 * time.Second

// Notifier receives queue lifecycle events (batch completion).
type Notifier interface {
	BatchCompleted(batch models.BatchStatus)
}

// ClientSource yields the active remote client. Resolved per job so a
// backend switch takes effect without restarting the worker.
type ClientSource interface {
	Client() bgg.Client
}

// Queue is the durable scrape job queue. All mutation of worker state
// happens inside the single worker goroutine; Enqueue and Stop only write
// job rows and flags.
type Queue struct {
	store    *store.Store
	selector ClientSource
	cfg      config.QueueConfig
	notifier Notifier

	wake chan struct{}
	done chan struct{}

	mu           sync.Mutex
	isProcessing bool
	isStopping   bool
	currentJob   *models.ScrapeJob
	lastBatchID  string
}

// New creates a Queue and recovers jobs orphaned by a prior run: anything
// still marked processing is demoted to pending so it is retried, not lost.
func New(st *store.Store, selector ClientSource, cfg config.QueueConfig, notifier Notifier) (*Queue, error) {
	recovered, err := st.RecoverProcessingJobs()
	if err != nil {
		return nil, err
	}
	if recovered > 0 {
		slog.Info("recovered interrupted jobs", "count", recovered)
	}

	return &Queue{
		store:    st,
		selector: selector,
		cfg:      cfg,
		notifier: notifier,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the worker loop and the retention sweep. Cancel ctx to
// shut down; Wait blocks until the worker has exited.
func (q *Queue) Start(ctx context.Context) {
	go q.run(ctx)
	go q.cleanupLoop(ctx)
}

// Wait blocks until the worker loop has exited.
func (q *Queue) Wait() {
	<-q.done
}

// Enqueue adds one refresh job and returns its id.
func (q *Queue) Enqueue(gameID, name string) (int64, error) {
	job := models.ScrapeJob{
		GameID:     gameID,
		GameName:   name,
		Status:     models.JobPending,
		EnqueuedAt: time.Now(),
	}
	if err := q.store.CreateJob(&job); err != nil {
		return 0, err
	}
	q.signal()
	return job.ID, nil
}

// EnqueueMany adds one job per id under a fresh batch handle. Batch
// counters are a filtered view over the same job records the global
// counters aggregate.
func (q *Queue) EnqueueMany(gameIDs []string) (string, error) {
	batchID := uuid.NewString()
	now := time.Now()
	jobs := make([]models.ScrapeJob, 0, len(gameIDs))
	for _, id := range gameIDs {
		jobs = append(jobs, models.ScrapeJob{
			GameID:     id,
			Status:     models.JobPending,
			BatchID:    batchID,
			EnqueuedAt: now,
		})
	}
	if err := q.store.CreateJobs(jobs); err != nil {
		return "", err
	}

	q.mu.Lock()
	q.lastBatchID = batchID
	q.mu.Unlock()

	q.signal()
	return batchID, nil
}

// Stop requests a cooperative stop: the flag is observed between jobs, the
// in-flight remote call is never interrupted, and jobs still pending when
// the flag is seen are cancelled rather than silently dropped.
func (q *Queue) Stop() {
	q.mu.Lock()
	q.isStopping = true
	q.mu.Unlock()
	q.signal()
}

// Resume clears the stopping flag so freshly enqueued jobs run again.
func (q *Queue) Resume() {
	q.mu.Lock()
	q.isStopping = false
	q.mu.Unlock()
	q.signal()
}

// Status reports the queue's observable state.
func (q *Queue) Status() (models.QueueStatus, error) {
	counts, err := q.store.CountJobs("")
	if err != nil {
		return models.QueueStatus{}, err
	}
	recent, err := q.store.RecentJobs(q.cfg.RecentWindow)
	if err != nil {
		return models.QueueStatus{}, err
	}

	q.mu.Lock()
	status := models.QueueStatus{
		IsProcessing:   q.isProcessing,
		IsStopping:     q.isStopping,
		CurrentJob:     q.currentJob,
		PendingCount:   counts.Pending,
		CompletedCount: counts.Completed,
		FailedCount:    counts.Failed,
		CancelledCount: counts.Cancelled,
		RecentJobs:     recent,
	}
	batchID := q.lastBatchID
	q.mu.Unlock()

	if batchID != "" {
		batch, err := q.BatchStatus(batchID)
		if err != nil {
			return models.QueueStatus{}, err
		}
		if batch.Total > 0 {
			status.CurrentBatch = batch
		}
	}
	return status, nil
}

// BatchStatus derives one batch's counters from its job records.
func (q *Queue) BatchStatus(batchID string) (*models.BatchStatus, error) {
	counts, err := q.store.CountJobs(batchID)
	if err != nil {
		return nil, err
	}
	return &models.BatchStatus{
		ID:        batchID,
		Total:     counts.Total(),
		Completed: counts.Completed,
		Failed:    counts.Failed,
		Cancelled: counts.Cancelled,
		Pending:   counts.Pending + counts.Processing,
	}, nil
}

// signal nudges the worker without blocking; one pending wake is enough.
func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) stopping() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.isStopping
}

// run is the worker loop: one job in flight at all times, by construction.
func (q *Queue) run(ctx context.Context) {
	defer close(q.done)

	for {
		if ctx.Err() != nil {
			return
		}

		if q.stopping() {
			n, err := q.store.CancelPendingJobs()
			if err != nil {
				slog.Error("failed to cancel pending jobs", "error", err)
			} else if n > 0 {
				slog.Info("cancelled pending jobs on stop", "count", n)
			}
			q.setIdle()
			if !q.waitForWork(ctx) {
				return
			}
			continue
		}

		job, err := q.store.NextPendingJob()
		if err != nil {
			slog.Error("failed to fetch next job", "error", err)
			if !q.waitForWork(ctx) {
				return
			}
			continue
		}
		if job == nil {
			q.setIdle()
			if !q.waitForWork(ctx) {
				return
			}
			continue
		}

		q.process(ctx, job)
	}
}

// waitForWork blocks until a wake signal, the poll tick, or shutdown.
// Returns false on shutdown.
func (q *Queue) waitForWork(ctx context.Context) bool {
	t := time.NewTimer(pollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-q.wake:
		return true
	case <-t.C:
		return true
	}
}

func (q *Queue) setIdle() {
	q.mu.Lock()
	q.isProcessing = false
	q.currentJob = nil
	q.mu.Unlock()
}

// process runs one job to a terminal state. A failure marks only this job
// failed; sibling jobs and the loop itself continue.
func (q *Queue) process(ctx context.Context, job *models.ScrapeJob) {
	if err := q.store.SetJobStatus(job.ID, models.JobProcessing, ""); err != nil {
		slog.Error("failed to mark job processing", "job", job.ID, "error", err)
		return
	}
	job.Status = models.JobProcessing

	q.mu.Lock()
	q.isProcessing = true
	q.currentJob = job
	q.mu.Unlock()

	slog.Info("refreshing game", "job", job.ID, "gameId", job.GameID, "name", job.GameName)

	client := q.selector.Client()
	details, err := client.GetGameDetails(ctx, job.GameID)
	switch {
	case err != nil:
		q.finish(job, models.JobFailed, err.Error())
		return
	case details == nil:
		q.finish(job, models.JobFailed, "remote returned no details")
		return
	}

	game := models.GameFromDetails(details)
	images, imgErr := client.GetGalleryImages(ctx, job.GameID, galleryLimit)
	if imgErr != nil {
		// Box art is a nice-to-have; the job still completes.
		slog.Warn("gallery fetch failed", "job", job.ID, "gameId", job.GameID, "error", imgErr)
	} else if game.Image == "" && len(images) > 0 {
		game.Image = images[0]
	}

	if err := q.store.UpsertGame(game); err != nil {
		q.finish(job, models.JobFailed, "persist: "+err.Error())
		return
	}
	q.finish(job, models.JobCompleted, "")
}

// finish records the terminal state and fires batch notification when this
// was the batch's last unfinished job.
func (q *Queue) finish(job *models.ScrapeJob, status, errMsg string) {
	if err := q.store.SetJobStatus(job.ID, status, errMsg); err != nil {
		slog.Error("failed to finalize job", "job", job.ID, "error", err)
		return
	}
	if status == models.JobFailed {
		slog.Warn("job failed", "job", job.ID, "gameId", job.GameID, "error", errMsg)
	} else {
		slog.Info("job finished", "job", job.ID, "gameId", job.GameID, "status", status)
	}

	if job.BatchID == "" || q.notifier == nil {
		return
	}
	batch, err := q.BatchStatus(job.BatchID)
	if err != nil {
		slog.Error("failed to derive batch status", "batch", job.BatchID, "error", err)
		return
	}
	if batch.Pending == 0 {
		q.notifier.BatchCompleted(*batch)
	}
}

// cleanupLoop purges terminal jobs older than the retention window.
func (q *Queue) cleanupLoop(ctx context.Context) {
	every := q.cfg.CleanupEvery
	if every <= 0 {
		every = time.Hour
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-q.cfg.Retention)
			n, err := q.store.PurgeTerminalJobs(cutoff)
			if err != nil {
				slog.Error("job cleanup failed", "error", err)
			} else if n > 0 {
				slog.Info("purged old jobs", "count", n)
			}
		}
	}
}
