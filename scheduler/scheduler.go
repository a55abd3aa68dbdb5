// Package scheduler keeps the local catalog aligned with the user's remote
// collection. A cron tick checks whether a full sync is due; full syncs
// never overlap, and stale catalog entries are refreshed through the job
// queue rather than inline.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/openshelf/meeplesync/bgg"
	"github.com/openshelf/meeplesync/config"
	"github.com/openshelf/meeplesync/models"
	"github.com/openshelf/meeplesync/queue"
	"github.com/openshelf/meeplesync/store"
)

// dueCheckSpec is how often the scheduler re-evaluates due-ness. The sync
// interval itself comes from config; the tick only has to be finer than it.
const dueCheckSpec = "@every 1m"

// Notifier receives sync lifecycle events.
type Notifier interface {
	SyncCompleted(result models.SyncResult)
}

// Scheduler runs periodic full-collection syncs.
type Scheduler struct {
	store    *store.Store
	selector queue.ClientSource
	queue    *queue.Queue
	cfg      config.SyncConfig
	username string
	notifier Notifier

	cron *cron.Cron

	// baseCtx is the process lifetime context, captured at Start. Syncs
	// run on it rather than on any request context so an HTTP-triggered
	// sync outlives its request.
	baseCtx context.Context

	mu        sync.Mutex
	isSyncing bool
}

// New creates a Scheduler. The username identifies whose remote collection
// is mirrored; an empty username disables collection syncs entirely.
func New(st *store.Store, selector queue.ClientSource, q *queue.Queue, cfg config.SyncConfig, username string, notifier Notifier) *Scheduler {
	return &Scheduler{
		store:    st,
		selector: selector,
		queue:    q,
		cfg:      cfg,
		username: username,
		notifier: notifier,
		cron:     cron.New(),
	}
}

// Start launches the due-check cron and an initial check after the warmup
// delay. The warmup pause keeps a crash-looping process from hammering the
// remote service on every restart.
func (s *Scheduler) Start(ctx context.Context) error {
	s.baseCtx = ctx
	if s.username == "" {
		slog.Info("collection sync disabled, no username configured")
		return nil
	}

	if _, err := s.cron.AddFunc(dueCheckSpec, func() { s.runIfDue(ctx) }); err != nil {
		return err
	}
	s.cron.Start()

	go func() {
		t := time.NewTimer(s.cfg.WarmupDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
			s.runIfDue(ctx)
		}
	}()
	return nil
}

// Stop halts the due-check cron and waits for a running tick to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Status reports whether a sync is running and when the next one is due.
func (s *Scheduler) Status() (models.SyncStatus, error) {
	last, err := s.store.LastSyncedAt()
	if err != nil {
		return models.SyncStatus{}, err
	}

	s.mu.Lock()
	syncing := s.isSyncing
	s.mu.Unlock()

	status := models.SyncStatus{
		IsSyncing:    syncing,
		LastSyncedAt: last,
	}
	if last != nil {
		due := last.Add(s.cfg.Interval)
		status.NextDueAt = &due
	}
	return status, nil
}

// TriggerSync starts a sync now regardless of due-ness. It returns
// models.ErrCodeSyncInFlight when one is already running; two syncs never
// overlap no matter how they were started.
func (s *Scheduler) TriggerSync() error {
	if !s.acquire() {
		return models.NewSyncError(models.ErrCodeSyncInFlight, "a sync is already running", nil)
	}
	ctx := s.baseCtx
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		defer s.release()
		s.runFullSync(ctx)
	}()
	return nil
}

// runIfDue runs a sync when the last successful one is older than the
// configured interval. When a sync is already in flight the tick is simply
// dropped; the next tick re-evaluates.
func (s *Scheduler) runIfDue(ctx context.Context) {
	last, err := s.store.LastSyncedAt()
	if err != nil {
		slog.Error("failed to read last sync time", "error", err)
		return
	}
	if last != nil && time.Since(*last) < s.cfg.Interval {
		return
	}
	if !s.acquire() {
		return
	}
	defer s.release()
	s.runFullSync(ctx)
}

func (s *Scheduler) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isSyncing {
		return false
	}
	s.isSyncing = true
	return true
}

func (s *Scheduler) release() {
	s.mu.Lock()
	s.isSyncing = false
	s.mu.Unlock()
}

// runFullSync mirrors the remote collection into the catalog, retires
// entries that left the collection, and queues detail refreshes for stale
// entries. The last-synced marker only advances on success, so a failed
// sync is retried at the next due check.
func (s *Scheduler) runFullSync(ctx context.Context) {
	started := time.Now()
	slog.Info("starting collection sync", "username", s.username)

	client := s.selector.Client()
	items, err := client.GetCollection(ctx, s.username)
	if err != nil {
		slog.Error("collection fetch failed", "username", s.username, "error", err)
		return
	}
	if len(items) == 0 {
		// An empty listing is indistinguishable from a remote hiccup.
		// Keeping the catalog untouched is the safe reading.
		slog.Warn("collection came back empty, skipping sync", "username", s.username)
		return
	}

	keep := make([]string, 0, len(items))
	for _, item := range items {
		if err := s.store.EnsureGame(item); err != nil {
			slog.Error("failed to record collection item", "gameId", item.ID, "error", err)
			continue
		}
		keep = append(keep, item.ID)
	}
	if err := s.store.MarkNotOwned(keep); err != nil {
		slog.Error("failed to retire departed games", "error", err)
		return
	}

	cutoff := time.Now().Add(-s.cfg.StaleAfter)
	stale, err := s.store.StaleGameIDs(cutoff)
	if err != nil {
		slog.Error("failed to find stale games", "error", err)
		return
	}

	result := models.SyncResult{
		Username:  s.username,
		Owned:     len(items),
		Refreshed: len(stale),
		Duration:  time.Since(started),
	}

	if len(stale) > 0 {
		batchID, err := s.queue.EnqueueMany(stale)
		if err != nil {
			slog.Error("failed to queue stale refreshes", "error", err)
			return
		}
		result.BatchID = batchID
		slog.Info("queued stale game refreshes", "count", len(stale), "batch", batchID)
	}

	if err := s.store.SetLastSyncedAt(time.Now()); err != nil {
		slog.Error("failed to record sync time", "error", err)
		return
	}

	slog.Info("collection sync finished",
		"username", s.username,
		"owned", result.Owned,
		"staleQueued", result.Refreshed,
		"duration", result.Duration.Round(time.Millisecond).String())

	if s.notifier != nil {
		s.notifier.SyncCompleted(result)
	}
}

// ensure the selector satisfies the shared source contract.
var _ queue.ClientSource = (*bgg.Selector)(nil)
