package store

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/meeplesync/models"
)

// CreateJob persists a new job record.
func (s *Store) CreateJob(job *models.ScrapeJob) error {
	return s.db.Create(job).Error
}

// CreateJobs persists a batch of job records in one statement.
func (s *Store) CreateJobs(jobs []models.ScrapeJob) error {
	if len(jobs) == 0 {
		return nil
	}
	return s.db.Create(&jobs).Error
}

// SetJobStatus transitions one job, optionally capturing an error message.
func (s *Store) SetJobStatus(id int64, status, errMsg string) error {
	return s.db.Model(&models.ScrapeJob{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "error": errMsg}).Error
}

// NextPendingJob returns the oldest pending job, or nil when the queue is
// drained. FIFO order is enqueue time, id as tiebreaker.
func (s *Store) NextPendingJob() (*models.ScrapeJob, error) {
	var job models.ScrapeJob
	err := s.db.Where("status = ?", models.JobPending).
		Order("id").
		First(&job).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// CancelPendingJobs marks every pending job cancelled and returns how many
// were affected.
func (s *Store) CancelPendingJobs() (int64, error) {
	res := s.db.Model(&models.ScrapeJob{}).
		Where("status = ?", models.JobPending).
		Update("status", models.JobCancelled)
	return res.RowsAffected, res.Error
}

// RecoverProcessingJobs demotes jobs left processing by a prior run back to
// pending so they are retried rather than lost. Returns how many were
// recovered.
func (s *Store) RecoverProcessingJobs() (int64, error) {
	res := s.db.Model(&models.ScrapeJob{}).
		Where("status = ?", models.JobProcessing).
		Update("status", models.JobPending)
	return res.RowsAffected, res.Error
}

// CountJobs tallies jobs per status, optionally scoped to one batch.
// Batch counts are a filtered view over the same records as the global ones.
func (s *Store) CountJobs(batchID string) (models.JobCounts, error) {
	var rows []struct {
		Status string
		N      int64
	}
	q := s.db.Model(&models.ScrapeJob{}).Select("status, count(*) as n").Group("status")
	if batchID != "" {
		q = q.Where("batch_id = ?", batchID)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return models.JobCounts{}, err
	}

	var c models.JobCounts
	for _, r := range rows {
		switch r.Status {
		case models.JobPending:
			c.Pending = r.N
		case models.JobProcessing:
			c.Processing = r.N
		case models.JobCompleted:
			c.Completed = r.N
		case models.JobFailed:
			c.Failed = r.N
		case models.JobCancelled:
			c.Cancelled = r.N
		}
	}
	return c, nil
}

// RecentJobs returns the most recently updated jobs, in enqueue order.
func (s *Store) RecentJobs(limit int) ([]models.ScrapeJob, error) {
	var jobs []models.ScrapeJob
	err := s.db.Order("updated_at desc, id desc").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	// The window is selected newest-first; callers read it in enqueue order.
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs, nil
}

// PurgeTerminalJobs deletes completed/failed/cancelled jobs enqueued before
// cutoff, bounding unbounded history growth.
func (s *Store) PurgeTerminalJobs(cutoff time.Time) (int64, error) {
	res := s.db.Where("status IN ?", []string{
		models.JobCompleted, models.JobFailed, models.JobCancelled,
	}).Where("enqueued_at < ?", cutoff).
		Delete(&models.ScrapeJob{})
	return res.RowsAffected, res.Error
}
