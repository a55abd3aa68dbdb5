package store

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const keyLastSyncedAt = "last_synced_at"

// syncMeta is internal key/value state that must survive restarts.
type syncMeta struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

// LastSyncedAt returns the timestamp of the last successful full sync, or
// nil when no sync has completed yet.
func (s *Store) LastSyncedAt() (*time.Time, error) {
	var meta syncMeta
	err := s.db.First(&meta, "key = ?", keyLastSyncedAt).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, meta.Value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SetLastSyncedAt records the completion time of a successful full sync.
func (s *Store) SetLastSyncedAt(t time.Time) error {
	meta := syncMeta{Key: keyLastSyncedAt, Value: t.Format(time.RFC3339Nano)}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&meta).Error
}
