package store

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openshelf/meeplesync/models"
)

// UpsertGame inserts or replaces a catalog row keyed by remote id.
func (s *Store) UpsertGame(g *models.Game) error {
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "year_published", "description", "image", "thumbnail",
			"average_rating", "min_players", "max_players", "min_playtime",
			"max_playtime", "min_age", "categories", "mechanics",
			"is_expansion", "base_game_ids", "expansion_ids",
			"last_refreshed", "updated_at",
		}),
	}).Create(g).Error
}

// GetGame returns one catalog row, or nil when the id is unknown.
func (s *Store) GetGame(id string) (*models.Game, error) {
	var g models.Game
	err := s.db.First(&g, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

// ListGames returns the catalog ordered by name.
func (s *Store) ListGames(ownedOnly bool) ([]models.Game, error) {
	var games []models.Game
	q := s.db.Order("name")
	if ownedOnly {
		q = q.Where("owned = ?", true)
	}
	if err := q.Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

// EnsureGame creates a minimal catalog row for a collection item if none
// exists, and marks it owned. Existing rows keep their detail fields.
func (s *Store) EnsureGame(item models.CollectionItem) error {
	g := models.Game{
		ID:            item.ID,
		Name:          item.Name,
		YearPublished: item.YearPublished,
		IsExpansion:   item.IsExpansion,
		Owned:         true,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"owned", "updated_at"}),
	}).Create(&g).Error
}

// MarkNotOwned clears the owned flag on every catalog row whose id is not in
// keep. Rows themselves are retained so detail data is not lost.
func (s *Store) MarkNotOwned(keep []string) error {
	q := s.db.Model(&models.Game{}).Where("owned = ?", true)
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}
	return q.Update("owned", false).Error
}

// StaleGameIDs returns owned ids never refreshed or refreshed before cutoff,
// oldest first.
func (s *Store) StaleGameIDs(cutoff time.Time) ([]string, error) {
	var ids []string
	err := s.db.Model(&models.Game{}).
		Where("owned = ?", true).
		Where("last_refreshed IS NULL OR last_refreshed < ?", cutoff).
		Order("last_refreshed").
		Pluck("id", &ids).Error
	return ids, err
}
