package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// GameDetails is the normalized per-game record returned by every backend.
// Numeric fields are nil when the remote representation is absent or
// non-numeric; 0 is never used as an "unknown" sentinel.
type GameDetails struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	YearPublished *int     `json:"yearPublished"`
	Description   string   `json:"description"`
	Image         string   `json:"image"`
	Thumbnail     string   `json:"thumbnail"`
	AverageRating *float64 `json:"averageRating"`
	MinPlayers    *int     `json:"minPlayers"`
	MaxPlayers    *int     `json:"maxPlayers"`
	MinPlaytime   *int     `json:"minPlaytime"`
	MaxPlaytime   *int     `json:"maxPlaytime"`
	MinAge        *int     `json:"minAge"`
	Categories    []string `json:"categories"`
	Mechanics     []string `json:"mechanics"`
	IsExpansion   bool     `json:"isExpansion"`
	BaseGameIDs   []string `json:"baseGameIds"`
	ExpansionIDs  []string `json:"expansionIds"`
}

// CollectionItem is one entry of a user's owned-collection listing.
// ID is the join key into the local catalog.
type CollectionItem struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	YearPublished *int   `json:"yearPublished"`
	IsExpansion   bool   `json:"isExpansion"`
}

// SearchResult is an ephemeral free-text search hit. Not persisted.
type SearchResult struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	YearPublished *int   `json:"yearPublished"`
	Thumbnail     string `json:"thumbnail,omitempty"`
	IsExpansion   bool   `json:"isExpansion"`
}

// HotItem is an ephemeral hot-list entry. Not persisted.
type HotItem struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	YearPublished *int   `json:"yearPublished"`
	Thumbnail     string `json:"thumbnail,omitempty"`
}

// StringList stores a []string as a JSON column in SQLite.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		if v == "" {
			*l = nil
			return nil
		}
		return json.Unmarshal([]byte(v), l)
	case []byte:
		if len(v) == 0 {
			*l = nil
			return nil
		}
		return json.Unmarshal(v, l)
	default:
		return fmt.Errorf("stringlist: unsupported column type %T", src)
	}
}

// Game is the local catalog row for one remote "thing".
type Game struct {
	ID            string     `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"index" json:"name"`
	YearPublished *int       `json:"yearPublished"`
	Description   string     `json:"description"`
	Image         string     `json:"image"`
	Thumbnail     string     `json:"thumbnail"`
	AverageRating *float64   `json:"averageRating"`
	MinPlayers    *int       `json:"minPlayers"`
	MaxPlayers    *int       `json:"maxPlayers"`
	MinPlaytime   *int       `json:"minPlaytime"`
	MaxPlaytime   *int       `json:"maxPlaytime"`
	MinAge        *int       `json:"minAge"`
	Categories    StringList `gorm:"type:text" json:"categories"`
	Mechanics     StringList `gorm:"type:text" json:"mechanics"`
	IsExpansion   bool       `json:"isExpansion"`
	BaseGameIDs   StringList `gorm:"type:text" json:"baseGameIds"`
	ExpansionIDs  StringList `gorm:"type:text" json:"expansionIds"`
	Owned         bool       `gorm:"index" json:"owned"`
	LastRefreshed *time.Time `json:"lastRefreshed"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// GameFromDetails builds a catalog row from a normalized details record.
func GameFromDetails(d *GameDetails) *Game {
	now := time.Now()
	return &Game{
		ID:            d.ID,
		Name:          d.Name,
		YearPublished: d.YearPublished,
		Description:   d.Description,
		Image:         d.Image,
		Thumbnail:     d.Thumbnail,
		AverageRating: d.AverageRating,
		MinPlayers:    d.MinPlayers,
		MaxPlayers:    d.MaxPlayers,
		MinPlaytime:   d.MinPlaytime,
		MaxPlaytime:   d.MaxPlaytime,
		MinAge:        d.MinAge,
		Categories:    StringList(d.Categories),
		Mechanics:     StringList(d.Mechanics),
		IsExpansion:   d.IsExpansion,
		BaseGameIDs:   StringList(d.BaseGameIDs),
		ExpansionIDs:  StringList(d.ExpansionIDs),
		LastRefreshed: &now,
	}
}
