// Package bgg talks to the remote game-information service. Two backends
// implement the same Client contract: an authenticated structured-API client
// and an unauthenticated JSON/scrape fallback. Callers never see which one
// is active, and never see the wire format.
package bgg

import (
	"context"

	"github.com/openshelf/meeplesync/models"
)

// Client is the capability contract both backends satisfy identically.
//
// Operations return normalized domain objects or empty results. A single
// malformed item is dropped (and logged) rather than failing the whole
// batch. A nil result with a nil error means the remote service had nothing
// usable for the request; errors are reserved for exhausted retries and
// transport failures.
type Client interface {
	// GetGameDetails fetches the normalized detail record for one game.
	GetGameDetails(ctx context.Context, id string) (*models.GameDetails, error)

	// GetGamesDetails fetches detail records for many games, chunked to the
	// remote per-request cap. Results preserve the relative order of input
	// ids present in the response; a failed chunk contributes zero items.
	GetGamesDetails(ctx context.Context, ids []string) ([]models.GameDetails, error)

	// GetCollection fetches a user's full owned-collection listing.
	GetCollection(ctx context.Context, username string) ([]models.CollectionItem, error)

	// GetGalleryImages fetches up to limit image URLs for one game.
	GetGalleryImages(ctx context.Context, id string, limit int) ([]string, error)

	// Search runs a free-text search.
	Search(ctx context.Context, query string) ([]models.SearchResult, error)

	// GetHotGames fetches the global hot list.
	GetHotGames(ctx context.Context) ([]models.HotItem, error)
}
