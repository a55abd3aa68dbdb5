package bgg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/openshelf/meeplesync/config"
	"github.com/openshelf/meeplesync/models"
)

const (
	defaultSiteBase = "https://boardgamegeek.com"
	defaultAPIHost  = "https://api.geekdo.com"
)

// ScrapeClient is the unauthenticated fallback backend. It reads the web
// front end's internal JSON endpoints where they exist, and drives a
// headless browser for data only present in rendered pages (box-art
// gallery, full owned-collection listing). It sends no credential.
type ScrapeClient struct {
	cfg      config.RemoteConfig
	http     *http.Client
	browser  *browser
	siteBase string
	apiBase  string
}

// NewScrapeClient creates a ScrapeClient. The browser is launched lazily,
// per call, and closed before the call returns.
func NewScrapeClient(remoteCfg config.RemoteConfig, browserCfg config.BrowserConfig) *ScrapeClient {
	return &ScrapeClient{
		cfg:      remoteCfg,
		http:     newBrowserlikeClient(remoteCfg.HTTPTimeout),
		browser:  newBrowser(browserCfg),
		siteBase: defaultSiteBase,
		apiBase:  defaultAPIHost,
	}
}

// getJSON fetches one internal endpoint and decodes into v. A non-200
// response is a permanent client-side error: logged, ok=false, no retry.
func (c *ScrapeClient) getJSON(ctx context.Context, rawURL string, v any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false, fmt.Errorf("bgg scrape: build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("bgg scrape: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("internal endpoint rejected request", "url", rawURL, "status", resp.StatusCode)
		return false, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return false, fmt.Errorf("bgg scrape: read body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return false, fmt.Errorf("bgg scrape: decode: %w", err)
	}
	return true, nil
}

// geekItem is the wire shape of the internal item endpoint. Numbers arrive
// as strings; repeatable link fields arrive as bare object or list and are
// normalized through asList.
type geekItem struct {
	ObjectID    string                     `json:"objectid"`
	Name        string                     `json:"name"`
	Year        string                     `json:"yearpublished"`
	Description string                     `json:"description"`
	MinPlayers  string                     `json:"minplayers"`
	MaxPlayers  string                     `json:"maxplayers"`
	MinPlaytime string                     `json:"minplaytime"`
	MaxPlaytime string                     `json:"maxplaytime"`
	MinAge      string                     `json:"minage"`
	Subtype     string                     `json:"subtype"`
	ImageURL    string                     `json:"imageurl"`
	Images      map[string]json.RawMessage `json:"images"`
	Links       map[string]json.RawMessage `json:"links"`
	Stats       struct {
		Average string `json:"average"`
	} `json:"stats"`
}

type geekLink struct {
	ObjectID string `json:"objectid"`
	Name     string `json:"name"`
}

// Link groups on the internal endpoint. The expansion relationship is
// directional: expandsboardgame points from an expansion at its base games,
// boardgameexpansion points from a base game at its expansions.
const (
	geekLinkCategory  = "boardgamecategory"
	geekLinkMechanic  = "boardgamemechanic"
	geekLinkBaseGames = "expandsboardgame"
	geekLinkExpansion = "boardgameexpansion"
)

// GetGameDetails fetches one game from the internal item endpoint.
func (c *ScrapeClient) GetGameDetails(ctx context.Context, id string) (*models.GameDetails, error) {
	endpoint := fmt.Sprintf("%s/api/geekitems?objectid=%s&objecttype=thing&nosession=1", c.siteBase, url.QueryEscape(id))

	var payload struct {
		Item *geekItem `json:"item"`
	}
	ok, err := c.getJSON(ctx, endpoint, &payload)
	if err != nil || !ok {
		return nil, err
	}
	if payload.Item == nil || payload.Item.ObjectID == "" || payload.Item.Name == "" {
		slog.Warn("dropping malformed item payload", "id", id)
		return nil, nil
	}

	item := payload.Item
	d := &models.GameDetails{
		ID:            item.ObjectID,
		Name:          item.Name,
		YearPublished: yearPtr(item.Year),
		Description:   normalizeDescription(item.Description),
		Image:         item.ImageURL,
		Thumbnail:     pickThumbnail(item.Images),
		AverageRating: ratingPtr(item.Stats.Average),
		MinPlayers:    intPtr(item.MinPlayers),
		MaxPlayers:    intPtr(item.MaxPlayers),
		MinPlaytime:   intPtr(item.MinPlaytime),
		MaxPlaytime:   intPtr(item.MaxPlaytime),
		MinAge:        intPtr(item.MinAge),
		IsExpansion:   item.Subtype == typeExpansion,
	}

	for _, l := range decodeList[geekLink](item.Links[geekLinkCategory], geekLinkCategory) {
		d.Categories = append(d.Categories, l.Name)
	}
	for _, l := range decodeList[geekLink](item.Links[geekLinkMechanic], geekLinkMechanic) {
		d.Mechanics = append(d.Mechanics, l.Name)
	}
	for _, l := range decodeList[geekLink](item.Links[geekLinkBaseGames], geekLinkBaseGames) {
		d.BaseGameIDs = append(d.BaseGameIDs, l.ObjectID)
	}
	for _, l := range decodeList[geekLink](item.Links[geekLinkExpansion], geekLinkExpansion) {
		d.ExpansionIDs = append(d.ExpansionIDs, l.ObjectID)
	}

	return d, nil
}

// GetGamesDetails enriches ids one at a time with a courtesy pause between
// items. A failed item contributes nothing; the rest continue.
func (c *ScrapeClient) GetGamesDetails(ctx context.Context, ids []string) ([]models.GameDetails, error) {
	var out []models.GameDetails
	for i, id := range ids {
		if i > 0 {
			if err := sleepCtx(ctx, c.cfg.ItemPause); err != nil {
				return out, err
			}
		}
		d, err := c.GetGameDetails(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			slog.Warn("item enrichment failed", "id", id, "error", err)
			continue
		}
		if d != nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

// GetCollection has no JSON endpoint; the owned-collection listing only
// exists as a rendered page, so it goes through the browser.
func (c *ScrapeClient) GetCollection(ctx context.Context, username string) ([]models.CollectionItem, error) {
	html, err := c.browser.renderPage(ctx, c.collectionURL(username))
	if err != nil {
		return nil, err
	}
	return extractCollection(html)
}

// collectionURL builds the owned-collection page address. No subtype filter:
// the listing must include expansions, matching what own=1 yields elsewhere.
func (c *ScrapeClient) collectionURL(username string) string {
	return fmt.Sprintf("%s/collection/user/%s?own=1", c.siteBase, url.PathEscape(username))
}

// GetGalleryImages scrapes the game's image gallery page, falling back to
// the canonical box art on the game page itself.
func (c *ScrapeClient) GetGalleryImages(ctx context.Context, id string, limit int) ([]string, error) {
	pageURL := fmt.Sprintf("%s/boardgame/%s/images", c.siteBase, url.PathEscape(id))
	html, err := c.browser.renderPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	urls, err := extractGalleryImages(html, limit)
	if err != nil {
		return nil, err
	}
	if len(urls) > 0 {
		return urls, nil
	}

	gamePage := fmt.Sprintf("%s/boardgame/%s", c.siteBase, url.PathEscape(id))
	html, err = c.browser.renderPage(ctx, gamePage)
	if err != nil {
		return nil, err
	}
	if canonical := extractCanonicalImage(html); canonical != "" {
		return []string{canonical}, nil
	}
	return nil, nil
}

// searchItem is the wire shape of the site search endpoint.
type searchItem struct {
	ObjectID string                     `json:"objectid"`
	Name     string                     `json:"name"`
	Year     string                     `json:"yearpublished"`
	Subtype  string                     `json:"subtype"`
	Images   map[string]json.RawMessage `json:"images"`
}

// Search uses the site's typeahead search endpoint.
func (c *ScrapeClient) Search(ctx context.Context, queryText string) ([]models.SearchResult, error) {
	endpoint := fmt.Sprintf("%s/search/boardgame?q=%s&showcount=20&nosession=1", c.siteBase, url.QueryEscape(queryText))

	var payload struct {
		Items []searchItem `json:"items"`
	}
	ok, err := c.getJSON(ctx, endpoint, &payload)
	if err != nil || !ok {
		return nil, err
	}

	out := make([]models.SearchResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ObjectID == "" || item.Name == "" {
			continue
		}
		out = append(out, models.SearchResult{
			ID:            item.ObjectID,
			Name:          item.Name,
			YearPublished: yearPtr(item.Year),
			Thumbnail:     pickThumbnail(item.Images),
			IsExpansion:   item.Subtype == typeExpansion,
		})
	}
	return out, nil
}

// hotJSONItem is the wire shape of the hotness endpoint.
type hotJSONItem struct {
	ObjectID string `json:"objectid"`
	Name     string `json:"name"`
	Year     string `json:"yearpublished"`
	ImageURL string `json:"imageurl"`
}

// GetHotGames uses the public hotness endpoint.
func (c *ScrapeClient) GetHotGames(ctx context.Context) ([]models.HotItem, error) {
	endpoint := c.apiBase + "/api/hotness?geeksite=boardgame&objecttype=thing&showcount=50"

	var payload struct {
		Items []hotJSONItem `json:"items"`
	}
	ok, err := c.getJSON(ctx, endpoint, &payload)
	if err != nil || !ok {
		return nil, err
	}

	out := make([]models.HotItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ObjectID == "" || item.Name == "" {
			continue
		}
		out = append(out, models.HotItem{
			ID:            item.ObjectID,
			Name:          item.Name,
			YearPublished: yearPtr(item.Year),
			Thumbnail:     item.ImageURL,
		})
	}
	return out, nil
}
