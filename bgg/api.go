package bgg

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/openshelf/meeplesync/config"
	"github.com/openshelf/meeplesync/models"
)

const defaultAPIBase = "https://boardgamegeek.com"

// APIClient is the authenticated backend. It talks to the structured XML
// API with a bearer credential, strictly serializes requests in time, and
// retries transient responses with bounded backoff.
type APIClient struct {
	cfg     config.RemoteConfig
	baseURL string
	http    *http.Client

	// mu guards the shared request cursor. Holding it across the courtesy
	// sleep is what serializes requests in time; this is a single cursor,
	// not a token bucket.
	mu          sync.Mutex
	lastRequest time.Time
}

// NewAPIClient creates an APIClient against the production endpoint.
func NewAPIClient(cfg config.RemoteConfig) *APIClient {
	return &APIClient{
		cfg:     cfg,
		baseURL: defaultAPIBase,
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

// waitTurn blocks until the minimum inter-request interval has elapsed
// since the previous request, then claims the cursor.
func (c *APIClient) waitTurn(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastRequest.IsZero() {
		if wait := c.cfg.MinRequestInterval - time.Since(c.lastRequest); wait > 0 {
			if err := sleepCtx(ctx, wait); err != nil {
				return err
			}
		}
	}
	c.lastRequest = time.Now()
	return nil
}

// get issues one rate-limited GET and handles the remote retry protocol:
// 202 means "request accepted, data being prepared" and is retried after a
// fixed delay; 5xx is retried with exponential backoff; any other non-200
// is a permanent client-side error and yields (nil, nil) with no retry.
func (c *APIClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	accepted := 0
	serverErrs := 0

	for {
		if err := c.waitTurn(ctx); err != nil {
			return nil, err
		}

		reqURL := c.baseURL + path
		if len(query) > 0 {
			reqURL += "?" + query.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("bgg api: build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
		req.Header.Set("Accept", "application/xml")

		resp, err := c.http.Do(req)
		if err != nil {
			// Transport failures get the same treatment as 5xx.
			serverErrs++
			if serverErrs > c.cfg.ServerErrorAttempts {
				return nil, fmt.Errorf("bgg api: request failed after %d attempts: %w", serverErrs, err)
			}
			if err := sleepCtx(ctx, backoffDelay(c.cfg.ServerErrorBase, serverErrs)); err != nil {
				return nil, err
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			body, readErr := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
			resp.Body.Close()
			if readErr != nil {
				return nil, fmt.Errorf("bgg api: read body: %w", readErr)
			}
			return body, nil

		case resp.StatusCode == http.StatusAccepted:
			resp.Body.Close()
			accepted++
			if accepted > c.cfg.Accepted202Attempts {
				return nil, fmt.Errorf("bgg api: data not ready after %d attempts", accepted)
			}
			slog.Debug("remote preparing data, retrying", "path", path, "attempt", accepted)
			if err := sleepCtx(ctx, c.cfg.Accepted202Delay); err != nil {
				return nil, err
			}

		case resp.StatusCode >= 500:
			resp.Body.Close()
			serverErrs++
			if serverErrs > c.cfg.ServerErrorAttempts {
				return nil, fmt.Errorf("bgg api: server error %d after %d attempts", resp.StatusCode, serverErrs)
			}
			slog.Warn("remote server error, backing off", "path", path, "status", resp.StatusCode, "attempt", serverErrs)
			if err := sleepCtx(ctx, backoffDelay(c.cfg.ServerErrorBase, serverErrs)); err != nil {
				return nil, err
			}

		default:
			resp.Body.Close()
			slog.Warn("remote rejected request", "path", path, "status", resp.StatusCode)
			return nil, nil
		}
	}
}

// GetGameDetails fetches one game's normalized detail record.
func (c *APIClient) GetGameDetails(ctx context.Context, id string) (*models.GameDetails, error) {
	details, err := c.GetGamesDetails(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, nil
	}
	return &details[0], nil
}

// GetGamesDetails fetches detail records for many ids, chunked to the remote
// cap. Chunks are issued sequentially, each under the shared rate cursor;
// a failed chunk contributes zero items. The concatenated result preserves
// the relative order of input ids present in the response.
func (c *APIClient) GetGamesDetails(ctx context.Context, ids []string) ([]models.GameDetails, error) {
	var out []models.GameDetails

	for _, chunk := range chunkIDs(ids, c.cfg.ChunkSize) {
		query := url.Values{
			"id":    {strings.Join(chunk, ",")},
			"stats": {"1"},
		}
		body, err := c.get(ctx, "/xmlapi2/thing", query)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			slog.Warn("detail chunk failed", "ids", strings.Join(chunk, ","), "error", err)
			continue
		}
		if body == nil {
			continue
		}

		byID := make(map[string]models.GameDetails)
		for _, d := range parseThings(body) {
			byID[d.ID] = d
		}
		for _, id := range chunk {
			if d, ok := byID[id]; ok {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

// GetCollection fetches a user's owned-collection listing. The remote
// answers 202 while it builds the export; get handles the retry.
func (c *APIClient) GetCollection(ctx context.Context, username string) ([]models.CollectionItem, error) {
	query := url.Values{
		"username": {username},
		"own":      {"1"},
	}
	body, err := c.get(ctx, "/xmlapi2/collection", query)
	if err != nil || body == nil {
		return nil, err
	}
	return parseCollection(body), nil
}

// GetGalleryImages returns up to limit image URLs for one game: the
// canonical box art first, then version/edition images.
func (c *APIClient) GetGalleryImages(ctx context.Context, id string, limit int) ([]string, error) {
	query := url.Values{
		"id":       {id},
		"versions": {"1"},
	}
	body, err := c.get(ctx, "/xmlapi2/thing", query)
	if err != nil || body == nil {
		return nil, err
	}
	return parseVersionImages(body, limit), nil
}

// Search runs a free-text search across games and expansions.
func (c *APIClient) Search(ctx context.Context, queryText string) ([]models.SearchResult, error) {
	query := url.Values{
		"query": {queryText},
		"type":  {"boardgame,boardgameexpansion"},
	}
	body, err := c.get(ctx, "/xmlapi2/search", query)
	if err != nil || body == nil {
		return nil, err
	}
	return parseSearch(body), nil
}

// GetHotGames fetches the global hot list.
func (c *APIClient) GetHotGames(ctx context.Context) ([]models.HotItem, error) {
	query := url.Values{"type": {"boardgame"}}
	body, err := c.get(ctx, "/xmlapi2/hot", query)
	if err != nil || body == nil {
		return nil, err
	}
	return parseHot(body), nil
}

// chunkIDs splits ids into groups of at most size.
func chunkIDs(ids []string, size int) [][]string {
	if size <= 0 {
		size = 20
	}
	var chunks [][]string
	for len(ids) > 0 {
		n := size
		if len(ids) < n {
			n = len(ids)
		}
		chunks = append(chunks, ids[:n])
		ids = ids[n:]
	}
	return chunks
}

// backoffDelay doubles the base delay per attempt: base, 2*base, 4*base...
func backoffDelay(base time.Duration, attempt int) time.Duration {
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}

// sleepCtx sleeps for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
