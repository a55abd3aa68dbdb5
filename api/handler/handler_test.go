package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/meeplesync/bgg"
	"github.com/openshelf/meeplesync/cache"
	"github.com/openshelf/meeplesync/config"
	"github.com/openshelf/meeplesync/models"
	"github.com/openshelf/meeplesync/queue"
	"github.com/openshelf/meeplesync/store"
)

type stubClient struct {
	searchCalls int
}

func (s *stubClient) GetGameDetails(ctx context.Context, id string) (*models.GameDetails, error) {
	return &models.GameDetails{ID: id, Name: "Game " + id}, nil
}

func (s *stubClient) GetGamesDetails(ctx context.Context, ids []string) ([]models.GameDetails, error) {
	return nil, nil
}

func (s *stubClient) GetCollection(ctx context.Context, username string) ([]models.CollectionItem, error) {
	return nil, nil
}

func (s *stubClient) GetGalleryImages(ctx context.Context, id string, limit int) ([]string, error) {
	return nil, nil
}

func (s *stubClient) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	s.searchCalls++
	return []models.SearchResult{{ID: "13", Name: "Catan"}}, nil
}

func (s *stubClient) GetHotGames(ctx context.Context) ([]models.HotItem, error) {
	return []models.HotItem{{ID: "342942", Name: "Ark Nova"}}, nil
}

type stubSource struct{ c bgg.Client }

func (s stubSource) Client() bgg.Client { return s.c }

func newTestQueue(t *testing.T) (*queue.Queue, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	q, err := queue.New(st, stubSource{&stubClient{}}, config.QueueConfig{RecentWindow: 20}, nil)
	require.NoError(t, err)
	return q, st
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestEnqueueValidatesGameID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	q, _ := newTestQueue(t)
	r := gin.New()
	r.POST("/scrape/:id", Enqueue(q))

	w := doRequest(r, http.MethodPost, "/scrape/174430", "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"gameId":"174430"`)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)

	w = doRequest(r, http.MethodPost, "/scrape/not-a-number", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_INPUT")
}

func TestEnqueueAcceptsOptionalName(t *testing.T) {
	gin.SetMode(gin.TestMode)
	q, st := newTestQueue(t)
	r := gin.New()
	r.POST("/scrape/:id", Enqueue(q))

	w := doRequest(r, http.MethodPost, "/scrape/174430", `{"name":"Gloomhaven"}`)
	assert.Equal(t, http.StatusAccepted, w.Code)

	recent, err := st.RecentJobs(1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Gloomhaven", recent[0].GameName)
}

func TestEnqueueBatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	q, st := newTestQueue(t)
	r := gin.New()
	r.POST("/scrape/batch", EnqueueBatch(q))

	w := doRequest(r, http.MethodPost, "/scrape/batch", `{"gameIds":["1","2","3"]}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"total":3`)

	counts, err := st.CountJobs("")
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts.Pending)

	// Missing ids list.
	w = doRequest(r, http.MethodPost, "/scrape/batch", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Non-numeric id.
	w = doRequest(r, http.MethodPost, "/scrape/batch", `{"gameIds":["1","abc"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueueStatusAndStop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	q, _ := newTestQueue(t)
	r := gin.New()
	r.GET("/scrape/status", QueueStatus(q))
	r.POST("/scrape/stop", StopQueue(q))

	w := doRequest(r, http.MethodGet, "/scrape/status", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isStopping":false`)

	w = doRequest(r, http.MethodPost, "/scrape/stop", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/scrape/status", "")
	assert.Contains(t, w.Body.String(), `"isStopping":true`)
}

func TestBatchStatusUnknownIs404(t *testing.T) {
	gin.SetMode(gin.TestMode)
	q, _ := newTestQueue(t)
	r := gin.New()
	r.GET("/scrape/batch/:id", BatchStatus(q))

	w := doRequest(r, http.MethodGet, "/scrape/batch/no-such-batch", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestGamesEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, st := newTestQueue(t)
	r := gin.New()
	r.GET("/games", ListGames(st))
	r.GET("/games/:id", GetGame(st))

	require.NoError(t, st.EnsureGame(models.CollectionItem{ID: "174430", Name: "Gloomhaven"}))

	w := doRequest(r, http.MethodGet, "/games", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = doRequest(r, http.MethodGet, "/games/174430", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Gloomhaven")

	w = doRequest(r, http.MethodGet, "/games/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchUsesCache(t *testing.T) {
	gin.SetMode(gin.TestMode)
	client := &stubClient{}
	cc := cache.New(10, time.Minute)
	r := gin.New()
	r.GET("/search", Search(stubSource{client}, cc))

	w := doRequest(r, http.MethodGet, "/search?q=catan", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cached":false`)

	w = doRequest(r, http.MethodGet, "/search?q=catan", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cached":true`)
	assert.Equal(t, 1, client.searchCalls)

	// Missing query.
	w = doRequest(r, http.MethodGet, "/search", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type namedBackend string

func (n namedBackend) BackendName() string { return string(n) }

func TestHealthReportsBackendAndQueueDepth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	q, _ := newTestQueue(t)
	r := gin.New()
	r.GET("/health", Health(q, namedBackend("scrape"), time.Now()))

	w := doRequest(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.Contains(t, w.Body.String(), `"backend":"scrape"`)
}

func TestHotGames(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cc := cache.New(10, time.Minute)
	r := gin.New()
	r.GET("/hot", HotGames(stubSource{&stubClient{}}, cc))

	w := doRequest(r, http.MethodGet, "/hot", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ark Nova")
}
