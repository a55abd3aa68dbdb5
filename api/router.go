package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/meeplesync/api/handler"
	"github.com/openshelf/meeplesync/api/middleware"
	"github.com/openshelf/meeplesync/bgg"
	"github.com/openshelf/meeplesync/cache"
	"github.com/openshelf/meeplesync/config"
	"github.com/openshelf/meeplesync/queue"
	"github.com/openshelf/meeplesync/scheduler"
	"github.com/openshelf/meeplesync/store"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(st *store.Store, q *queue.Queue, sched *scheduler.Scheduler, selector *bgg.Selector, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(q, selector, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Refresh queue
	protected.POST("/scrape/batch", handler.EnqueueBatch(q))
	protected.GET("/scrape/batch/:id", handler.BatchStatus(q))
	protected.GET("/scrape/status", handler.QueueStatus(q))
	protected.POST("/scrape/stop", handler.StopQueue(q))
	protected.POST("/scrape/:id", handler.Enqueue(q))

	// Collection sync
	protected.POST("/sync", handler.TriggerSync(sched))
	protected.GET("/sync/status", handler.SyncStatus(sched))

	// Catalog
	protected.GET("/games", handler.ListGames(st))
	protected.GET("/games/:id", handler.GetGame(st))

	// Remote pass-through
	protected.GET("/search", handler.Search(selector, cc))
	protected.GET("/hot", handler.HotGames(selector, cc))

	return r
}
