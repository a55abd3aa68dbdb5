package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/meeplesync/cache"
	"github.com/openshelf/meeplesync/models"
	"github.com/openshelf/meeplesync/queue"
)

// Search returns a handler for GET /api/v1/search?q=.
//
// Results are pass-through from the remote service, cached briefly so a UI
// typing the same query twice does not cost two remote round trips.
func Search(cs queue.ClientSource, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.TrimSpace(c.Query("q"))
		if query == "" {
			errorJSON(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "missing query parameter q")
			return
		}

		key := cache.Key("search", query)
		if cached, ok := cc.Get(key); ok {
			c.JSON(http.StatusOK, gin.H{"results": cached, "cached": true})
			return
		}

		results, err := cs.Client().Search(c.Request.Context(), query)
		if err != nil {
			errorJSON(c, http.StatusBadGateway, models.ErrCodeRemoteDown, "search failed: "+err.Error())
			return
		}
		if results == nil {
			results = []models.SearchResult{}
		}

		cc.Set(key, results)
		c.JSON(http.StatusOK, gin.H{"results": results, "cached": false})
	}
}

// HotGames returns a handler for GET /api/v1/hot.
func HotGames(cs queue.ClientSource, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := cache.Key("hot", "")
		if cached, ok := cc.Get(key); ok {
			c.JSON(http.StatusOK, gin.H{"items": cached, "cached": true})
			return
		}

		items, err := cs.Client().GetHotGames(c.Request.Context())
		if err != nil {
			errorJSON(c, http.StatusBadGateway, models.ErrCodeRemoteDown, "hot list failed: "+err.Error())
			return
		}
		if items == nil {
			items = []models.HotItem{}
		}

		cc.Set(key, items)
		c.JSON(http.StatusOK, gin.H{"items": items, "cached": false})
	}
}
