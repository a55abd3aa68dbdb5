package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/meeplesync/models"
	"github.com/openshelf/meeplesync/store"
)

// ListGames returns a handler for GET /api/v1/games.
//
// ?owned=true restricts the listing to the current collection.
func ListGames(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownedOnly := c.Query("owned") == "true"
		games, err := st.ListGames(ownedOnly)
		if err != nil {
			errorJSON(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to list games")
			return
		}
		c.JSON(http.StatusOK, gin.H{"games": games, "total": len(games)})
	}
}

// GetGame returns a handler for GET /api/v1/games/:id.
func GetGame(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		game, err := st.GetGame(c.Param("id"))
		if err != nil {
			errorJSON(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to load game")
			return
		}
		if game == nil {
			errorJSON(c, http.StatusNotFound, models.ErrCodeNotFound, "game not in catalog")
			return
		}
		c.JSON(http.StatusOK, game)
	}
}
