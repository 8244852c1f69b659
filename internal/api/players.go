package api

import (
	"context"                     // Context for Redis operations
	"net/http"                    // HTTP status codes
	"schoolfanta/internal/domain" // Importing domain models
	"schoolfanta/internal/utils"  // Utility functions
	"time"                        // Cache TTL

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// catalogCacheKey caches the full player catalog; it only changes when
// the seed runs, so a short TTL is plenty
const catalogCacheKey = "players:catalog"

// catalogCacheTTL is how long the catalog stays cached
const catalogCacheTTL = 60 * time.Second

// budgetCacheTTL is how long a user's budget stays cached
const budgetCacheTTL = 60 * time.Second

// BudgetCacheKey is the Redis key holding a user's remaining budget
func BudgetCacheKey(userID string) string {
	return "budget:user:" + userID
}

// PlayerDTO is one catalog entry: a draftable player with its school
type PlayerDTO struct {
	ID         string `json:"id"`         // Player ID
	Name       string `json:"name"`       // Player name
	Role       string `json:"role"`       // GK, DEF, MID or ATT
	SchoolName string `json:"schoolName"` // Owning school's name
	Value      int    `json:"value"`      // Draft cost
}

// GetAvailablePlayersHandler returns every draftable player with its school,
// ordered by role ascending then value descending so the most valuable
// players of each role sort first
func GetAvailablePlayersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Context for Redis operations
		var cached []PlayerDTO      // Catalog from cache
		found, err := utils.GetCache(ctx, rdb, catalogCacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"players": cached, "cached": true})
			return
		}
		var players []domain.RealPlayer // Players with their schools
		// Fetch the full catalog, no filtering, no pagination
		if err := db.Preload("School").
			Order("role asc").
			Order("value desc").
			Find(&players).Error; err != nil {
			// Surface the storage error as a generic internal error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch players", "code": "INTERNAL"})
			return
		}
		// Map to the catalog shape
		resp := make([]PlayerDTO, len(players))
		for i, p := range players {
			resp[i] = PlayerDTO{
				ID:         p.ID,          // Player ID
				Name:       p.Name,        // Player name
				Role:       p.Role,        // Player role
				SchoolName: p.School.Name, // Owning school's name
				Value:      p.Value,       // Draft cost
			}
		}
		_ = utils.SetCache(ctx, rdb, catalogCacheKey, resp, catalogCacheTTL) // Cache the catalog
		c.JSON(http.StatusOK, gin.H{"players": resp, "cached": false})      // Return the catalog
	}
}

// GetBudgetHandler returns the authenticated user's remaining budget,
// defaulting to 100 when no record is found
func GetBudgetHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "code": "UNAUTHENTICATED"})
			return
		}
		ctx := context.Background()                 // Context for Redis operations
		cacheKey := BudgetCacheKey(userID.(string)) // Cache key for this user's budget
		var budget int                              // Budget from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &budget)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"budget": budget, "cached": true})
			return
		}
		var user domain.User // Fetch the user's budget
		if err := db.Select("budget").First(&user, "id = ?", userID).Error; err != nil {
			// No record: fall back to the seeded default
			c.JSON(http.StatusOK, gin.H{"budget": 100, "cached": false})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, user.Budget, budgetCacheTTL)  // Cache the budget
		c.JSON(http.StatusOK, gin.H{"budget": user.Budget, "cached": false}) // Return the budget
	}
}
