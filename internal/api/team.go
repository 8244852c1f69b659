package api

import (
	"context"                     // Context for Redis operations
	"errors"                      // Error inspection
	"fmt"                         // Error message formatting
	"net/http"                    // HTTP status codes
	"schoolfanta/internal/domain" // Importing domain models
	"schoolfanta/internal/utils"  // Utility functions
	"strings"                     // String manipulation
	"time"                        // Timestamps

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// CreateTeamRequest is the draft submission: a team name and the full
// 15-player selection from the wizard
type CreateTeamRequest struct {
	Name      string   `json:"name" binding:"required"`       // Team name
	PlayerIDs []string `json:"player_ids" binding:"required"` // Selected player IDs
}

// CreateTeamHandler validates a candidate roster against authoritative data
// and commits the team atomically. Nothing from the client is trusted: name,
// roster size, duplicates, existence, role quotas and budget are all
// re-derived server-side before anything is written.
func CreateTeamHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Authentication
		userID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "code": "UNAUTHENTICATED"})
			return
		}
		var req CreateTeamRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// Shape validation happens before any business rule
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "code": "INVALID_REQUEST"})
			return
		}
		// 2. Name shape: trimmed length in [2, 30]
		name := strings.TrimSpace(req.Name)
		if len(name) < 2 || len(name) > 30 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Team name must be between 2 and 30 characters", "code": "INVALID_NAME"})
			return
		}
		var user domain.User // Load budget and team flag from authoritative data
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found", "code": "USER_NOT_FOUND"})
			return
		}
		// 3. Single-team rule (the unique index on user_id backstops the race)
		if user.HasTeam {
			c.JSON(http.StatusConflict, gin.H{"error": "You already have a team", "code": "ALREADY_HAS_TEAM"})
			return
		}
		// 4. Roster size: exactly 15 players
		if len(req.PlayerIDs) != domain.RosterSize {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("You must select exactly %d players", domain.RosterSize),
				"code":  "WRONG_ROSTER_SIZE",
			})
			return
		}
		// 5. No duplicates within the selection
		seen := make(map[string]struct{}, domain.RosterSize)
		for _, id := range req.PlayerIDs {
			if _, dup := seen[id]; dup {
				c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot select the same player twice", "code": "DUPLICATE_PLAYER"})
				return
			}
			seen[id] = struct{}{} // Remember the ID
		}
		// 6. Existence: every ID must resolve to a persisted player
		var players []domain.RealPlayer
		if err := db.Where("id IN ?", req.PlayerIDs).Find(&players).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load players", "code": "INTERNAL"})
			return
		}
		if len(players) != domain.RosterSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Some selected players do not exist", "code": "UNKNOWN_PLAYER"})
			return
		}
		// 7. Role composition: count resolved players by role
		counts := map[string]int{} // Actual role counts
		totalCost := 0             // Summed player values
		for _, p := range players {
			counts[p.Role]++       // Tally the role
			totalCost += p.Value   // Accumulate the cost
		}
		// Check each quota in a fixed order so the first mismatch reported
		// is deterministic
		for _, role := range domain.RoleOrder {
			required := domain.RequiredRoles[role] // Required quota for this role
			if counts[role] != required {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": fmt.Sprintf("Invalid roster: need %d %s, have %d", required, role, counts[role]),
					"code":  "INVALID_ROLE_COMPOSITION",
				})
				return
			}
		}
		// 8. Budget: total cost must not exceed the current budget
		if totalCost > user.Budget {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Insufficient budget: cost %d, budget %d", totalCost, user.Budget),
				"code":  "INSUFFICIENT_BUDGET",
			})
			return
		}
		// Commit: team, roster links and the user update all-or-nothing
		team := domain.FantasyTeam{
			UserID: user.ID, // Owning user
			Name:   name,    // Validated team name
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			// Create the team row
			if err := tx.Create(&team).Error; err != nil {
				return err // Return error to rollback
			}
			// Create one roster link per selected player
			links := make([]domain.TeamPlayer, 0, domain.RosterSize)
			for _, pid := range req.PlayerIDs {
				links = append(links, domain.TeamPlayer{
					FantasyTeamID: team.ID, // New team
					RealPlayerID:  pid,     // Drafted player
				})
			}
			if err := tx.Create(&links).Error; err != nil {
				return err // Return error to rollback
			}
			// Flip the flag and debit the budget against the current row
			if err := tx.Model(&domain.User{}).Where("id = ?", user.ID).
				Updates(map[string]any{
					"has_team": true,                              // One team now exists
					"budget":   gorm.Expr("budget - ?", totalCost), // Debit the summed cost
				}).Error; err != nil {
				return err // Return error to rollback
			}
			return nil // Commit transaction
		})
		// Handle transaction result
		if err != nil {
			// A duplicate key on user_id means a concurrent submission won
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "You already have a team", "code": "ALREADY_HAS_TEAM"})
				return
			}
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id":    user.ID,     // Submitting user
				"team_name":  name,        // Requested team name
				"total_cost": totalCost,   // Summed player values
				"error":      err.Error(), // Error message
			}).Error("Team creation failed") // Log commit failure
			// Report a generic internal error without storage details
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create team", "code": "COMMIT_FAILED"})
			return
		}
		// Log the successful draft
		logrus.WithFields(logrus.Fields{
			"user_id":    user.ID,                         // Submitting user
			"team_id":    team.ID,                         // New team ID
			"team_name":  name,                            // Team name
			"total_cost": totalCost,                       // Debited amount
			"budget":     user.Budget - totalCost,         // Remaining budget
			"timestamp":  time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Team created")
		// Invalidate the user's cached budget
		_ = utils.DeleteCache(context.Background(), rdb, BudgetCacheKey(user.ID))
		// Return success response
		c.JSON(http.StatusCreated, gin.H{
			"success": true, // Draft committed
			"team": gin.H{
				"id":   team.ID, // New team ID
				"name": name,    // Team name
			},
		})
	}
}

// TeamPlayerDTO is one drafted player in a team response
type TeamPlayerDTO struct {
	ID         string `json:"id"`         // Player ID
	Name       string `json:"name"`       // Player name
	Role       string `json:"role"`       // GK, DEF, MID or ATT
	SchoolName string `json:"schoolName"` // Owning school's name
	Value      int    `json:"value"`      // Draft cost
}

// GetTeamHandler returns the authenticated user's team with its full roster
func GetTeamHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "code": "UNAUTHENTICATED"})
			return
		}
		var team domain.FantasyTeam // The user's team with roster and schools
		if err := db.Preload("Players.RealPlayer.School").
			Where("user_id = ?", userID).First(&team).Error; err != nil {
			// No team drafted yet
			c.JSON(http.StatusNotFound, gin.H{"error": "You have no team yet", "code": "NO_TEAM"})
			return
		}
		// Map the roster links to the response shape
		roster := make([]TeamPlayerDTO, len(team.Players))
		for i, link := range team.Players {
			roster[i] = TeamPlayerDTO{
				ID:         link.RealPlayer.ID,          // Player ID
				Name:       link.RealPlayer.Name,        // Player name
				Role:       link.RealPlayer.Role,        // Player role
				SchoolName: link.RealPlayer.School.Name, // Owning school's name
				Value:      link.RealPlayer.Value,       // Draft cost
			}
		}
		// Return the team
		c.JSON(http.StatusOK, gin.H{
			"team": gin.H{
				"id":        team.ID,        // Team ID
				"name":      team.Name,      // Team name
				"createdAt": team.CreatedAt, // When the draft happened
				"players":   roster,         // Full roster
			},
		})
	}
}
