package domain

import (
	"time" // Timestamps

	gonanoid "github.com/matoous/go-nanoid/v2" // Nanoid generator for public IDs
	"gorm.io/gorm"                             // GORM ORM library
)

// FantasyTeam Model: created exactly once per user by the draft commit.
// The unique index on UserID is what makes a concurrent double submission
// fail inside the commit transaction instead of creating a second team.
type FantasyTeam struct {
	ID        string       `gorm:"primaryKey;size:21"` // Nanoid primary key
	UserID    string       `gorm:"uniqueIndex;not null"` // Foreign key to User, one team per user
	Name      string       `gorm:"not null"`             // Team name, 2-30 characters
	CreatedAt time.Time    // Timestamp of creation
	Players   []TeamPlayer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"` // Roster links, exactly 15 once created
}

// BeforeCreate assigns a nanoid primary key if none is set
func (t *FantasyTeam) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		id, err := gonanoid.New() // Generate a new nanoid
		if err != nil {
			return err // Return error if generation fails
		}
		t.ID = id // Assign the generated ID
	}
	return nil
}

// TeamPlayer Model: roster link between a FantasyTeam and a RealPlayer
type TeamPlayer struct {
	ID            uint       `gorm:"primaryKey"`                               // Primary key
	FantasyTeamID string     `gorm:"not null;uniqueIndex:idx_team_player"`     // Foreign key to FantasyTeam
	RealPlayerID  string     `gorm:"not null;uniqueIndex:idx_team_player"`     // Foreign key to RealPlayer, unique within a team
	RealPlayer    RealPlayer // Drafted player (preloaded for team reads)
}
