package domain

import (
	gonanoid "github.com/matoous/go-nanoid/v2" // Nanoid generator for public IDs
	"gorm.io/gorm"                             // GORM ORM library
)

// Player roles and the required roster composition
const (
	RoleGK  = "GK"  // Goalkeeper
	RoleDEF = "DEF" // Defender
	RoleMID = "MID" // Midfielder
	RoleATT = "ATT" // Attacker
)

// RosterSize is the exact number of players a fantasy team drafts
const RosterSize = 15

// RoleOrder fixes the order roles are validated and reported in
var RoleOrder = []string{RoleGK, RoleDEF, RoleMID, RoleATT}

// RequiredRoles maps each role to its exact quota in a valid roster
var RequiredRoles = map[string]int{
	RoleGK:  2, // Two goalkeepers
	RoleDEF: 5, // Five defenders
	RoleMID: 5, // Five midfielders
	RoleATT: 3, // Three attackers
}

// RealPlayer Model: a draftable player, seeded once and never mutated
type RealPlayer struct {
	ID       string `gorm:"primaryKey;size:21"` // Nanoid primary key
	SchoolID string `gorm:"not null;index"`     // Foreign key to School
	School   School // Owning school (preloaded for catalog reads)
	Name     string `gorm:"not null"` // Player name
	Role     string `gorm:"not null"` // One of GK, DEF, MID, ATT
	Value    int    `gorm:"not null"` // Draft cost in credits
}

// BeforeCreate assigns a nanoid primary key if none is set
func (p *RealPlayer) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		id, err := gonanoid.New() // Generate a new nanoid
		if err != nil {
			return err // Return error if generation fails
		}
		p.ID = id // Assign the generated ID
	}
	return nil
}
