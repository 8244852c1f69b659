package domain

import (
	gonanoid "github.com/matoous/go-nanoid/v2" // Nanoid generator for public IDs
	"gorm.io/gorm"                             // GORM ORM library
)

// School Model: owns the draftable players
type School struct {
	ID      string       `gorm:"primaryKey;size:21"` // Nanoid primary key
	Name    string       `gorm:"unique;not null"`    // Unique school name
	Players []RealPlayer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"` // Players enrolled at this school
}

// BeforeCreate assigns a nanoid primary key if none is set
func (s *School) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		id, err := gonanoid.New() // Generate a new nanoid
		if err != nil {
			return err // Return error if generation fails
		}
		s.ID = id // Assign the generated ID
	}
	return nil
}
