package domain

import (
	"time" // Timestamps

	gonanoid "github.com/matoous/go-nanoid/v2" // Nanoid generator for public IDs
	"gorm.io/gorm"                             // GORM ORM library
)

// User Model
type User struct {
	ID            string     `gorm:"primaryKey;size:21"` // Nanoid primary key
	Email         string     `gorm:"unique;not null"`    // Unique lowercase email
	PasswordHash  string     // Bcrypt hash, empty for OAuth-only accounts
	Name          string     // Display name
	FirstName     string     // First name
	LastName      string     // Last name
	Image         string     // Avatar URL (from the identity provider)
	EmailVerified *time.Time // When the email was verified, nil if never
	Budget        int        `gorm:"not null;default:100"`                          // Draft credits, debited once at team creation
	HasTeam       bool       `gorm:"not null;default:false"`                        // True iff exactly one FantasyTeam references this user
	CreatedAt     time.Time  // Timestamp of creation
	Accounts      []Account  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"` // Linked federated identities
}

// BeforeCreate assigns a nanoid primary key if none is set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		id, err := gonanoid.New() // Generate a new nanoid
		if err != nil {
			return err // Return error if generation fails
		}
		u.ID = id // Assign the generated ID
	}
	return nil
}
