package domain

import (
	gonanoid "github.com/matoous/go-nanoid/v2" // Nanoid generator for public IDs
	"gorm.io/gorm"                             // GORM ORM library
)

// Account Model: links a User to a federated identity provider
type Account struct {
	ID                string `gorm:"primaryKey;size:21"`                            // Nanoid primary key
	UserID            string `gorm:"not null;index"`                                // Foreign key to User
	Provider          string `gorm:"not null;uniqueIndex:idx_provider_account"`     // Provider name, e.g. "google"
	ProviderAccountID string `gorm:"not null;uniqueIndex:idx_provider_account"`     // Subject ID at the provider
}

// BeforeCreate assigns a nanoid primary key if none is set
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		id, err := gonanoid.New() // Generate a new nanoid
		if err != nil {
			return err // Return error if generation fails
		}
		a.ID = id // Assign the generated ID
	}
	return nil
}
