package domain

import "time" // Token expiry

// VerificationToken Model: one-shot tokens for email flows.
// Identifier is the plain email for signup verification, or
// "email-change:<userID>:<newEmail>" for a pending email change.
type VerificationToken struct {
	ID         uint      `gorm:"primaryKey"`                                // Primary key
	Identifier string    `gorm:"not null;uniqueIndex:idx_identifier_token"` // What the token verifies
	Token      string    `gorm:"not null;uniqueIndex:idx_identifier_token"` // Random hex token
	ExpiresAt  time.Time `gorm:"not null"`                                  // When the token stops being valid
}
