package utils

import (
	"crypto/rand"  // Cryptographic randomness
	"encoding/hex" // Hex encoding
)

// GenerateToken returns a 64-character hex string from 32 random bytes,
// used for email verification links
func GenerateToken() (string, error) {
	b := make([]byte, 32) // 32 random bytes
	if _, err := rand.Read(b); err != nil {
		return "", err // Return error if the source fails
	}
	return hex.EncodeToString(b), nil // Hex-encode the bytes
}
