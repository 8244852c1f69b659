package api

import (
	"net/http"                    // HTTP status codes
	"schoolfanta/internal/domain" // Importing domain models
	"schoolfanta/internal/email"  // Transactional email
	"strings"                     // String manipulation
	"time"                        // Timestamps and token expiry

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// emailChangePrefix namespaces email-change tokens per user:
// "email-change:<userID>:<newEmail>"
const emailChangePrefix = "email-change:"

// MeResponse is the safe profile shape, never exposing the password hash
type MeResponse struct {
	ID               string     `json:"id"`               // User ID
	Email            string     `json:"email"`            // Email address
	Name             string     `json:"name"`             // Display name
	FirstName        string     `json:"firstName"`        // First name
	LastName         string     `json:"lastName"`         // Last name
	Image            string     `json:"image"`            // Avatar URL
	EmailVerified    *time.Time `json:"emailVerified"`    // Verification timestamp, null if never
	CreatedAt        time.Time  `json:"createdAt"`        // Account creation time
	Budget           int        `json:"budget"`           // Remaining draft credits
	HasTeam          bool       `json:"hasTeam"`          // Whether a team has been drafted
	HasPassword      bool       `json:"hasPassword"`      // Whether credentials login works
	HasGoogleAccount bool       `json:"hasGoogleAccount"` // Whether a Google identity is linked
}

// toMeResponse maps a user with preloaded accounts to the safe shape
func toMeResponse(u *domain.User) MeResponse {
	hasGoogle := false // Look for a linked Google identity
	for _, a := range u.Accounts {
		if a.Provider == "google" {
			hasGoogle = true
			break
		}
	}
	return MeResponse{
		ID:               u.ID,                  // User ID
		Email:            u.Email,               // Email address
		Name:             u.Name,                // Display name
		FirstName:        u.FirstName,           // First name
		LastName:         u.LastName,            // Last name
		Image:            u.Image,               // Avatar URL
		EmailVerified:    u.EmailVerified,       // Verification timestamp
		CreatedAt:        u.CreatedAt,           // Account creation time
		Budget:           u.Budget,              // Remaining credits
		HasTeam:          u.HasTeam,             // Team flag
		HasPassword:      u.PasswordHash != "",  // Derived, hash never leaves
		HasGoogleAccount: hasGoogle,             // Derived from account links
	}
}

// MeHandler returns the authenticated user's profile
func MeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "code": "UNAUTHENTICATED"})
			return
		}
		var user domain.User // Fetch user with account links
		if err := db.Preload("Accounts").First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found", "code": "USER_NOT_FOUND"})
			return
		}
		c.JSON(http.StatusOK, toMeResponse(&user)) // Return the safe profile
	}
}

// UpdateMeRequest carries the editable profile fields; pointers
// distinguish "not sent" from "clear this field"
type UpdateMeRequest struct {
	Name      *string `json:"name"`      // Display name, optional
	FirstName *string `json:"firstName"` // First name, optional
	LastName  *string `json:"lastName"`  // Last name, optional
}

// UpdateMeHandler updates display name, first and last name
func UpdateMeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "code": "UNAUTHENTICATED"})
			return
		}
		var req UpdateMeRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "code": "INVALID_REQUEST"})
			return
		}
		updates := map[string]any{} // Only the fields that were sent
		if req.Name != nil {
			updates["name"] = clampField(*req.Name, 100) // Display name capped at 100
		}
		if req.FirstName != nil {
			updates["first_name"] = clampField(*req.FirstName, 50) // First name capped at 50
		}
		if req.LastName != nil {
			updates["last_name"] = clampField(*req.LastName, 50) // Last name capped at 50
		}
		// At least one field must be present
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update", "code": "EMPTY_UPDATE"})
			return
		}
		// Apply the update
		if err := db.Model(&domain.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile", "code": "INTERNAL"})
			return
		}
		var user domain.User // Re-read with account links for the response
		if err := db.Preload("Accounts").First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile", "code": "INTERNAL"})
			return
		}
		c.JSON(http.StatusOK, toMeResponse(&user)) // Return the updated profile
	}
}

// clampField trims a value and caps its length
func clampField(v string, max int) string {
	v = strings.TrimSpace(v) // Trim surrounding whitespace
	if len(v) > max {
		return v[:max] // Cap at the column limit
	}
	return v
}

// ChangePasswordRequest carries the new password and its confirmation
type ChangePasswordRequest struct {
	Password        string `json:"password" binding:"required"`        // New password
	ConfirmPassword string `json:"confirmPassword" binding:"required"` // Must match
}

// ChangePasswordHandler sets or replaces the user's password
func ChangePasswordHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "code": "UNAUTHENTICATED"})
			return
		}
		var req ChangePasswordRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password and confirmation are required", "code": "INVALID_REQUEST"})
			return
		}
		// The two fields must match
		if req.Password != req.ConfirmPassword {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match", "code": "PASSWORD_MISMATCH"})
			return
		}
		// Enforce the same strength rule as signup
		if !isStrongPassword(req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters with an upper-case letter, a lower-case letter and a digit", "code": "WEAK_PASSWORD"})
			return
		}
		// Hash and store
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password", "code": "INTERNAL"})
			return
		}
		if err := db.Model(&domain.User{}).Where("id = ?", userID).Update("password_hash", string(hash)).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password", "code": "INTERNAL"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true}) // Password updated
	}
}

// EmailChangeRequest carries the desired new email address
type EmailChangeRequest struct {
	Email string `json:"email" binding:"required"` // New email address
}

// RequestEmailChangeHandler starts an email change: the new address gets a
// verification link and nothing changes until it is clicked
func RequestEmailChangeHandler(db *gorm.DB, mailer *email.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "code": "UNAUTHENTICATED"})
			return
		}
		var req EmailChangeRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required", "code": "INVALID_REQUEST"})
			return
		}
		newEmail := strings.ToLower(strings.TrimSpace(req.Email)) // Normalize the address
		// Validate the email shape
		if !emailRegex.MatchString(newEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format", "code": "INVALID_EMAIL"})
			return
		}
		var user domain.User // Fetch the current user
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found", "code": "USER_NOT_FOUND"})
			return
		}
		// Reject a no-op change
		if strings.EqualFold(user.Email, newEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "The new email is the same as the current one", "code": "SAME_EMAIL"})
			return
		}
		// Reject an address owned by another account
		var other domain.User
		if err := db.Where("email = ?", newEmail).First(&other).Error; err == nil && other.ID != user.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "This email is already used by another account", "code": "EMAIL_TAKEN"})
			return
		}
		// Replace any pending change for this user with a fresh token
		identifier := emailChangePrefix + user.ID + ":" + newEmail
		if err := db.Where("identifier LIKE ?", emailChangePrefix+user.ID+":%").Delete(&domain.VerificationToken{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start email change", "code": "INTERNAL"})
			return
		}
		token, err := issueVerificationToken(db, identifier)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start email change", "code": "INTERNAL"})
			return
		}
		// Send the confirmation link to the NEW address; roll the token back
		// if the send fails so no orphan change stays pending
		if err := mailer.SendEmailChangeVerification(newEmail, token, user.Name); err != nil {
			db.Where("identifier = ? AND token = ?", identifier, token).Delete(&domain.VerificationToken{})
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,     // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to send email change verification")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send the verification email", "code": "INTERNAL"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification email sent to the new address"})
	}
}

// VerifyEmailChangeHandler consumes an email-change token and applies the
// new address, then redirects to the front-end profile page
func VerifyEmailChangeHandler(db *gorm.DB, frontendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token") // Token from the email link
		if token == "" {
			c.Redirect(http.StatusFound, frontendURL+"/me?emailError=MissingToken")
			return
		}
		var vt domain.VerificationToken // Look up the pending change by token
		if err := db.Where("token = ? AND identifier LIKE ?", token, emailChangePrefix+"%").First(&vt).Error; err != nil {
			c.Redirect(http.StatusFound, frontendURL+"/me?emailError=InvalidToken")
			return
		}
		// Expired tokens are deleted and rejected
		if vt.ExpiresAt.Before(time.Now()) {
			db.Delete(&vt) // Drop the stale token
			c.Redirect(http.StatusFound, frontendURL+"/me?emailError=TokenExpired")
			return
		}
		// Identifier format: email-change:<userID>:<newEmail>
		parts := strings.SplitN(strings.TrimPrefix(vt.Identifier, emailChangePrefix), ":", 2)
		if len(parts) != 2 {
			c.Redirect(http.StatusFound, frontendURL+"/me?emailError=InvalidToken")
			return
		}
		targetUserID, newEmail := parts[0], parts[1] // Decode the pending change
		// The address may have been taken while the change was pending
		var other domain.User
		if err := db.Where("email = ?", newEmail).First(&other).Error; err == nil && other.ID != targetUserID {
			db.Delete(&vt) // The change can never complete
			c.Redirect(http.StatusFound, frontendURL+"/me?emailError=EmailTaken")
			return
		}
		now := time.Now() // The click proves ownership of the new address
		// Apply the new, verified address
		if err := db.Model(&domain.User{}).Where("id = ?", targetUserID).
			Updates(map[string]any{"email": newEmail, "email_verified": &now}).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": targetUserID, // User ID
				"error":   err.Error(),  // Error message
			}).Error("Failed to apply email change")
			c.Redirect(http.StatusFound, frontendURL+"/me?emailError=ChangeFailed")
			return
		}
		db.Delete(&vt) // Consume the token
		c.Redirect(http.StatusFound, frontendURL+"/me?emailSuccess=true")
	}
}
