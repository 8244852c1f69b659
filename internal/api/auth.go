package api

import (
	"net/http"                    // HTTP status codes
	"regexp"                      // Regular expressions
	"schoolfanta/internal/domain" // Importing domain models
	"schoolfanta/internal/email"  // Transactional email
	"schoolfanta/internal/utils"  // Utility functions
	"strings"                     // String manipulation
	"time"                        // Token expiry

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// verificationTokenTTL is how long a signup or email-change token stays valid
const verificationTokenTTL = 24 * time.Hour

// emailRegex is the shape check applied to every submitted email address
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SignupRequest is the request body for registration
type SignupRequest struct {
	Email     string `json:"email" binding:"required"`    // Email must be provided
	Password  string `json:"password" binding:"required"` // Password must be provided
	FirstName string `json:"firstName"`                   // Optional first name
	LastName  string `json:"lastName"`                    // Optional last name
}

// LoginRequest is the request body for credentials login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// AuthResponse carries the session token back to the client
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// isStrongPassword requires at least 8 characters with an upper-case
// letter, a lower-case letter and a digit
func isStrongPassword(password string) bool {
	if len(password) < 8 {
		return false // Too short
	}
	var upper, lower, digit bool // Character class flags
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true // Has an upper-case letter
		case r >= 'a' && r <= 'z':
			lower = true // Has a lower-case letter
		case r >= '0' && r <= '9':
			digit = true // Has a digit
		}
	}
	return upper && lower && digit // All classes required
}

// issueVerificationToken replaces any pending token for the identifier
// with a fresh one and returns it
func issueVerificationToken(db *gorm.DB, identifier string) (string, error) {
	// Drop previous tokens for this identifier
	if err := db.Where("identifier = ?", identifier).Delete(&domain.VerificationToken{}).Error; err != nil {
		return "", err // Return error if cleanup fails
	}
	token, err := utils.GenerateToken() // Generate a fresh random token
	if err != nil {
		return "", err // Return error if generation fails
	}
	// Persist the token with its expiry
	vt := domain.VerificationToken{
		Identifier: identifier,                           // What the token verifies
		Token:      token,                                // Random hex token
		ExpiresAt:  time.Now().Add(verificationTokenTTL), // Valid for 24 hours
	}
	if err := db.Create(&vt).Error; err != nil {
		return "", err // Return error if persisting fails
	}
	return token, nil
}

// SignupHandler registers a new credentials user and emails a verification link
func SignupHandler(db *gorm.DB, mailer *email.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "code": "INVALID_REQUEST"})
			return
		}
		emailAddr := strings.ToLower(strings.TrimSpace(req.Email)) // Normalize the email
		// Validate the email shape
		if !emailRegex.MatchString(emailAddr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email", "code": "INVALID_EMAIL"})
			return
		}
		// Validate password strength
		if !isStrongPassword(req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters with an upper-case letter, a lower-case letter and a digit", "code": "WEAK_PASSWORD"})
			return
		}
		// Reject duplicate emails explicitly for a clear 409
		var existing domain.User
		if err := db.Where("email = ?", emailAddr).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already in use", "code": "EMAIL_TAKEN"})
			return
		}
		// Hash the password
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password", "code": "INTERNAL"})
			return
		}
		firstName := strings.TrimSpace(req.FirstName)                               // Trimmed first name
		lastName := strings.TrimSpace(req.LastName)                                 // Trimmed last name
		name := strings.TrimSpace(strings.Join([]string{firstName, lastName}, " ")) // Display name from the parts
		// Create the user
		user := domain.User{
			Email:        emailAddr,    // Normalized email
			PasswordHash: string(hash), // Bcrypt hash
			Name:         name,         // Display name
			FirstName:    firstName,    // First name
			LastName:     lastName,     // Last name
		}
		if err := db.Create(&user).Error; err != nil {
			// Creation can still race another signup on the unique email
			c.JSON(http.StatusConflict, gin.H{"error": "Email already in use", "code": "EMAIL_TAKEN"})
			return
		}
		// Issue and send the verification link without blocking the response
		if token, err := issueVerificationToken(db, emailAddr); err == nil {
			mailer.SendVerificationEmail(emailAddr, token, user.Name)
		} else {
			// Log but do not fail the signup, the link can be re-requested
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,     // New user ID
				"error":   err.Error(), // Error message
			}).Error("Failed to issue verification token")
		}
		// Log the registration
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID, // New user ID
			"email":   emailAddr,
		}).Info("User registered")
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
	}
}

// LoginHandler authenticates credentials and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "code": "INVALID_REQUEST"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials", "code": "INVALID_CREDENTIALS"})
			return
		}
		// OAuth-only accounts have no password to compare
		if user.PasswordHash == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials", "code": "INVALID_CREDENTIALS"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials", "code": "INVALID_CREDENTIALS"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token", "code": "INTERNAL"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}

// VerifyEmailHandler consumes a signup verification token and redirects
// to the front-end login page with the outcome
func VerifyEmailHandler(db *gorm.DB, mailer *email.Mailer, frontendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")     // Token from the email link
		emailAddr := c.Query("email") // Email from the email link
		// Both parameters are required
		if token == "" || emailAddr == "" {
			c.Redirect(http.StatusFound, frontendURL+"/login?error=InvalidVerificationLink")
			return
		}
		var vt domain.VerificationToken // Look up the token
		if err := db.Where("identifier = ? AND token = ?", emailAddr, token).First(&vt).Error; err != nil {
			// Unknown or already used token
			c.Redirect(http.StatusFound, frontendURL+"/login?error=InvalidVerificationToken")
			return
		}
		// Expired tokens are deleted and rejected
		if vt.ExpiresAt.Before(time.Now()) {
			db.Delete(&vt) // Drop the stale token
			c.Redirect(http.StatusFound, frontendURL+"/login?error=VerificationTokenExpired")
			return
		}
		var user domain.User // Find the user being verified
		if err := db.Where("email = ?", emailAddr).First(&user).Error; err != nil {
			c.Redirect(http.StatusFound, frontendURL+"/login?error=UserNotFound")
			return
		}
		now := time.Now() // Verification timestamp
		// Mark the email as verified
		if err := db.Model(&user).Update("email_verified", &now).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,     // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to mark email verified")
			c.Redirect(http.StatusFound, frontendURL+"/login?error=VerificationFailed")
			return
		}
		db.Delete(&vt) // Consume the token
		// Send the welcome email without blocking the redirect
		mailer.SendWelcomeEmail(emailAddr, user.Name)
		// Redirect to login with a success flag
		c.Redirect(http.StatusFound, frontendURL+"/login?verified=true")
	}
}

// ResendVerificationHandler re-issues the signup verification email for
// the authenticated user
func ResendVerificationHandler(db *gorm.DB, mailer *email.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "code": "UNAUTHENTICATED"})
			return
		}
		var user domain.User // Fetch the user
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found", "code": "USER_NOT_FOUND"})
			return
		}
		// Nothing to do when already verified
		if user.EmailVerified != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already verified", "code": "ALREADY_VERIFIED"})
			return
		}
		// Replace any pending token and send the new link
		token, err := issueVerificationToken(db, user.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue verification token", "code": "INTERNAL"})
			return
		}
		mailer.SendVerificationEmail(user.Email, token, user.Name) // Non-blocking send
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification email sent"})
	}
}

// ProvidersHandler lists the available sign-in providers
func ProvidersHandler(googleEnabled bool, apiBaseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providers := gin.H{
			// Credentials sign-in is always available
			"credentials": gin.H{
				"id":        "credentials",              // Provider ID
				"name":      "Email and password",       // Display name
				"type":      "credentials",              // Provider type
				"signinUrl": apiBaseURL + "/auth/login", // Where to sign in
			},
		}
		// Google appears only when the OAuth client is configured
		if googleEnabled {
			providers["google"] = gin.H{
				"id":          "google",                             // Provider ID
				"name":        "Google",                             // Display name
				"type":        "oauth",                              // Provider type
				"signinUrl":   apiBaseURL + "/auth/google",          // Consent redirect
				"callbackUrl": apiBaseURL + "/auth/google/callback", // Code callback
			}
		}
		c.JSON(http.StatusOK, providers) // Return the provider map
	}
}
