package api

import (
	"context"                     // Context for Redis and token exchange
	"encoding/json"               // Userinfo decoding
	"net/http"                    // HTTP status codes
	"schoolfanta/internal/domain" // Importing domain models
	"schoolfanta/internal/utils"  // Utility functions
	"time"                        // State TTL and timestamps

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"golang.org/x/oauth2"          // OAuth2 code flow
	"gorm.io/gorm"                 // GORM ORM library
)

// googleUserinfoURL returns the profile of the authorized Google user
const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// oauthStateTTL is how long an issued state nonce stays valid
const oauthStateTTL = 10 * time.Minute

// googleUserinfo is the subset of the Google userinfo response we use
type googleUserinfo struct {
	ID         string `json:"id"`          // Subject ID at Google
	Email      string `json:"email"`       // Email address
	Name       string `json:"name"`        // Display name
	GivenName  string `json:"given_name"`  // First name
	FamilyName string `json:"family_name"` // Last name
	Picture    string `json:"picture"`     // Avatar URL
}

// GoogleLoginHandler starts the Google authorization-code flow. The state
// nonce is parked in Redis so the callback can reject forged requests.
func GoogleLoginHandler(rdb *redis.Client, oauthCfg *oauth2.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := utils.GenerateToken() // Random state nonce
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start sign-in", "code": "INTERNAL"})
			return
		}
		// Park the state in Redis with a short TTL
		if err := utils.SetCache(context.Background(), rdb, "oauthstate:"+state, true, oauthStateTTL); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start sign-in", "code": "INTERNAL"})
			return
		}
		// Redirect to the Google consent screen
		c.Redirect(http.StatusFound, oauthCfg.AuthCodeURL(state))
	}
}

// GoogleCallbackHandler finishes the code flow: validates state, exchanges
// the code, fetches the profile, links or creates the user, and hands a
// session token back to the front-end.
func GoogleCallbackHandler(db *gorm.DB, rdb *redis.Client, oauthCfg *oauth2.Config, jwtSecret, frontendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Context for Redis and the exchange
		state := c.Query("state")   // State nonce from Google
		code := c.Query("code")     // Authorization code from Google
		// Both parameters are required
		if state == "" || code == "" {
			c.Redirect(http.StatusFound, frontendURL+"/login?error=OAuthFailed")
			return
		}
		// The state must be one we issued and not yet consumed
		var issued bool
		found, err := utils.GetCache(ctx, rdb, "oauthstate:"+state, &issued)
		if err != nil || !found {
			c.Redirect(http.StatusFound, frontendURL+"/login?error=InvalidOAuthState")
			return
		}
		_ = utils.DeleteCache(ctx, rdb, "oauthstate:"+state) // One-shot state
		// Exchange the code for an access token
		oauthToken, err := oauthCfg.Exchange(ctx, code)
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Google code exchange failed")
			c.Redirect(http.StatusFound, frontendURL+"/login?error=OAuthFailed")
			return
		}
		// Fetch the user's profile with the authorized client
		resp, err := oauthCfg.Client(ctx, oauthToken).Get(googleUserinfoURL)
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Google userinfo fetch failed")
			c.Redirect(http.StatusFound, frontendURL+"/login?error=OAuthFailed")
			return
		}
		defer resp.Body.Close() // Always close the body
		var info googleUserinfo // Decode the profile
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.ID == "" || info.Email == "" {
			c.Redirect(http.StatusFound, frontendURL+"/login?error=OAuthFailed")
			return
		}
		// Resolve the user for this Google identity
		user, err := upsertGoogleUser(db, info)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"provider": "google",    // Identity provider
				"email":    info.Email,  // Email at the provider
				"error":    err.Error(), // Error message
			}).Error("Failed to link Google account")
			c.Redirect(http.StatusFound, frontendURL+"/login?error=OAuthFailed")
			return
		}
		// Issue the session token
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			c.Redirect(http.StatusFound, frontendURL+"/login?error=OAuthFailed")
			return
		}
		// Log the federated sign-in
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,  // User ID
			"provider": "google", // Identity provider
		}).Info("Federated sign-in")
		// Hand the token to the front-end in the URL fragment
		c.Redirect(http.StatusFound, frontendURL+"/login#token="+token)
	}
}

// upsertGoogleUser finds the user for a Google identity, linking the
// account to an existing user with the same email or creating a new one
func upsertGoogleUser(db *gorm.DB, info googleUserinfo) (*domain.User, error) {
	// An existing account link wins
	var account domain.Account
	err := db.Where("provider = ? AND provider_account_id = ?", "google", info.ID).First(&account).Error
	if err == nil {
		var user domain.User // Load the linked user
		if err := db.First(&user, "id = ?", account.UserID).Error; err != nil {
			return nil, err // Dangling link, surface the error
		}
		return &user, nil
	}
	now := time.Now() // Google has verified this email
	var user domain.User
	// Link to an existing user with the same email, or create one
	if err := db.Where("email = ?", info.Email).First(&user).Error; err != nil {
		user = domain.User{
			Email:         info.Email,      // Email from the provider
			Name:          info.Name,       // Display name from the provider
			FirstName:     info.GivenName,  // First name from the provider
			LastName:      info.FamilyName, // Last name from the provider
			Image:         info.Picture,    // Avatar from the provider
			EmailVerified: &now,            // Provider-verified email
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err // Return error if creation fails
		}
	} else if user.EmailVerified == nil {
		// The provider vouches for the address
		if err := db.Model(&user).Update("email_verified", &now).Error; err != nil {
			return nil, err
		}
	}
	// Record the account link
	link := domain.Account{
		UserID:            user.ID,  // Linked user
		Provider:          "google", // Identity provider
		ProviderAccountID: info.ID,  // Subject ID at the provider
	}
	if err := db.Create(&link).Error; err != nil {
		return nil, err // Return error if linking fails
	}
	return &user, nil
}
