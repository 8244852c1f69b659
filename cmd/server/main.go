package main

import (
	"context"                         // context package is needed for Redis operations
	"log"                             // log package is needed for logging
	"net/http"                        // HTTP server with the CORS wrapper
	"schoolfanta/internal/api"        // Custom package for API handlers
	"schoolfanta/internal/config"     // Custom package for configuration
	"schoolfanta/internal/db"         // Custom package for database access
	"schoolfanta/internal/email"      // Custom package for transactional email
	"schoolfanta/internal/middleware" // Custom package for middleware

	// For loading .env files
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/rs/cors"           // CORS for the separate front-end origin
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"golang.org/x/oauth2"          // OAuth2 code flow
	"golang.org/x/oauth2/google"   // Google OAuth2 endpoint
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	gormDB, err := db.Open(dsn)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Setup the transactional mailer (disabled when no API key is set)
	mailer := email.NewMailer(cfg.ResendAPIKey, cfg.EmailFrom, cfg.PublicAPIURL, cfg.FrontendURL)

	// Google OAuth client, enabled only when fully configured
	googleEnabled := cfg.GoogleClientID != "" && cfg.GoogleClientSecret != ""
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,     // Google OAuth client ID
		ClientSecret: cfg.GoogleClientSecret, // Google OAuth client secret
		RedirectURL:  cfg.GoogleRedirectURL,  // Callback URL of this API
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint, // Google's auth and token URLs
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/auth/signup", api.SignupHandler(gormDB, mailer))                            // Registration endpoint
	r.POST("/auth/login", api.LoginHandler(gormDB, cfg.JWTSecret))                       // Credentials login endpoint
	r.GET("/auth/providers", api.ProvidersHandler(googleEnabled, cfg.PublicAPIURL))      // Provider discovery endpoint
	r.GET("/auth/verify-email", api.VerifyEmailHandler(gormDB, mailer, cfg.FrontendURL)) // Signup verification link
	if googleEnabled {
		r.GET("/auth/google", api.GoogleLoginHandler(redisClient, oauthCfg)) // Google consent redirect
		r.GET("/auth/google/callback", api.GoogleCallbackHandler(gormDB, redisClient, oauthCfg, cfg.JWTSecret, cfg.FrontendURL))
	}
	// Email-change confirmation arrives from an email link, so no bearer token
	r.GET("/me/email/verify", api.VerifyEmailChangeHandler(gormDB, cfg.FrontendURL))

	// Profile routes (protected by JWT)
	meGroup := r.Group("/me")
	meGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	meGroup.GET("", api.MeHandler(gormDB))                                     // Profile read endpoint
	meGroup.PUT("", api.UpdateMeHandler(gormDB))                               // Profile update endpoint
	meGroup.POST("/password", api.ChangePasswordHandler(gormDB))               // Password change endpoint
	meGroup.POST("/email", api.RequestEmailChangeHandler(gormDB, mailer))      // Email change request endpoint
	r.POST("/auth/resend-verification", middleware.JWTAuthMiddleware(cfg.JWTSecret), api.ResendVerificationHandler(gormDB, mailer))

	// Catalog route (protected by JWT)
	r.GET("/players", middleware.JWTAuthMiddleware(cfg.JWTSecret), api.GetAvailablePlayersHandler(gormDB, redisClient))

	// Team routes (protected by JWT)
	teamGroup := r.Group("/team")
	teamGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	teamGroup.GET("", api.GetTeamHandler(gormDB))                         // Team read endpoint
	teamGroup.GET("/budget", api.GetBudgetHandler(gormDB, redisClient))   // Budget read endpoint
	teamGroup.POST("", api.CreateTeamHandler(gormDB, redisClient))        // Draft validation and commit endpoint

	// Allow the front-end origin to call the API
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	log.Println("Server running on " + cfg.AppPort)                // Log server start
	if err := http.ListenAndServe(":"+cfg.AppPort, corsHandler); err != nil {
		logrus.Fatalf("server stopped: %v", err) // Fatal error if the server dies
	}
}
