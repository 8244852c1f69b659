package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort            string // Application port
	DBUser             string // Database user
	DBPassword         string // Database password
	DBHost             string // Database host
	DBPort             string // Database port
	DBName             string // Database name
	JWTSecret          string // JWT secret key
	RedisAddr          string // Redis server address
	RedisPass          string // Redis password
	RedisDB            int    // Redis database number
	FrontendURL        string // Base URL of the front-end, used for redirects and email links
	PublicAPIURL       string // Public base URL of this API, used for verification links
	GoogleClientID     string // Google OAuth client ID, empty disables the provider
	GoogleClientSecret string // Google OAuth client secret
	GoogleRedirectURL  string // Google OAuth callback URL of this API
	ResendAPIKey       string // Resend API key, empty disables outbound email
	EmailFrom          string // Sender address for transactional email
	IsProd             bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000" // Default front-end for local development
	}
	publicAPIURL := os.Getenv("PUBLIC_API_URL")
	if publicAPIURL == "" {
		publicAPIURL = "http://localhost:8080" // Default API URL for local development
	}
	emailFrom := os.Getenv("EMAIL_FROM")
	if emailFrom == "" {
		emailFrom = "SchoolFanta <onboarding@resend.dev>" // Resend test sender
	}
	return &Config{
		AppPort:            os.Getenv("APP_PORT"),             // Application port
		DBUser:             os.Getenv("DB_USER"),              // Database user
		DBPassword:         os.Getenv("DB_PASSWORD"),          // Database password
		DBHost:             os.Getenv("DB_HOST"),              // Database host
		DBPort:             os.Getenv("DB_PORT"),              // Database port
		DBName:             os.Getenv("DB_NAME"),              // Database name
		JWTSecret:          os.Getenv("JWT_SECRET"),           // JWT secret key
		RedisAddr:          os.Getenv("REDIS_ADDR"),           // Redis server address
		RedisPass:          os.Getenv("REDIS_PASS"),           // Redis password
		RedisDB:            redisDB,                           // Redis database number
		FrontendURL:        frontendURL,                       // Front-end base URL
		PublicAPIURL:       publicAPIURL,                      // Public API base URL
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),     // Google OAuth client ID
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"), // Google OAuth client secret
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),  // Google OAuth callback URL
		ResendAPIKey:       os.Getenv("RESEND_API_KEY"),       // Resend API key
		EmailFrom:          emailFrom,                         // Sender address
		IsProd:             os.Getenv("IS_PROD") == "true",    // Is production environment
	}
}
