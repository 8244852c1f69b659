package main

import (
	"schoolfanta/internal/config" // Custom import path (Config)
	"schoolfanta/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Logging library
)

// Main entry point for seeding the school and player catalog
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Database Source Name (DSN) for MySQL connection
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	gormDB, err := db.Open(dsn) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Fatal error if connection fails
	}
	// Insert the catalog, skipping rows that already exist
	if err := db.Seed(gormDB); err != nil {
		logrus.Fatalf("seed failed: %v", err) // Fatal error if seeding fails
	}
	logrus.Info("Seed completed.") // Log successful seed
}
