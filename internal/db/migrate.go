package db

import (
	"schoolfanta/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
)

// Open connects to MySQL with error translation enabled so unique-key
// violations surface as gorm.ErrDuplicatedKey
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
}

// Migrate performs automatic migration for the database schema
func Migrate(dsn string) {
	db, err := Open(dsn) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	err = db.AutoMigrate(
		&domain.User{},              // Users
		&domain.Account{},           // Federated identity links
		&domain.School{},            // Schools
		&domain.RealPlayer{},        // Draftable players
		&domain.FantasyTeam{},       // Fantasy teams
		&domain.TeamPlayer{},        // Roster links
		&domain.VerificationToken{}, // Email verification tokens
	)
	if err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	logrus.Info("Migration completed.") // Log successful migration
}
