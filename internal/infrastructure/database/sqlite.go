// Package database contains sqlite database infrastructure
package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yourusername/booru-search-bot/config"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/entities"
)

// NewSQLiteDB opens the sqlite database file and migrates the users table
func NewSQLiteDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Path, err)
	}

	if err := db.AutoMigrate(&entities.UserSettings{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}

	return db, nil
}
