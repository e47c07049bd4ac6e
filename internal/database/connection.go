package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bigpicturetv/bigpicturetv/internal/models"
)

// memoryPath opens a private in-memory database
const memoryPath = ":memory:"

// busyTimeoutMs lets the CLI read while the daemon is writing
const busyTimeoutMs = 5000

type DB struct {
	*gorm.DB
}

// Connect opens the sqlite database, creating its directory if needed
func Connect(dbPath string) (*DB, error) {
	if dbPath == "" {
		return nil, errors.New("database path is empty")
	}

	dsn := dbPath
	if dbPath != memoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, errors.Wrap(err, "failed to create database directory")
		}
		dsn = dsnWithPragmas(dbPath)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", dbPath)
	}

	return &DB{db}, nil
}

func dsnWithPragmas(path string) string {
	return path + fmt.Sprintf("?_busy_timeout=%d&_journal_mode=WAL", busyTimeoutMs)
}

// Initialize migrates the transition and error log tables
func (db *DB) Initialize() error {
	if err := db.AutoMigrate(&models.Transition{}, &models.ErrorLog{}); err != nil {
		return errors.Wrap(err, "failed to initialize database schema")
	}
	return nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying sql.DB")
	}
	return sqlDB.Close()
}
