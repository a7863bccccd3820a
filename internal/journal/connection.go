// Package journal stores captured clipboard changes in sqlite.
package journal

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultDBName = "journal.db"
	defaultDBDir  = ".config/deskbridge"
)

type DB struct {
	*gorm.DB
}

// DefaultPath returns ~/.config/deskbridge/journal.db, creating the directory.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}

	dbDir := filepath.Join(homeDir, defaultDBDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create journal directory")
	}

	return filepath.Join(dbDir, defaultDBName), nil
}

// Connect opens the journal at dbPath, or at DefaultPath when empty.
func Connect(dbPath string) (*DB, error) {
	if dbPath == "" {
		var err error
		dbPath, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	} else if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create journal directory")
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open journal")
	}

	return &DB{db}, nil
}

// Initialize migrates the schema.
func (db *DB) Initialize() error {
	if err := db.AutoMigrate(&Clip{}, &ErrorLog{}); err != nil {
		return errors.Wrap(err, "failed to initialize journal schema")
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
