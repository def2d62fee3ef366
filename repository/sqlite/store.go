// Package sqlite is the embedded storage backend, used for single-node
// deployments and for exercising the repositories without a Postgres server.
package sqlite

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fastygo/contentflow/repository"
)

// Open connects to the database file at path and migrates the schema.
// The path ":memory:" opens a private in-memory database.
func Open(path string) (*gorm.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(
		&clientRow{},
		&targetRow{},
		&userRow{},
		&taskRow{},
		&taskURLRow{},
		&commentRow{},
	); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewStore wires every repository onto one gorm handle.
func NewStore(db *gorm.DB) repository.Store {
	users := &userRepository{db: db}
	return repository.Store{
		Users:       users,
		Credentials: users,
		Clients:     &clientRepository{db: db},
		Tasks:       &taskRepository{db: db},
		Comments:    &commentRepository{db: db},
	}
}

func notFound(err error, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
