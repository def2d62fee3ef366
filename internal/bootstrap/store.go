// Package bootstrap opens the storage backend selected by configuration.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/contentflow/internal/config"
	"github.com/fastygo/contentflow/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/contentflow/internal/infrastructure/postgres"
	"github.com/fastygo/contentflow/repository"
	"github.com/fastygo/contentflow/repository/postgres"
	"github.com/fastygo/contentflow/repository/sqlite"
)

// Backend is an open store with its health check and release function.
type Backend struct {
	Driver string
	Store  repository.Store
	Check  monitor.Dependency
	Close  func(ctx context.Context) error
}

// OpenStore connects to postgres (running pending migrations when enabled)
// or opens the sqlite file, depending on cfg.Store.Driver.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		if err := pgInfra.RunMigrations(cfg, logger); err != nil {
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Driver: cfg.Store.Driver,
			Store:  postgres.NewStore(pool),
			Check:  monitor.PostgresCheck(pool),
			Close: func(context.Context) error {
				pgInfra.Close(pool, logger)
				return nil
			},
		}, nil

	case config.StoreDriverSQLite:
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite store opened", zap.String("path", cfg.SQLite.Path))
		return &Backend{
			Driver: cfg.Store.Driver,
			Store:  sqlite.NewStore(db),
			Check:  monitor.SQLiteCheck(db),
			Close: func(context.Context) error {
				return sqlite.Close(db)
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
