// Package db opens the configured SQL store and returns its repository.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bryanwahyu/aidetect/internal/config"
	domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
	"github.com/bryanwahyu/aidetect/internal/infra/db/dbutil"
	"github.com/bryanwahyu/aidetect/internal/infra/db/migrations"
	"github.com/bryanwahyu/aidetect/internal/infra/db/mysql"
	"github.com/bryanwahyu/aidetect/internal/infra/db/postgres"
	"github.com/bryanwahyu/aidetect/internal/infra/db/sqlite"
)

type Store struct {
	DB   *sql.DB
	Repo domain.Repository
}

func (s *Store) Close() error { return s.DB.Close() }

// Open connects using cfg.Driver. With AutoMigrate set, pending migrations are
// applied before the repository is returned.
func Open(ctx context.Context, cfg config.Database) (*Store, error) {
	pool := dbutil.Pool{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}

	switch cfg.Driver {
	case "mysql":
		if err := migrate(cfg); err != nil {
			return nil, err
		}
		conn, err := mysql.Connect(ctx, cfg.MySQLDSN(), pool)
		if err != nil {
			return nil, fmt.Errorf("connect mysql: %w", err)
		}
		return &Store{DB: conn, Repo: mysql.NewAnalysisRepository(conn)}, nil
	case "postgres":
		if err := migrate(cfg); err != nil {
			return nil, err
		}
		conn, err := postgres.Connect(ctx, cfg.PostgresDSN(), pool)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return &Store{DB: conn, Repo: postgres.NewAnalysisRepository(conn)}, nil
	case "sqlite":
		// schema is applied on open
		conn, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		return &Store{DB: conn, Repo: sqlite.NewAnalysisRepository(conn)}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func migrate(cfg config.Database) error {
	if !cfg.AutoMigrate {
		return nil
	}
	return migrations.Up(cfg.Driver, cfg.MigrationURL())
}
