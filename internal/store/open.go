package store

import (
	"context"
	"fmt"
	"path/filepath"

	"fjacquet/expense-tracker/internal/config"
	"fjacquet/expense-tracker/internal/logging"
)

// Open builds the repository selected by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (Repository, error) {
	switch cfg.Store.Backend {
	case config.BackendJSON, "":
		kv, err := NewFileKV(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		return NewBlobRepository(ctx, kv, cfg.Store.Key, logger)
	case config.BackendSQLite:
		file := cfg.Store.SQLiteFile
		if !filepath.IsAbs(file) {
			file = filepath.Join(cfg.Store.Path, file)
		}
		return NewSQLiteRepository(ctx, file, logger)
	case config.BackendPostgres:
		pg := cfg.Store.Postgres
		return NewPostgresRepository(ctx, PostgresConfig{
			Host:     pg.Host,
			Port:     pg.Port,
			User:     pg.User,
			Password: pg.Password,
			Database: pg.Database,
			SSLMode:  pg.SSLMode,
			MaxConns: pg.MaxConns,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
