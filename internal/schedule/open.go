package schedule

import (
	"context"
	"fmt"

	"github.com/ramunasnognys/offshore-mate-v3/internal/config"
	"go.uber.org/zap"
)

// Open returns the repository selected by storage.type
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Repository, error) {
	switch cfg.Type {
	case "", "file":
		return NewFileRepository(cfg.Path, logger), nil
	case "sqlite":
		return NewSQLiteRepository(cfg.Path, logger)
	case "postgres":
		db, err := NewPostgresConnection(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		repo, err := NewPostgresRepository(ctx, db, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		return repo, nil
	case "memory":
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
