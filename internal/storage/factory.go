package storage

import (
	"context"
	"fmt"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/brianmay/penguin-nurse/internal/config"
)

// Open builds the backend named by cfg.DBType. Postgres schemas are migrated
// when cfg.MigrateOnStart is set.
func Open(ctx context.Context, cfg *config.Config, logger internal.Logger) (Store, error) {
	switch cfg.DBType {
	case "file":
		return NewFileStorage(cfg.DataDir, logger)
	case "postgres":
		p, err := NewPostgresStorage(ctx, cfg.DBDSN, logger)
		if err != nil {
			return nil, err
		}
		if cfg.MigrateOnStart {
			if err := p.Migrate(ctx); err != nil {
				p.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.DBType)
	}
}
