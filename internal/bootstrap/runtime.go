// Package bootstrap wires the runtime dependencies shared by the server and the CLI tools.
package bootstrap

import (
	"context"
	"fmt"

	"blogicum/internal/cache"
	"blogicum/internal/config"
	"blogicum/internal/database"
	"blogicum/internal/middleware"
	"blogicum/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SkipSchema leaves the schema untouched, for tools that manage it themselves.
	SkipSchema bool
	// SeedBuiltIns upserts the built-in categories and locations.
	SeedBuiltIns bool
}

// InitRuntime connects to the database and Redis, brings the schema up to date and
// optionally seeds the built-in catalog. The Redis client is nil when REDIS_URL is empty or
// the server cannot be reached.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if !opts.SkipSchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return nil, nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	if opts.SeedBuiltIns {
		if err := seedBuiltIns(db); err != nil {
			return nil, nil, err
		}
	}

	return db, cache.Connect(cfg.RedisURL), nil
}

func seedBuiltIns(db *gorm.DB) error {
	categories, err := seed.Categories(db)
	if err != nil {
		return fmt.Errorf("failed to seed built-in categories: %w", err)
	}
	locations, err := seed.Locations(db)
	if err != nil {
		return fmt.Errorf("failed to seed built-in locations: %w", err)
	}
	middleware.Logger.Info("built-in catalog ensured",
		"categories", len(categories), "locations", len(locations))
	return nil
}
