package container

import (
	"context"
	"fmt"

	"pcsense/buylinks/internal/config"
	"pcsense/buylinks/internal/links"
	"pcsense/buylinks/internal/repository"
	"pcsense/buylinks/internal/service"
	"pcsense/buylinks/internal/state"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config            *config.Config
	CatalogRepository repository.CatalogRepository
	LinkRepository    repository.LinkRepository
	StateManager      state.StateManager

	Service *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config:            cfg,
		CatalogRepository: repository.NewFileCatalogRepository(cfg.Catalog.Path),
	}

	if cfg.Database.Enabled {
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		container.db = db

		if err := db.Ping(ctx); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("✅ Connected to database successfully")

		linkRepo := repository.NewLinkRepository(db)
		if err := linkRepo.EnsureSchema(ctx); err != nil {
			container.Close()
			return nil, err
		}
		container.LinkRepository = linkRepo
	}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})
		container.redis = rdb

		// Test connection
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")

		container.StateManager = state.NewRedisStateManager(rdb)
	}

	marketplace := links.Amazon
	marketplace.BaseURL = cfg.Links.BaseURL
	marketplace.SearchPath = cfg.Links.SearchPath

	container.Service = service.NewService(
		container.CatalogRepository,
		container.LinkRepository,
		container.StateManager,
		marketplace,
		cfg.Links.MultiStore,
		cfg.Links.NamePreview,
	)

	return container, nil
}

// Run executes a single enrichment pass
func (c *Container) Run(ctx context.Context) error {
	_, err := c.Service.Run(ctx)
	return err
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("failed to close Redis client: %w", err)
		}
	}
	return nil
}
