package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"pcsense/buylinks/internal/domain"

	"github.com/redis/go-redis/v9"
)

// StateManager remembers what the last enrichment run did per category.
type StateManager interface {
	SaveRunSummary(ctx context.Context, result *domain.EnrichmentResult) error
	GetLastAdded(ctx context.Context, categoryKey domain.CategoryKey) (int, error)
}

type redisStateManager struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedisStateManager(redisClient *redis.Client) StateManager {
	return &redisStateManager{
		redisClient: redisClient,
		keyPrefix:   "pcsense:buylinks:",
	}
}

func (s *redisStateManager) SaveRunSummary(ctx context.Context, result *domain.EnrichmentResult) error {
	_, err := s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, category := range result.Categories {
			pipe.Set(ctx, s.addedKey(category.Key), category.Added, 0) // No expiration
			pipe.Set(ctx, s.keyPrefix+"total:"+category.Key.String(), category.Total, 0)
		}
		pipe.Set(ctx, s.keyPrefix+"last_run", time.Now().UTC().Format(time.RFC3339), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save run summary: %w", err)
	}
	return nil
}

func (s *redisStateManager) GetLastAdded(ctx context.Context, categoryKey domain.CategoryKey) (int, error) {
	val, err := s.redisClient.Get(ctx, s.addedKey(categoryKey)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil // No run recorded yet
		}
		return 0, fmt.Errorf("failed to get last added count for category %s: %w", categoryKey, err)
	}

	added, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("failed to parse added count for category %s: %w", categoryKey, err)
	}

	return added, nil
}

func (s *redisStateManager) addedKey(categoryKey domain.CategoryKey) string {
	return s.keyPrefix + "added:" + categoryKey.String()
}
