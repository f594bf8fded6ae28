package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fantasy-helper/guidance-service/internal/models"
)

// CacheService is the redis-backed store for full-season schedules. Entries
// carry no TTL: a (team, season) schedule is written once on the first miss
// and reused for every date-range query within that season.
type CacheService struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewCacheService creates a new cache service instance.
func NewCacheService(redisClient *redis.Client, logger *logrus.Logger) *CacheService {
	return &CacheService{
		client: redisClient,
		logger: logger,
	}
}

// buildCacheKey constructs consistent cache keys for schedule documents.
func (c *CacheService) buildCacheKey(elements ...string) string {
	return fmt.Sprintf("guidance:%s", strings.Join(elements, ":"))
}

// GetSeason returns the cached full-season schedule for a team, with a
// found flag distinguishing a miss from an empty schedule.
func (c *CacheService) GetSeason(ctx context.Context, teamCode, season string) ([]models.Game, bool, error) {
	key := c.buildCacheKey("schedule", teamCode, season)

	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		c.logger.WithError(err).WithField("key", key).Error("Failed to get cached schedule")
		return nil, false, err
	}

	var games []models.Game
	if err := json.Unmarshal([]byte(data), &games); err != nil {
		c.logger.WithError(err).WithField("key", key).Error("Failed to unmarshal cached schedule")
		return nil, false, err
	}

	c.logger.WithField("key", key).Debug("Schedule cache hit")
	return games, true, nil
}

// PutSeason stores a full-season schedule for a team.
func (c *CacheService) PutSeason(ctx context.Context, teamCode, season string, games []models.Game) error {
	key := c.buildCacheKey("schedule", teamCode, season)

	data, err := json.Marshal(games)
	if err != nil {
		return fmt.Errorf("failed to marshal schedule: %w", err)
	}

	if err := c.client.Set(ctx, key, data, 0).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Error("Failed to cache schedule")
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"key":   key,
		"games": len(games),
	}).Debug("Cached season schedule")

	return nil
}

// IsHealthy reports whether the cache backend answers pings.
func (c *CacheService) IsHealthy(ctx context.Context) bool {
	return c.client.Ping(ctx).Err() == nil
}
