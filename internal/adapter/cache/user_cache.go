package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-auth-service/internal/domain/user"
)

const keyPrefix = "user-auth:user:"

// UserCache defines the interface for user caching operations.
// Cached entries never carry the password hash.
type UserCache interface {
	// Get returns nil, nil on a cache miss.
	Get(ctx context.Context, id int64) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, ids ...int64) error
}

// RedisUserCache implements UserCache on top of Redis.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// cachedUser is the JSON shape stored in Redis.
type cachedUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}

// Get retrieves a user from Redis.
func (c *RedisUserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.Int64("user_id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	var entry cachedUser
	if err := json.Unmarshal(data, &entry); err != nil {
		c.log.Error("failed to unmarshal cached user", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.Int64("user_id", id))
	return &domain.User{ID: entry.ID, Name: entry.Name, Email: entry.Email}, nil
}

// Set stores a user in Redis with the configured TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("cannot cache nil user")
	}

	data, err := json.Marshal(cachedUser{ID: user.ID, Name: user.Name, Email: user.Email})
	if err != nil {
		c.log.Error("failed to marshal user for cache", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, cacheKey(user.ID), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.Int64("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete evicts one or more users.
func (c *RedisUserCache) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheKey(id)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.Int64s("user_ids", ids), zap.Error(err))
		return err
	}

	c.log.Debug("evicted from cache", zap.Int64s("user_ids", ids))
	return nil
}
