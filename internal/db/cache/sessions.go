// Package cache - кэш сессий в redis.
// Включается, только если задан REDIS_ADDR. Источник истины всегда PostgreSQL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"laboratorio3d.cl/rewards/internal/config"
	"laboratorio3d.cl/rewards/internal/web"
)

const keyPrefix = "lab3d:session:"

// ErrMiss - токена нет в кэше.
var ErrMiss = errors.New("cache: miss")

type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionCache(ctx context.Context, cfg *config.Config) (*SessionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Username:    cfg.RedisUser,
		Password:    cfg.RedisPassword,
		DB:          0,
		MaxRetries:  5,
		DialTimeout: 10 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &SessionCache{client: client, ttl: cfg.RedisTTL, now: time.Now}, nil
}

func (c *SessionCache) Get(ctx context.Context, token string) (*web.Principal, error) {
	val, err := c.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	} else if err != nil {
		return nil, err
	}

	var p web.Principal
	if err := json.Unmarshal(val, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Set кладёт Principal не дольше, чем живёт сама сессия.
func (c *SessionCache) Set(ctx context.Context, token string, p *web.Principal, expiresAt time.Time) error {
	ttl := entryTTL(c.ttl, expiresAt.Sub(c.now()))
	if ttl <= 0 {
		return nil
	}

	val, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+token, val, ttl).Err()
}

func (c *SessionCache) Delete(ctx context.Context, tokens ...string) error {
	if len(tokens) == 0 {
		return nil
	}
	keys := make([]string, len(tokens))
	for i, t := range tokens {
		keys[i] = keyPrefix + t
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *SessionCache) Close() error {
	return c.client.Close()
}

func entryTTL(limit, remaining time.Duration) time.Duration {
	if remaining < limit {
		return remaining
	}
	return limit
}
