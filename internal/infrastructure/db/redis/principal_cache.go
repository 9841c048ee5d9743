package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cardigital/user-service/internal/api/metrics"
	"github.com/cardigital/user-service/internal/core/domain"
)

const defaultPrincipalTTL = 5 * time.Minute

// PrincipalCache stores resolved principals as Redis hashes.
// Key format: principal:<username>
type PrincipalCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPrincipalCache creates a PrincipalCache wrapping the given Redis client.
func NewPrincipalCache(client *redis.Client, ttl time.Duration) *PrincipalCache {
	if ttl <= 0 {
		ttl = defaultPrincipalTTL
	}
	return &PrincipalCache{client: client, ttl: ttl}
}

// Get returns the cached principal, or nil on a miss.
func (c *PrincipalCache) Get(ctx context.Context, username string) (*domain.Principal, error) {
	data, err := c.client.HGetAll(ctx, key(username)).Result()
	if err != nil {
		return nil, fmt.Errorf("principal cache get: %w", err)
	}
	if len(data) == 0 {
		metrics.PrincipalCacheTotal.WithLabelValues("miss").Inc()
		return nil, nil
	}

	p, err := decodePrincipal(username, data)
	if err != nil {
		// Unreadable entries are treated as a miss and dropped.
		_ = c.client.Del(ctx, key(username)).Err()
		metrics.PrincipalCacheTotal.WithLabelValues("miss").Inc()
		return nil, nil
	}
	metrics.PrincipalCacheTotal.WithLabelValues("hit").Inc()
	return p, nil
}

// Set stores p and (re)starts its TTL.
func (c *PrincipalCache) Set(ctx context.Context, p *domain.Principal) error {
	k := key(p.Username)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, encodePrincipal(p))
		pipe.Expire(ctx, k, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("principal cache set: %w", err)
	}
	return nil
}

func (c *PrincipalCache) Evict(ctx context.Context, username string) error {
	if err := c.client.Del(ctx, key(username)).Err(); err != nil {
		return fmt.Errorf("principal cache evict: %w", err)
	}
	return nil
}

func key(username string) string {
	return "principal:" + username
}

func encodePrincipal(p *domain.Principal) map[string]interface{} {
	return map[string]interface{}{
		"user_id": strconv.FormatInt(p.UserID, 10),
		"role":    p.Role.Name,
		"enabled": strconv.FormatBool(p.Enabled),
	}
}

func decodePrincipal(username string, data map[string]string) (*domain.Principal, error) {
	id, err := strconv.ParseInt(data["user_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("user_id: %w", err)
	}
	enabled, err := strconv.ParseBool(data["enabled"])
	if err != nil {
		return nil, fmt.Errorf("enabled: %w", err)
	}
	return &domain.Principal{
		UserID:   id,
		Username: username,
		Role:     domain.RoleByName(data["role"]),
		Enabled:  enabled,
	}, nil
}
