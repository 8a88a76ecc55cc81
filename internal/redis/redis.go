package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/JonasLeetTheWay/eventisense/internal/config"
	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

func NewClient(cfg *config.Config) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       0,
	})

	return &Client{rdb: rdb}
}

// NewClientWithRedis wraps an existing go-redis client.
func NewClientWithRedis(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("revoked_token:%s", tokenID)
}

// RevokeToken records a token id as revoked until the token would have expired.
func (c *Client) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" {
		return fmt.Errorf("token id is required")
	}
	if ttl <= 0 {
		// Already expired, nothing to remember.
		return nil
	}
	if err := c.rdb.Set(ctx, revokedKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsTokenRevoked checks the revocation list.
func (c *Client) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	result := c.rdb.Exists(ctx, revokedKey(tokenID))
	if result.Err() != nil {
		return false, result.Err()
	}
	return result.Val() > 0, nil
}

const purchaseLockTTL = 30 * time.Second

func purchaseLockKey(eventID uint) string {
	return fmt.Sprintf("purchase_lock:%d", eventID)
}

// LockEvent takes the purchase lock for an event. The lock expires on its own
// if the holder dies before UnlockEvent.
func (c *Client) LockEvent(ctx context.Context, eventID, userID uint) error {
	result := c.rdb.SetNX(ctx, purchaseLockKey(eventID), fmt.Sprintf("%d", userID), purchaseLockTTL)
	if result.Err() != nil {
		return fmt.Errorf("failed to lock event: %w", result.Err())
	}
	if !result.Val() {
		return fmt.Errorf("event %d is already locked", eventID)
	}
	return nil
}

// UnlockEvent releases the purchase lock.
func (c *Client) UnlockEvent(ctx context.Context, eventID uint) error {
	return c.rdb.Del(ctx, purchaseLockKey(eventID)).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
