package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/mventory-backend/config"
	"github.com/ikkim/mventory-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "session:denylist:"

// TokenDenylist records revoked session token ids until their natural expiry.
type TokenDenylist struct {
	client *redis.Client
}

// Connect opens a Redis connection and verifies it with PING.
func Connect(cfg *config.RedisConfig) (*redis.Client, error) {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return client, nil
}

func NewTokenDenylist(client *redis.Client) *TokenDenylist {
	return &TokenDenylist{client: client}
}

// Revoke marks tokenID as revoked for ttl. A non-positive ttl is a no-op since
// the token is already expired.
func (d *TokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := d.client.Set(ctx, denylistPrefix+tokenID, "revoked", ttl).Err(); err != nil {
		logger.Error("Failed to add token to denylist", err, map[string]interface{}{
			"ttl": ttl.String(),
		})
		return err
	}

	logger.Debug("Token added to denylist", map[string]interface{}{
		"ttl": ttl.String(),
	})
	return nil
}

// IsRevoked reports whether tokenID was revoked and has not yet aged out.
func (d *TokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := d.client.Get(ctx, denylistPrefix+tokenID).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check token denylist", err)
		return false, err
	}
	return true, nil
}
