package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InitRedis connects to Redis when REDIS_ADDR is set. It returns a nil client otherwise.
func InitRedis(ctx context.Context, cfg *Config, log *zap.Logger) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, token revocation kept in memory")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
	}
	log.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))
	return client, nil
}
