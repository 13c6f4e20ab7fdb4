package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisClientName identifies this service in CLIENT LIST.
const RedisClientName = "catalog-sync"

// NewRedis parses a redis:// URL, connects and pings once. The worker's
// BRPOP blocks longer than the default read timeout, so reads are given
// headroom.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	opts.ClientName = RedisClientName
	if opts.ReadTimeout < 10*time.Second {
		opts.ReadTimeout = 10 * time.Second
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}

	log.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("redis: connected")
	return rdb, nil
}
