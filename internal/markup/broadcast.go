package markup

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// InvalidateChannel carries cross-process invalidation notices.
const InvalidateChannel = "markup:invalidate"

// PublishInvalidate tells every process listening on rdb to drop its snapshot.
func PublishInvalidate(ctx context.Context, rdb *redis.Client) error {
	return rdb.Publish(ctx, InvalidateChannel, "1").Err()
}

// Listen invalidates c on every notice until ctx is cancelled.
func (c *Cache) Listen(ctx context.Context, rdb *redis.Client) {
	sub := rdb.Subscribe(ctx, InvalidateChannel)
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				c.Invalidate()
				log.Debug().Msg("markup: snapshot invalidated by broadcast")
			}
		}
	}()
}
