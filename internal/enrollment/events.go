package enrollment

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher adapts a Redis client to the EventPublisher port. Events are
// published on a channel named after the event type; the Gateway subscribes
// and forwards them over SSE.
type RedisPublisher struct {
	RDB *redis.Client
}

// Publish sends payload on the given channel.
func (p RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.RDB.Publish(ctx, channel, payload).Err()
}
