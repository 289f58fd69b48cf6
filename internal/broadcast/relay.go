package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisRelay shares room and all-connection frames between server
// instances over a Redis Pub/Sub channel. Every instance publishes what it
// sends locally and delivers what the others publish.
type RedisRelay struct {
	client  *redis.Client
	channel string
	origin  string
}

func NewRedisRelay(client *redis.Client, channel string) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
	}
}

func (r *RedisRelay) Publish(ctx context.Context, env Envelope) error {
	env.Origin = r.origin
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding envelope: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", r.channel, err)
	}
	return nil
}

// Run subscribes to the channel and hands every envelope from another
// instance to deliver. It resubscribes when the subscription drops and
// returns when ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context, deliver func(context.Context, Envelope)) {
	for {
		sub := r.client.Subscribe(ctx, r.channel)
		r.consume(ctx, sub, deliver)
		_ = sub.Close()

		if ctx.Err() != nil {
			return
		}
		slog.WarnContext(ctx, "relay subscription closed, resubscribing", "channel", r.channel)

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func (r *RedisRelay) consume(ctx context.Context, sub *redis.PubSub, deliver func(context.Context, Envelope)) {
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				slog.WarnContext(ctx, "dropping malformed relay message", "error", err)
				continue
			}
			if env.Origin == r.origin {
				continue
			}
			deliver(ctx, env)
		}
	}
}
