package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"okkstats/pkg/platform/sentinel"
)

// RedisRemote stores the document under a single key and announces writes on
// a pub/sub channel carrying the full payload, so watchers never need a
// follow-up read.
type RedisRemote struct {
	client  *redis.Client
	key     string
	channel string
}

func NewRedisRemote(client *redis.Client, key string) *RedisRemote {
	return &RedisRemote{
		client:  client,
		key:     key,
		channel: key + ":events",
	}
}

func (r *RedisRemote) Load(ctx context.Context) ([]byte, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("settings document: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load settings document: %w", err)
	}
	return raw, nil
}

func (r *RedisRemote) Write(ctx context.Context, payload []byte) error {
	if err := r.client.Set(ctx, r.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("write settings document: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("announce settings write: %w", err)
	}
	return nil
}

func (r *RedisRemote) Watch(ctx context.Context) (<-chan []byte, error) {
	sub := r.client.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe settings channel: %w", err)
	}

	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
