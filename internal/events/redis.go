package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher fans events out over Redis pub/sub, one channel per event
// type plus one per aggregate for live tracking subscribers.
type RedisPublisher struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisPublisher(ctx context.Context, addr, password string, db int, prefix string) (*RedisPublisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &RedisPublisher{rdb: rdb, prefix: prefix}, nil
}

func (p *RedisPublisher) TypeChannel(eventType string) string {
	return fmt.Sprintf("%s:events:%s", p.prefix, eventType)
}

func (p *RedisPublisher) AggregateChannel(aggregateID string) string {
	return fmt.Sprintf("%s:aggregate:%s", p.prefix, aggregateID)
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	pipe := p.rdb.Pipeline()
	pipe.Publish(ctx, p.TypeChannel(event.Type), payload)
	pipe.Publish(ctx, p.AggregateChannel(event.AggregateID), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publishing event to redis: %w", err)
	}
	return nil
}

// Subscribe returns a subscription on the aggregate channel. The caller
// closes it.
func (p *RedisPublisher) Subscribe(ctx context.Context, aggregateID string) *redis.PubSub {
	return p.rdb.Subscribe(ctx, p.AggregateChannel(aggregateID))
}

func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}
