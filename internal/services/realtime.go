package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Publisher fans study and timer events out to the WebSocket hub via per-user
// Redis channels. Delivery is best-effort; a failed publish never fails the
// operation that triggered it.
type Publisher interface {
	Publish(ctx context.Context, userID uuid.UUID, eventType string, payload map[string]interface{})
}

type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, userID uuid.UUID, eventType string, payload map[string]interface{}) {
	msg := map[string]interface{}{
		"type": eventType,
		"data": payload,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := p.client.Publish(ctx, "user_updates:"+userID.String(), data).Err(); err != nil {
		log.Printf("Failed to publish %s event for user %s: %v", eventType, userID, err)
	}
}

// Debouncer rejects duplicate automatic timer advances within a short window.
// Two browser tabs polling the same timer will both detect phase expiry and
// both issue an advance; only the first acquisition within the TTL wins.
type Debouncer interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type RedisDebouncer struct {
	client *redis.Client
}

func NewRedisDebouncer(client *redis.Client) *RedisDebouncer {
	return &RedisDebouncer{client: client}
}

func (d *RedisDebouncer) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return d.client.SetNX(ctx, key, "1", ttl).Result()
}
