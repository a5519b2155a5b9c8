// ABOUTME: Redis-backed store so every terminal sharing a Redis instance sees one session
// ABOUTME: Mutations are announced on a pub/sub channel tagged with the writer's origin

package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultRedisPrefix namespaces keys and the change channel
const DefaultRedisPrefix = "fuelwise:"

type redisEvent struct {
	Key     string `json:"key"`
	Value   string `json:"value,omitempty"`
	Present bool   `json:"present"`
	Origin  string `json:"origin"`
}

// Redis is a Store over a Redis client
type Redis struct {
	client *redis.Client
	prefix string
	origin string
	hub    *hub
	pubsub *redis.PubSub
	done   chan struct{}
	log    *zap.Logger
}

// NewRedis creates a store and waits until its change subscription is live
func NewRedis(ctx context.Context, client *redis.Client, prefix string, log *zap.Logger) (*Redis, error) {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if log == nil {
		log = zap.NewNop()
	}

	r := &Redis{
		client: client,
		prefix: prefix,
		origin: uuid.NewString(),
		hub:    newHub(),
		done:   make(chan struct{}),
		log:    log.Named("kvstore.redis"),
	}

	r.pubsub = client.Subscribe(ctx, r.channel())
	if _, err := r.pubsub.Receive(ctx); err != nil {
		r.pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", r.channel(), err)
	}

	go r.listen()
	return r, nil
}

func (r *Redis) channel() string {
	return r.prefix + "changes"
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) listen() {
	defer close(r.done)
	for msg := range r.pubsub.Channel() {
		var ev redisEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			r.log.Warn("discarding malformed change event", zap.Error(err))
			continue
		}
		if ev.Origin == r.origin {
			continue
		}
		r.hub.publish(r.origin, Change{Key: ev.Key, Value: ev.Value, Present: ev.Present})
	}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return r.announce(ctx, redisEvent{Key: key, Value: value, Present: true, Origin: r.origin})
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	n, err := r.client.Del(ctx, r.key(key)).Result()
	if err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	if n == 0 {
		return nil
	}
	return r.announce(ctx, redisEvent{Key: key, Origin: r.origin})
}

func (r *Redis) announce(ctx context.Context, ev redisEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel(), payload).Err(); err != nil {
		return fmt.Errorf("publish change for %s: %w", ev.Key, err)
	}
	return nil
}

// OnChange registers a listener for changes written by other origins.
// Events published by this handle are filtered in listen, so the hub
// subscription uses a distinct local origin.
func (r *Redis) OnChange(key string, fn Listener) func() {
	return r.hub.subscribe("local:"+r.origin, key, fn)
}

// Close stops the change subscription; the Redis client stays open
func (r *Redis) Close() error {
	err := r.pubsub.Close()
	<-r.done
	return err
}
