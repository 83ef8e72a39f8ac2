// Package redis backs session tokens and session events with a shared Redis,
// so that several editor processes behind one balancer see the same sessions.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("cache: key not found")

const (
	dialTimeout   = 5 * time.Second
	defaultBuffer = 64
)

// Config holds Redis connection settings. Prefix namespaces every key and
// channel; it is stripped again from received channel names.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	// Buffer is the per-subscription message backlog; 0 means 64.
	Buffer int
}

func connect(cfg Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisCache is a Redis-backed key/value store.
type RedisCache struct {
	client *goredis.Client
	prefix string
}

// NewCache connects and pings before returning.
func NewCache(cfg Config) (*RedisCache, error) {
	client, err := connect(cfg)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: client, prefix: cfg.Prefix}, nil
}

func (r *RedisCache) key(k string) string { return r.prefix + k }

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(key), value, ttl).Err()
}

func (r *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	return r.client.Del(ctx, full...).Err()
}

func (r *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	return n > 0, err
}

// Expire resets the TTL of a key. A missing key yields ErrNotFound.
func (r *RedisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ok, err := r.client.Expire(ctx, r.key(key), ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Close releases the connection pool.
func (r *RedisCache) Close() error { return r.client.Close() }

// RedisMessage is a received pub/sub message with the prefix removed from
// its channel name.
type RedisMessage struct {
	Channel string
	Payload string
}

// RedisPubSub publishes over Redis channels.
type RedisPubSub struct {
	client *goredis.Client
	prefix string
	buffer int
}

// NewPubSub connects and pings before returning.
func NewPubSub(cfg Config) (*RedisPubSub, error) {
	client, err := connect(cfg)
	if err != nil {
		return nil, err
	}
	buf := cfg.Buffer
	if buf <= 0 {
		buf = defaultBuffer
	}
	return &RedisPubSub{client: client, prefix: cfg.Prefix, buffer: buf}, nil
}

func (r *RedisPubSub) Publish(ctx context.Context, channel, message string) error {
	return r.client.Publish(ctx, r.prefix+channel, message).Err()
}

// Subscribe waits for the subscription to be confirmed. The returned channel
// closes after cancel is called.
func (r *RedisPubSub) Subscribe(ctx context.Context, channels ...string) (<-chan *RedisMessage, func(), error) {
	full := make([]string, len(channels))
	for i, c := range channels {
		full[i] = r.prefix + c
	}
	ps := r.client.Subscribe(ctx, full...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("redis subscribe: %w", err)
	}
	ch := make(chan *RedisMessage, r.buffer)
	go func() {
		defer close(ch)
		for msg := range ps.Channel() {
			ch <- &RedisMessage{
				Channel: strings.TrimPrefix(msg.Channel, r.prefix),
				Payload: msg.Payload,
			}
		}
	}()
	cancel := func() {
		_ = ps.Close()
	}
	return ch, cancel, nil
}

// Close releases the connection pool.
func (r *RedisPubSub) Close() error { return r.client.Close() }
