// Package cache stores session tokens and fans out session events. Redis is
// used when configured, otherwise an in-process store.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/kasuganosora/relicsave/cache/local"
	cacheredis "github.com/kasuganosora/relicsave/cache/redis"
	"github.com/kasuganosora/relicsave/config"
)

// ErrNotFound is returned when a key does not exist or has expired.
var ErrNotFound = errors.New("cache: key not found")

// Cache is the KV store behind session tokens.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Message is a received pub/sub message.
type Message struct {
	Channel string
	Payload string
}

// PubSub publishes session events to subscribers.
type PubSub interface {
	Publish(ctx context.Context, channel, message string) error
	Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error)
}

// TokenKey is the key holding the session id a token was issued for.
func TokenKey(token string) string { return "session:" + token }

// EventChannel is the pub/sub channel of one session's events.
func EventChannel(sessionID string) string { return "events:" + sessionID }

// NewCache returns a Cache backed by Redis if RedisAddr is set,
// otherwise an in-process LocalCache.
func NewCache(cfg config.CacheConfig) (Cache, error) {
	if cfg.RedisAddr != "" {
		c, err := cacheredis.NewCache(redisConfig(cfg))
		if err != nil {
			return nil, err
		}
		return &redisCache{c}, nil
	}
	c, err := local.NewCache(local.Config{GCInterval: cfg.LocalGCInterval})
	if err != nil {
		return nil, err
	}
	return &localCache{c}, nil
}

// NewPubSub returns a PubSub backed by Redis if RedisAddr is set,
// otherwise an in-process LocalPubSub.
func NewPubSub(cfg config.CacheConfig) (PubSub, error) {
	if cfg.RedisAddr != "" {
		rps, err := cacheredis.NewPubSub(redisConfig(cfg))
		if err != nil {
			return nil, err
		}
		return &redisPubSubAdapter{ps: rps}, nil
	}
	return &localPubSubAdapter{ps: local.NewPubSub(0)}, nil
}

// keyPrefix keeps editor keys apart from other tenants of a shared Redis.
const keyPrefix = "relicsave:"

func redisConfig(cfg config.CacheConfig) cacheredis.Config {
	return cacheredis.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   keyPrefix,
	}
}

// ---- adapters mapping backend errors and message types ----

func mapNotFound(err error) error {
	if errors.Is(err, local.ErrNotFound) || errors.Is(err, cacheredis.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

type localCache struct{ *local.LocalCache }

func (c *localCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.LocalCache.Get(ctx, key)
	return v, mapNotFound(err)
}

func (c *localCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return mapNotFound(c.LocalCache.Expire(ctx, key, ttl))
}

type redisCache struct{ *cacheredis.RedisCache }

func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.RedisCache.Get(ctx, key)
	return v, mapNotFound(err)
}

func (c *redisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return mapNotFound(c.RedisCache.Expire(ctx, key, ttl))
}

type localPubSubAdapter struct {
	ps *local.LocalPubSub
}

func (a *localPubSubAdapter) Publish(ctx context.Context, channel, message string) error {
	return a.ps.Publish(ctx, channel, message)
}

func (a *localPubSubAdapter) Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
	localCh, cancel, err := a.ps.Subscribe(ctx, channels...)
	if err != nil {
		return nil, nil, err
	}
	out := make(chan *Message, 64)
	go func() {
		defer close(out)
		for msg := range localCh {
			out <- &Message{Channel: msg.Channel, Payload: msg.Payload}
		}
	}()
	return out, cancel, nil
}

type redisPubSubAdapter struct {
	ps *cacheredis.RedisPubSub
}

func (a *redisPubSubAdapter) Publish(ctx context.Context, channel, message string) error {
	return a.ps.Publish(ctx, channel, message)
}

func (a *redisPubSubAdapter) Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
	redisCh, cancel, err := a.ps.Subscribe(ctx, channels...)
	if err != nil {
		return nil, nil, err
	}
	out := make(chan *Message, 64)
	go func() {
		defer close(out)
		for msg := range redisCh {
			out <- &Message{Channel: msg.Channel, Payload: msg.Payload}
		}
	}()
	return out, cancel, nil
}
