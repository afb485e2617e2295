// Copyright (c) Microsoft. All rights reserved.

// Package redis provides a redis-backed message store, letting sessions
// survive process restarts and be shared across instances.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/microsoft/agentic-ai/agentic"
)

// Store persists a session's messages in a redis list, one JSON-encoded
// message per element. It implements [agentic.MessageStore].
type Store struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// Option configures a [Store].
type Option func(*config)

type config struct {
	password  string
	db        int
	ttl       time.Duration
	keyPrefix string
}

// WithPassword sets the redis AUTH password.
func WithPassword(password string) Option {
	return func(c *config) { c.password = password }
}

// WithDB selects the redis logical database.
func WithDB(db int) Option {
	return func(c *config) { c.db = db }
}

// WithTTL expires the session key after the given idle duration. The TTL is
// refreshed on every write.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) { c.ttl = ttl }
}

// WithKeyPrefix overrides the default "session:" key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(c *config) { c.keyPrefix = prefix }
}

// New connects to redis and returns a store for the given session ID.
func New(ctx context.Context, addr, sessionID string, opts ...Option) (*Store, error) {
	cfg := config{keyPrefix: "session:"}
	for _, opt := range opts {
		opt(&cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.password,
		DB:       cfg.db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Store{
		client: client,
		key:    cfg.keyPrefix + sessionID,
		ttl:    cfg.ttl,
	}, nil
}

// ListMessages returns all stored messages in insertion order.
func (s *Store) ListMessages(ctx context.Context) ([]agentic.Message, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis lrange %s: %w", s.key, err)
	}

	msgs := make([]agentic.Message, 0, len(raw))
	for i, item := range raw {
		var m agentic.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("decode message %d in %s: %w", i, s.key, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// AddMessages appends messages to the session's list.
func (s *Store) AddMessages(ctx context.Context, msgs []agentic.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]any, 0, len(msgs))
	for i, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode message %d: %w", i, err)
		}
		values = append(values, data)
	}
	if err := s.client.RPush(ctx, s.key, values...).Err(); err != nil {
		return fmt.Errorf("redis rpush %s: %w", s.key, err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, s.key, s.ttl).Err(); err != nil {
			return fmt.Errorf("redis expire %s: %w", s.key, err)
		}
	}
	return nil
}

// Serialize returns the store's identifying state. Message payloads live in
// redis, so only the key is recorded.
func (s *Store) Serialize() (map[string]any, error) {
	return map[string]any{
		"key": s.key,
	}, nil
}

// Clear deletes the session's messages.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", s.key, err)
	}
	return nil
}

// Close releases the redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
