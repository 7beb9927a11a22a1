// Package redis keeps subscriptions in redis, one sorted set per resource
// scored by the time of subscription.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eachchat/mob-push/pkg/push"
	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "mobpush:subscribers:"

var _ push.SubscriptionRegistry[string] = (*Store)(nil)

// Config locates the redis server.
type Config struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// KeyPrefix namespaces the sorted sets.
	// Default: DefaultKeyPrefix
	KeyPrefix string `yaml:"key_prefix"`
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	if c.DB < 0 {
		return fmt.Errorf("redis db must not be negative")
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
	return nil
}

type Store struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// NewClient connects to the server described by cfg and checks it answers.
func NewClient(ctx context.Context, cfg *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func New(client redis.Cmdable, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{client: client, prefix: prefix, now: time.Now}
}

func (s *Store) key(resource string) string {
	return s.prefix + resource
}

func (s *Store) FetchAllSubscribers(ctx context.Context, resource string) ([]push.AudienceMember, error) {
	rids, err := s.client.ZRange(ctx, s.key(resource), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed fetch subscribers of %s: %w", resource, err)
	}

	members := make([]push.AudienceMember, len(rids))
	for i, rid := range rids {
		members[i] = push.RegistrationID(rid)
	}
	return members, nil
}

// Subscribe adds rid with the current time as score. NX keeps the score of
// an existing subscription and with it its position.
func (s *Store) Subscribe(ctx context.Context, resource, rid string) error {
	err := s.client.ZAddNX(ctx, s.key(resource), redis.Z{
		Score:  float64(s.now().UnixMicro()),
		Member: rid,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed subscribe %s to %s: %w", rid, resource, err)
	}
	return nil
}

func (s *Store) Unsubscribe(ctx context.Context, resource, rid string) error {
	if err := s.client.ZRem(ctx, s.key(resource), rid).Err(); err != nil {
		return fmt.Errorf("failed unsubscribe %s from %s: %w", rid, resource, err)
	}
	return nil
}

func (s *Store) IsSubscribed(ctx context.Context, resource, rid string) (bool, error) {
	err := s.client.ZScore(ctx, s.key(resource), rid).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("failed check subscription of %s to %s: %w", rid, resource, err)
	}
}
