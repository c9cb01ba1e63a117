package persist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// RedisClient is the subset of a Redis client the backend needs. It matches
// the method set of github.com/redis/go-redis/v9 through small adapters.
type RedisClient interface {
	Get(ctx context.Context, key string) RedisStringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) RedisStatusCmd
	Del(ctx context.Context, keys ...string) RedisIntCmd
	Keys(ctx context.Context, pattern string) RedisStringSliceCmd
}

// RedisStringCmd represents a Redis string command result.
type RedisStringCmd interface {
	Result() (string, error)
}

// RedisStatusCmd represents a Redis status command result.
type RedisStatusCmd interface {
	Err() error
}

// RedisIntCmd represents a Redis int command result.
type RedisIntCmd interface {
	Err() error
}

// RedisStringSliceCmd represents a Redis multi-string command result.
type RedisStringSliceCmd interface {
	Result() ([]string, error)
}

// ErrRedisNil is the error a client reports for a missing key.
// It matches redis.Nil from go-redis by message.
var ErrRedisNil = errors.New("redis: nil")

// Redis is a Backend over a Redis client. A positive TTL makes records
// expire, which suits session-scoped persistence.
type Redis struct {
	client  RedisClient
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// RedisOption configures a Redis backend.
type RedisOption func(*redisConfig)

type redisConfig struct {
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// WithRedisPrefix sets a namespace prepended to every key. Default: "vuey:".
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *redisConfig) {
		c.prefix = prefix
	}
}

// WithRedisTTL makes records expire after d. Default: 0 (no expiry).
func WithRedisTTL(d time.Duration) RedisOption {
	return func(c *redisConfig) {
		c.ttl = d
	}
}

// WithRedisTimeout bounds each command. Default: DefaultTimeout.
func WithRedisTimeout(d time.Duration) RedisOption {
	return func(c *redisConfig) {
		c.timeout = d
	}
}

// NewRedis creates a Redis backend. The caller owns client.
func NewRedis(client RedisClient, opts ...RedisOption) *Redis {
	cfg := &redisConfig{
		prefix:  "vuey:",
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Redis{
		client:  client,
		prefix:  cfg.prefix,
		ttl:     cfg.ttl,
		timeout: cfg.timeout,
	}
}

func isRedisNil(err error) bool {
	return errors.Is(err, ErrRedisNil) || err.Error() == ErrRedisNil.Error()
}

// Get implements Backend.
func (r *Redis) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if isRedisNil(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("persist: read %q: %w", key, err)
	}
	return value, true, nil
}

// Set implements Backend.
func (r *Redis) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("persist: write %q: %w", key, err)
	}
	return nil
}

// Delete implements Deleter.
func (r *Redis) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("persist: delete %q: %w", key, err)
	}
	return nil
}

// Keys implements Lister. Glob metacharacters in prefix are escaped.
func (r *Redis) Keys(prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	pattern := globEscape(r.prefix+prefix) + "*"
	raw, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("persist: list: %w", err)
	}

	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, strings.TrimPrefix(k, r.prefix))
	}
	sort.Strings(keys)
	return keys, nil
}

func globEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
