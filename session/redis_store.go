package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces satgate keys
const DefaultRedisPrefix = "satgate:"

// demoPaymentTTL bounds the lifetime of simulated quotes
const demoPaymentTTL = 24 * time.Hour

// RedisStore implements Store using Redis, so that several bridge processes
// can share one credential.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func (s *RedisStore) credentialKey() string {
	return s.prefix + "credential"
}

func (s *RedisStore) demoKey(quoteID string) string {
	return s.prefix + "demo:" + quoteID
}

func (s *RedisStore) Credential(ctx context.Context) (*Credential, error) {
	ret := &Credential{}
	found, err := s.get(ctx, s.credentialKey(), ret)
	if !found || err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *RedisStore) SetCredential(ctx context.Context, credential *Credential) error {
	if credential == nil {
		if err := s.client.Del(ctx, s.credentialKey()).Err(); err != nil {
			return fmt.Errorf("failed to delete credential: %w", err)
		}
		return nil
	}
	var ttl time.Duration
	if credential.ExpiresIn > 0 {
		ttl = time.Until(credential.ExpiresAt())
		if ttl <= 0 {
			ttl = time.Second
		}
	}
	return s.set(ctx, s.credentialKey(), credential, ttl)
}

func (s *RedisStore) DemoPayment(ctx context.Context, quoteID string) (*DemoPayment, error) {
	ret := &DemoPayment{}
	found, err := s.get(ctx, s.demoKey(quoteID), ret)
	if !found || err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *RedisStore) PutDemoPayment(ctx context.Context, payment *DemoPayment) error {
	return s.set(ctx, s.demoKey(payment.QuoteID), payment, demoPaymentTTL)
}

func (s *RedisStore) MarkDemoPaid(ctx context.Context, quoteID string) (bool, error) {
	payment, err := s.DemoPayment(ctx, quoteID)
	if err != nil || payment == nil {
		return false, err
	}
	if payment.Paid {
		return true, nil
	}
	payment.Paid = true
	return true, s.PutDemoPayment(ctx, payment)
}

func (s *RedisStore) get(ctx context.Context, key string, target interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %v: %w", key, err)
	}
	if err = json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("failed to decode %v: %w", key, err)
	}
	return true, nil
}

func (s *RedisStore) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %v: %w", key, err)
	}
	if err = s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %v: %w", key, err)
	}
	return nil
}

// Client returns the underlying Redis client
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// NewRedisStore connects to redisURL and creates a store
func NewRedisStore(ctx context.Context, redisURL string, prefix string) (*RedisStore, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(options)
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}
