package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-aadhaar-verifier/document/aadhaar"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("result not cached")

// Should be safe to use concurrently. Only masked results are ever stored,
// keys are digests of the request so no raw document text reaches the cache.
type ResultCache interface {
	// Store the result under key, replacing whatever was there.
	Store(ctx context.Context, key string, result aadhaar.VerificationResult) error

	// Retrieve the result stored under key. Returns ErrCacheMiss when there
	// is none or it has expired.
	Retrieve(ctx context.Context, key string) (aadhaar.VerificationResult, error)
}

// cacheKey digests the operation name and its inputs. The parts are length
// prefixed so that moving text between fields changes the key.
func cacheKey(operation string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(operation))
	for _, part := range parts {
		fmt.Fprintf(h, "\x00%d:%s", len(part), part)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func createKey(namespace, digest string) string {
	return fmt.Sprintf("%s:result:%s", namespace, digest)
}

const DefaultCacheTTL = 10 * time.Minute

// ------------------------------------------------------------------------------

type RedisResultCache struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

func NewRedisResultCache(client *redis.Client, namespace string, ttl time.Duration) *RedisResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisResultCache{client: client, namespace: namespace, ttl: ttl}
}

func (c *RedisResultCache) Store(ctx context.Context, key string, result aadhaar.VerificationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return c.client.Set(ctx, createKey(c.namespace, key), payload, c.ttl).Err()
}

func (c *RedisResultCache) Retrieve(ctx context.Context, key string) (aadhaar.VerificationResult, error) {
	payload, err := c.client.Get(ctx, createKey(c.namespace, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return aadhaar.VerificationResult{}, ErrCacheMiss
	}
	if err != nil {
		return aadhaar.VerificationResult{}, err
	}

	var result aadhaar.VerificationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return aadhaar.VerificationResult{}, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return result, nil
}

// ------------------------------------------------------------------------------

type cacheEntry struct {
	result    aadhaar.VerificationResult
	expiresAt time.Time
}

type InMemoryResultCache struct {
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
	mutex   sync.RWMutex
}

func NewInMemoryResultCache(ttl time.Duration) *InMemoryResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &InMemoryResultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *InMemoryResultCache) Store(_ context.Context, key string, result aadhaar.VerificationResult) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	for k, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{result: result, expiresAt: now.Add(c.ttl)}
	return nil
}

func (c *InMemoryResultCache) Retrieve(_ context.Context, key string) (aadhaar.VerificationResult, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, ok := c.entries[key]
	if !ok || !c.now().Before(entry.expiresAt) {
		return aadhaar.VerificationResult{}, ErrCacheMiss
	}
	return entry.result, nil
}

func (c *InMemoryResultCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}
