// Package cache decorates an EmbeddingService with a Redis-backed vector cache.
//
// Keys are kbrag:emb:{model}:{xxhash64(text)} and values are little-endian
// float32 vectors. Redis failures are logged and fall through to the
// wrapped service; they never fail an embedding request.
package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/logger"
)

// Ensure Service implements the interface.
var _ driven.EmbeddingService = (*Service)(nil)

// DefaultTTL is how long cached vectors live.
const DefaultTTL = 7 * 24 * time.Hour

// KeyPrefix namespaces every cache key.
const KeyPrefix = "kbrag:emb:"

// Service caches embeddings produced by an inner service.
type Service struct {
	inner driven.EmbeddingService
	rdb   *redis.Client
	ttl   time.Duration
}

// New wraps inner with a cache stored in rdb. A zero ttl uses DefaultTTL.
func New(inner driven.EmbeddingService, rdb *redis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{inner: inner, rdb: rdb, ttl: ttl}
}

// Dial connects to Redis at addr and verifies it with a ping.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// Key returns the cache key for text under model.
func Key(model, text string) string {
	return fmt.Sprintf("%s%s:%016x", KeyPrefix, model, xxhash.Sum64String(text))
}

// Embed returns a cached vector or computes and stores it.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch looks every text up in one round trip and embeds only the misses.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	model := s.inner.ModelName()
	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = Key(model, t)
	}

	out := make([][]float32, len(texts))
	var missIdx []int

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		logger.Warn("embedding cache: lookup failed: %v", err)
		values = make([]any, len(keys))
	}
	for i, v := range values {
		if str, ok := v.(string); ok {
			if vec, err := decode([]byte(str)); err == nil {
				out[i] = vec
				continue
			}
		}
		missIdx = append(missIdx, i)
	}

	logger.Debug("embedding cache: %d hits, %d misses", len(texts)-len(missIdx), len(missIdx))
	if len(missIdx) == 0 {
		return out, nil
	}

	missTexts := make([]string, len(missIdx))
	for j, i := range missIdx {
		missTexts[j] = texts[i]
	}
	computed, err := s.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(computed) != len(missIdx) {
		return nil, fmt.Errorf("embedding cache: inner service returned %d vectors for %d texts", len(computed), len(missIdx))
	}

	pipe := s.rdb.Pipeline()
	for j, i := range missIdx {
		out[i] = computed[j]
		pipe.Set(ctx, keys[i], encode(computed[j]), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("embedding cache: store failed: %v", err)
	}

	return out, nil
}

// Dimensions returns the inner service's vector size.
func (s *Service) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the inner service's model.
func (s *Service) ModelName() string {
	return s.inner.ModelName()
}

// Ping checks the inner service. Cache health does not affect the result.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("embedding cache: ping failed: %v", err)
	}
	return s.inner.Ping(ctx)
}

// Close closes the Redis client and the inner service.
func (s *Service) Close() error {
	return errors.Join(s.rdb.Close(), s.inner.Close())
}

func encode(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decode(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("embedding cache: corrupt entry of %d bytes", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
