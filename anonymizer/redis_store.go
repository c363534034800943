package anonymizer

import (
	"context"
	_ "embed" // needed for go:embed
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var (
	//go:embed assign.lua
	assignScriptSource string
	//go:embed put.lua
	putScriptSource string

	assignScript = redis.NewScript(assignScriptSource)
	putScript    = redis.NewScript(putScriptSource)
)

// redisStore implements the Store interface using Redis, so several exports
// can share one mapping.
type redisStore struct {
	client redis.Cmdable // Use Cmdable for compatibility with ClusterClient, SentinelClient, etc.
	keys   []string      // forward, reverse, sequence, order
}

// NewRedisStore creates a new Redis mapping store under keyPrefix, or
// DefaultKeyPrefix when keyPrefix is empty.
// It expects a pre-configured redis.Cmdable (e.g., redis.Client or redis.ClusterClient).
func NewRedisStore(client redis.Cmdable, keyPrefix string) Store {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	// hash tag keeps the four keys in one cluster slot
	tag := "{" + keyPrefix + "}"
	return &redisStore{
		client: client,
		keys: []string{
			tag + ":forward",
			tag + ":reverse",
			tag + ":sequence",
			tag + ":order",
		},
	}
}

// Assign implements the Store interface for Redis storage using a Lua script for atomicity.
func (s *redisStore) Assign(ctx context.Context, original string) (string, error) {
	code, err := assignScript.Run(ctx, s.client, s.keys, original).Text()
	if err != nil {
		log.Error().Err(err).Msg("redis lua script execution failed")
		return "", fmt.Errorf("assigning code: %w", err)
	}
	return code, nil
}

// Original implements the Store interface for Redis storage.
func (s *redisStore) Original(ctx context.Context, code string) (string, error) {
	original, err := s.client.HGet(ctx, s.keys[1], code).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: code %s", ErrMappingNotFound, code)
	}
	if err != nil {
		return "", fmt.Errorf("redis command failed for code %s: %w", code, err)
	}
	return original, nil
}

// Put implements the Store interface for Redis storage using a Lua script for atomicity.
func (s *redisStore) Put(ctx context.Context, original, code string) error {
	stored, err := putScript.Run(ctx, s.client, s.keys, original, code).Int64()
	if err != nil {
		log.Error().Err(err).Msg("redis lua script execution failed")
		return fmt.Errorf("storing mapping: %w", err)
	}
	if stored != 1 {
		log.Error().Str("code", code).Msg("conflicting mapping")
		return fmt.Errorf("%w: %s;%s", ErrMappingConflict, original, code)
	}
	return nil
}

// Mappings implements the Store interface for Redis storage.
func (s *redisStore) Mappings(ctx context.Context) ([]Mapping, error) {
	originals, err := s.client.LRange(ctx, s.keys[3], 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis command failed: %w", err)
	}
	if len(originals) == 0 {
		return nil, nil
	}
	codes, err := s.client.HMGet(ctx, s.keys[0], originals...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis command failed: %w", err)
	}

	mappings := make([]Mapping, 0, len(originals))
	for i, original := range originals {
		code, ok := codes[i].(string)
		if !ok {
			log.Warn().Str("key", s.keys[3]).Int("position", i).Msg("order list entry without code")
			continue
		}
		mappings = append(mappings, Mapping{Original: original, Code: code})
	}
	return mappings, nil
}
