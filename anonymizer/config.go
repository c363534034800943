package anonymizer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config selects where the anonymization mapping lives.
type Config struct {
	StorageType string `mapstructure:"storage_type" yaml:"storage_type"` // "memory" or "redis"
	KeyPrefix   string `mapstructure:"key_prefix" yaml:"key_prefix"`     // redis only
	MappingFile string `mapstructure:"mapping_file" yaml:"mapping_file"` // optional "original;code" file loaded at startup
}

// ValidateAndPrepare checks the config and fills defaults.
func (c *Config) ValidateAndPrepare() error {
	if c.StorageType == "" {
		c.StorageType = StorageMemory
	}
	if c.StorageType != StorageMemory && c.StorageType != StorageRedis {
		return fmt.Errorf("invalid storage_type: %s, must be '%s' or '%s'", c.StorageType, StorageMemory, StorageRedis)
	}
	if c.StorageType == StorageMemory && c.KeyPrefix != "" {
		log.Warn().Str("key_prefix", c.KeyPrefix).Msg("key_prefix is ignored by the memory storage")
	}
	if c.StorageType == StorageRedis && c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
	return nil
}

// NewStore creates the store the config asks for. client is only used by
// the redis storage.
func (c *Config) NewStore(client redis.Cmdable) (Store, error) {
	switch c.StorageType {
	case StorageRedis:
		if client == nil {
			return nil, fmt.Errorf("storage_type %s needs a redis client", StorageRedis)
		}
		return NewRedisStore(client, c.KeyPrefix), nil
	case StorageMemory, "":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("invalid storage_type: %s", c.StorageType)
}

// New builds a SimpleAnonymizer on the configured store, loading the mapping
// file when one is set and exists.
func (c *Config) New(ctx context.Context, client redis.Cmdable) (*SimpleAnonymizer, error) {
	store, err := c.NewStore(client)
	if err != nil {
		return nil, err
	}
	a := NewSimpleAnonymizer(store)
	if c.MappingFile == "" {
		return a, nil
	}

	f, err := os.Open(c.MappingFile)
	if errors.Is(err, os.ErrNotExist) {
		log.Info().Str("file", c.MappingFile).Msg("mapping file not found, starting with an empty mapping")
		return a, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening mapping file: %w", err)
	}
	defer f.Close()

	if c.StorageType == StorageRedis {
		lock := NewMappingLock(client, c.KeyPrefix, 0)
		if err := lock.Lock(ctx); err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Unlock(ctx); err != nil {
				log.Warn().Err(err).Str("key", lock.Key()).Msg("failed to release mapping lock")
			}
		}()
	}
	if err := a.Read(ctx, f); err != nil {
		return nil, err
	}
	return a, nil
}
