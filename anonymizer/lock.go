package anonymizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/toolink/iidm"
)

const (
	defaultLockTTL        = 30 * time.Second
	defaultLockRetryDelay = 100 * time.Millisecond
)

var (
	// ErrLockNotAcquired is returned when another process holds the mapping lock.
	ErrLockNotAcquired = fmt.Errorf("%w: mapping lock held by another process", iidm.ErrInvalidState)
	// ErrUnlockFailed is returned when the lock expired or was taken over
	// before Unlock.
	ErrUnlockFailed = fmt.Errorf("%w: mapping lock no longer held", iidm.ErrInvalidState)
)

// unlockScript deletes the lock only if it still holds our value.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// MappingLock serializes loading a mapping file into a shared redis mapping,
// so two processes starting together do not interleave their Put calls with
// each other's Assign calls.
type MappingLock struct {
	client     redis.Cmdable
	key        string
	value      string
	ttl        time.Duration
	retryDelay time.Duration
}

// NewMappingLock returns the lock of the mapping stored under keyPrefix.
func NewMappingLock(client redis.Cmdable, keyPrefix string, ttl time.Duration) *MappingLock {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &MappingLock{
		client:     client,
		key:        "{" + keyPrefix + "}:lock",
		ttl:        ttl,
		retryDelay: defaultLockRetryDelay,
	}
}

// Key returns the redis key of the lock.
func (l *MappingLock) Key() string {
	return l.key
}

func (l *MappingLock) tryLock(ctx context.Context) error {
	value := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, value, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquiring mapping lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}
	l.value = value
	return nil
}

// TryLock acquires the lock without waiting.
func (l *MappingLock) TryLock(ctx context.Context) error {
	if err := l.tryLock(ctx); err != nil {
		return err
	}
	log.Debug().Str("key", l.key).Msg("mapping lock acquired")
	return nil
}

// Lock waits for the lock until ctx is done.
func (l *MappingLock) Lock(ctx context.Context) error {
	ticker := time.NewTicker(l.retryDelay)
	defer ticker.Stop()

	attempts := 0
	for {
		attempts++
		err := l.tryLock(ctx)
		if err == nil {
			log.Debug().Str("key", l.key).Int("attempts", attempts).Msg("mapping lock acquired")
			return nil
		}
		if !errors.Is(err, ErrLockNotAcquired) {
			return err
		}
		select {
		case <-ctx.Done():
			log.Warn().Err(ctx.Err()).Str("key", l.key).Int("attempts", attempts).Msg("gave up waiting for mapping lock")
			return fmt.Errorf("%w: %w", ErrLockNotAcquired, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Unlock releases the lock if this instance still holds it.
func (l *MappingLock) Unlock(ctx context.Context) error {
	if l.value == "" {
		return ErrUnlockFailed
	}
	value := l.value
	l.value = ""

	n, err := unlockScript.Run(ctx, l.client, []string{l.key}, value).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Error().Err(err).Str("key", l.key).Msg("failed to run unlock script")
		return fmt.Errorf("releasing mapping lock: %w", err)
	}
	if n != 1 {
		log.Warn().Str("key", l.key).Msg("mapping lock expired before unlock")
		return ErrUnlockFailed
	}
	log.Debug().Str("key", l.key).Msg("mapping lock released")
	return nil
}
