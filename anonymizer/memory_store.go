package anonymizer

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// memoryStore implements the Store interface using in-memory maps.
type memoryStore struct {
	mu       sync.Mutex
	forward  map[string]string // original -> code
	reverse  map[string]string // code -> original
	order    []string          // originals, in assignment order
	sequence int64
}

// NewMemoryStore creates a new in-memory mapping store.
func NewMemoryStore() Store {
	return &memoryStore{
		forward: make(map[string]string),
		reverse: make(map[string]string),
	}
}

// Assign implements the Store interface for memory storage.
func (s *memoryStore) Assign(_ context.Context, original string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if code, exists := s.forward[original]; exists {
		return code, nil
	}

	// skip codes taken by pairs loaded with Put
	var code string
	for {
		s.sequence++
		code = Code(s.sequence)
		if _, taken := s.reverse[code]; !taken {
			break
		}
	}
	s.add(original, code)
	log.Debug().Str("code", code).Int64("sequence", s.sequence).Msg("code assigned")
	return code, nil
}

// Original implements the Store interface for memory storage.
func (s *memoryStore) Original(_ context.Context, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, exists := s.reverse[code]
	if !exists {
		return "", fmt.Errorf("%w: code %s", ErrMappingNotFound, code)
	}
	return original, nil
}

// Put implements the Store interface for memory storage.
func (s *memoryStore) Put(_ context.Context, original, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existingCode, hasOriginal := s.forward[original]
	existingOriginal, hasCode := s.reverse[code]
	switch {
	case hasOriginal && existingCode == code:
		return nil
	case hasOriginal || hasCode:
		log.Error().Str("code", code).Str("existing_code", existingCode).Str("existing_original", existingOriginal).Msg("conflicting mapping")
		return fmt.Errorf("%w: %s;%s", ErrMappingConflict, original, code)
	}
	s.add(original, code)
	return nil
}

// Mappings implements the Store interface for memory storage.
func (s *memoryStore) Mappings(_ context.Context) ([]Mapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mappings := make([]Mapping, 0, len(s.order))
	for _, original := range s.order {
		mappings = append(mappings, Mapping{Original: original, Code: s.forward[original]})
	}
	return mappings, nil
}

func (s *memoryStore) add(original, code string) {
	s.forward[original] = code
	s.reverse[code] = original
	s.order = append(s.order, original)
}
