package anonymizer

import (
	"context"
	"fmt"

	"github.com/toolink/iidm"
)

// Predefined errors for anonymization.
var (
	ErrMappingNotFound  = fmt.Errorf("anonymization mapping %w", iidm.ErrNotFound)
	ErrMappingConflict  = fmt.Errorf("anonymization mapping %w", iidm.ErrAlreadyExists)
	ErrMalformedMapping = fmt.Errorf("%w: malformed anonymization mapping", iidm.ErrValidation)
)

// Mapping pairs an original string with its code.
type Mapping struct {
	Original string
	Code     string
}

// Store keeps a bijective mapping between original strings and codes.
type Store interface {
	// Assign returns the code of original, assigning the next free code when
	// original has none yet. It must be atomic.
	Assign(ctx context.Context, original string) (string, error)

	// Original returns the string code was assigned to, or ErrMappingNotFound.
	Original(ctx context.Context, code string) (string, error)

	// Put records a known pair, typically read back from a mapping file. A
	// pair conflicting with an existing one fails with ErrMappingConflict.
	Put(ctx context.Context, original, code string) error

	// Mappings returns every pair in assignment order.
	Mappings(ctx context.Context) ([]Mapping, error)
}

// Code returns the bijective base-26 numeral of n >= 1: A, B, ..., Z, AA, AB, ...
func Code(n int64) string {
	var buf [16]byte
	i := len(buf)
	for n > 0 {
		n--
		i--
		buf[i] = byte('A' + n%26)
		n /= 26
	}
	return string(buf[i:])
}
