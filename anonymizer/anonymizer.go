// Package anonymizer substitutes identifiers with opaque codes on export and
// restores them on import.
package anonymizer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// Anonymizer maps strings to and from pseudo identifiers.
type Anonymizer interface {
	Anonymize(ctx context.Context, s string) (string, error)
	Deanonymize(ctx context.Context, s string) (string, error)
}

// FakeAnonymizer returns every string unchanged.
type FakeAnonymizer struct{}

// Anonymize implements Anonymizer.
func (FakeAnonymizer) Anonymize(_ context.Context, s string) (string, error) { return s, nil }

// Deanonymize implements Anonymizer.
func (FakeAnonymizer) Deanonymize(_ context.Context, s string) (string, error) { return s, nil }

// SimpleAnonymizer assigns base-26 codes (A, B, ..., Z, AA, ...) in first-seen
// order. The empty string is always kept as is.
type SimpleAnonymizer struct {
	store Store
}

// NewSimpleAnonymizer returns an anonymizer keeping its mapping in store, or
// in a fresh memory store when store is nil.
func NewSimpleAnonymizer(store Store) *SimpleAnonymizer {
	if store == nil {
		store = NewMemoryStore()
	}
	return &SimpleAnonymizer{store: store}
}

// Anonymize implements Anonymizer.
func (a *SimpleAnonymizer) Anonymize(ctx context.Context, s string) (string, error) {
	if s == "" {
		return s, nil
	}
	return a.store.Assign(ctx, s)
}

// Deanonymize implements Anonymizer. An unknown code fails with
// ErrMappingNotFound.
func (a *SimpleAnonymizer) Deanonymize(ctx context.Context, s string) (string, error) {
	if s == "" {
		return s, nil
	}
	return a.store.Original(ctx, s)
}

// Mappings returns the pairs assigned so far, in assignment order.
func (a *SimpleAnonymizer) Mappings(ctx context.Context) ([]Mapping, error) {
	return a.store.Mappings(ctx)
}

// Read loads "original;code" lines into the mapping. Lines are taken
// verbatim; the code is everything after the last separator.
func (a *SimpleAnonymizer) Read(ctx context.Context, r io.Reader) error {
	sc := bufio.NewScanner(r)
	count, lineNo := 0, 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			continue
		}
		i := strings.LastIndexByte(line, Separator)
		if i < 0 || i == len(line)-1 {
			return fmt.Errorf("%w: line %d: expected original%ccode, got %q", ErrMalformedMapping, lineNo, Separator, line)
		}
		if err := a.store.Put(ctx, line[:i], line[i+1:]); err != nil {
			return err
		}
		count++
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading anonymization mapping: %w", err)
	}
	log.Debug().Int("mappings", count).Msg("anonymization mapping loaded")
	return nil
}

// Write saves the mapping as "original;code" lines, in assignment order.
func (a *SimpleAnonymizer) Write(ctx context.Context, w io.Writer) error {
	mappings, err := a.store.Mappings(ctx)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, m := range mappings {
		bw.WriteString(m.Original)
		bw.WriteByte(Separator)
		bw.WriteString(m.Code)
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing anonymization mapping: %w", err)
	}
	return nil
}
