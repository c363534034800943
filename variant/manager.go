package variant

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/toolink/iidm"
)

// InitialVariantID is the id of the variant every manager starts with.
const InitialVariantID = "InitialVariant"

// Predefined errors for variant management.
var (
	ErrVariantNotFound       = fmt.Errorf("variant %w", iidm.ErrNotFound)
	ErrVariantAlreadyExists  = fmt.Errorf("variant %w", iidm.ErrAlreadyExists)
	ErrInitialVariantRemoval = fmt.Errorf("%w: removing the initial variant is forbidden", iidm.ErrInvalidState)
	ErrEmptyTargetList       = fmt.Errorf("%w: empty target variant list", iidm.ErrInvalidState)
	ErrInconsistentArrays    = fmt.Errorf("%w: variant arrays out of step", iidm.ErrInvalidState)
)

// ObjectSource lists the objects the manager resizes. It is called with the
// manager lock held and must not call back into the manager.
type ObjectSource interface {
	MultiVariantObjects() []MultiVariantObject
}

// ObjectSourceFunc adapts a function to ObjectSource.
type ObjectSourceFunc func() []MultiVariantObject

// MultiVariantObjects implements ObjectSource.
func (f ObjectSourceFunc) MultiVariantObjects() []MultiVariantObject {
	return f()
}

// Option configures a Manager.
type Option func(*Manager)

// WithConsistencyCheck makes every structural operation verify that all
// objects report arrays of the manager's size afterwards.
func WithConsistencyCheck(enabled bool) Option {
	return func(m *Manager) {
		m.checkConsistency = enabled
	}
}

// Manager maps variant ids to array indexes and keeps every registered object
// sized to the current variant dimension.
//
// Structural operations are serialized by one mutex. Reading and writing
// attribute values is not: callers serialize access to one network themselves.
type Manager struct {
	mu               sync.Mutex
	source           ObjectSource
	ids              map[string]int // live variant id -> index
	unused           []int          // freed indexes, ascending
	arraySize        int
	workingID        string
	working          atomic.Int64 // index of workingID, read without the lock
	checkConsistency bool
}

// NewManager creates a manager holding only the initial variant at index 0.
func NewManager(source ObjectSource, opts ...Option) *Manager {
	m := &Manager{
		source:    source,
		ids:       map[string]int{InitialVariantID: 0},
		arraySize: 1,
		workingID: InitialVariantID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// VariantIndex implements Context. It returns the working variant index.
func (m *Manager) VariantIndex() int {
	return int(m.working.Load())
}

// ArraySize returns the number of slots every variant array holds.
func (m *Manager) ArraySize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.arraySize
}

// VariantIDs returns the live variant ids, sorted.
func (m *Manager) VariantIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.ids))
	for id := range m.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// VariantIndexOf returns the index backing variant id.
func (m *Manager) VariantIndexOf(id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexLocked(id)
}

// Exists reports whether variant id is live.
func (m *Manager) Exists(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ids[id]
	return ok
}

// WorkingVariantID returns the id of the working variant.
func (m *Manager) WorkingVariantID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.workingID
}

// SetWorkingVariant makes id the variant unqualified reads and writes go to.
func (m *Manager) SetWorkingVariant(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	index, err := m.indexLocked(id)
	if err != nil {
		return err
	}
	m.workingID = id
	m.working.Store(int64(index))
	log.Debug().Str("variant", id).Int("index", index).Msg("working variant set")
	return nil
}

// CloneVariant creates every target variant as a copy of source. Freed
// indexes are reused first; the arrays are only extended for the remainder.
// Nothing changes when source is unknown or any target already exists.
func (m *Manager) CloneVariant(source string, targets ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cloneLocked(source, targets)
}

func (m *Manager) cloneLocked(source string, targets []string) error {
	if len(targets) == 0 {
		return ErrEmptyTargetList
	}
	sourceIndex, err := m.indexLocked(source)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		_, exists := m.ids[target]
		_, repeated := seen[target]
		if exists || repeated {
			log.Error().Str("variant", target).Msg("attempted to clone into an existing variant")
			return fmt.Errorf("%w: %s", ErrVariantAlreadyExists, target)
		}
		seen[target] = struct{}{}
	}

	var recycled []int
	extendCount := 0
	for _, target := range targets {
		if len(m.unused) > 0 {
			index := m.unused[0]
			m.unused = m.unused[1:]
			recycled = append(recycled, index)
			m.ids[target] = index
		} else {
			m.ids[target] = m.arraySize + extendCount
			extendCount++
		}
	}

	for _, obj := range m.source.MultiVariantObjects() {
		if len(recycled) > 0 {
			obj.AllocateVariantArrayElement(recycled, sourceIndex)
		}
		if extendCount > 0 {
			obj.ExtendVariantArraySize(m.arraySize, extendCount, sourceIndex)
		}
	}
	m.arraySize += extendCount

	log.Debug().
		Str("source", source).
		Strs("targets", targets).
		Ints("recycled", recycled).
		Int("array_size", m.arraySize).
		Msg("variants cloned")
	return m.verifyLocked()
}

// CloneVariantOverwrite copies source into target, creating target if needed
// and overwriting its values otherwise.
func (m *Manager) CloneVariantOverwrite(source, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	targetIndex, exists := m.ids[target]
	if !exists {
		return m.cloneLocked(source, []string{target})
	}

	sourceIndex, err := m.indexLocked(source)
	if err != nil {
		return err
	}
	if sourceIndex == targetIndex {
		return nil
	}
	for _, obj := range m.source.MultiVariantObjects() {
		obj.AllocateVariantArrayElement([]int{targetIndex}, sourceIndex)
	}
	log.Debug().Str("source", source).Str("target", target).Msg("variant overwritten")
	return m.verifyLocked()
}

// RemoveVariant frees the index of variant id. A trailing index is truncated
// from every array together with any freed indexes just before it; an
// interior index is released in place and kept for reuse. Removing the working
// variant makes the initial variant the working one.
func (m *Manager) RemoveVariant(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == InitialVariantID {
		return ErrInitialVariantRemoval
	}
	index, err := m.indexLocked(id)
	if err != nil {
		return err
	}
	delete(m.ids, id)

	objects := m.source.MultiVariantObjects()
	if index == m.arraySize-1 {
		count := 1
		for j := index - 1; j >= 0; j-- {
			pos, found := slices.BinarySearch(m.unused, j)
			if !found {
				break
			}
			m.unused = slices.Delete(m.unused, pos, pos+1)
			count++
		}
		for _, obj := range objects {
			obj.ReduceVariantArraySize(count)
		}
		m.arraySize -= count
	} else {
		pos, _ := slices.BinarySearch(m.unused, index)
		m.unused = slices.Insert(m.unused, pos, index)
		for _, obj := range objects {
			obj.DeleteVariantArrayElement(index)
		}
	}

	if m.workingID == id {
		log.Warn().Str("variant", id).Msg("working variant removed, falling back to the initial variant")
		m.workingID = InitialVariantID
		m.working.Store(int64(m.ids[InitialVariantID]))
	}

	log.Debug().Str("variant", id).Int("index", index).Int("array_size", m.arraySize).Msg("variant removed")
	return m.verifyLocked()
}

// CheckConsistency verifies that every object's arrays match the manager's
// size, regardless of WithConsistencyCheck.
func (m *Manager) CheckConsistency() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checkLocked()
}

func (m *Manager) indexLocked(id string) (int, error) {
	index, ok := m.ids[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrVariantNotFound, id)
	}
	return index, nil
}

func (m *Manager) verifyLocked() error {
	if !m.checkConsistency {
		return nil
	}
	return m.checkLocked()
}

func (m *Manager) checkLocked() error {
	var errs []error
	for _, obj := range m.source.MultiVariantObjects() {
		sized, ok := obj.(Sized)
		if !ok {
			continue
		}
		n, agree := sized.VariantArrayLen()
		if n < 0 {
			continue
		}
		if !agree || n != m.arraySize {
			errs = append(errs, fmt.Errorf("%w: %T has %d slots, expected %d", ErrInconsistentArrays, obj, n, m.arraySize))
		}
	}
	if len(errs) > 0 {
		log.Error().Errs("errors", errs).Msg("variant array consistency check failed")
		return errors.Join(errs...)
	}
	return nil
}
