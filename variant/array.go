// Package variant stores per-scenario attribute values and keeps every
// variant-aware object of a network sized to the same variant dimension.
package variant

import "fmt"

// Context resolves the variant index that unqualified reads and writes use.
type Context interface {
	VariantIndex() int
}

// Resizable is implemented by anything holding one slot per variant index.
// The manager drives these operations; callers never invoke them directly.
type Resizable interface {
	// Extend appends count slots, each a copy of the slot at sourceIndex.
	// initSize is the size the caller expects the array to have beforehand.
	Extend(initSize, count, sourceIndex int)
	// Allocate overwrites every slot in indexes with a copy of sourceIndex.
	Allocate(indexes []int, sourceIndex int)
	// Reduce drops the last count slots.
	Reduce(count int)
	// Delete releases the slot at index without resizing.
	Delete(index int)
	// Len reports the number of slots.
	Len() int
}

// Array holds the values of one attribute, one slot per variant index.
type Array[T any] struct {
	ctx    Context
	values []T
}

// NewArray creates an array of size slots, all set to initial.
func NewArray[T any](ctx Context, size int, initial T) *Array[T] {
	values := make([]T, size)
	for i := range values {
		values[i] = initial
	}
	return &Array[T]{ctx: ctx, values: values}
}

// Get returns the value under the working variant.
func (a *Array[T]) Get() T {
	return a.values[a.ctx.VariantIndex()]
}

// GetAt returns the value under the variant at index.
// An out of range index is a programming error and panics.
func (a *Array[T]) GetAt(index int) T {
	return a.values[index]
}

// Set replaces the value under the working variant and returns the old one.
func (a *Array[T]) Set(value T) T {
	return a.SetAt(a.ctx.VariantIndex(), value)
}

// SetAt replaces the value under the variant at index and returns the old one.
func (a *Array[T]) SetAt(index int, value T) T {
	old := a.values[index]
	a.values[index] = value
	return old
}

// Extend implements Resizable.
func (a *Array[T]) Extend(initSize, count, sourceIndex int) {
	if initSize != len(a.values) {
		panic(fmt.Sprintf("variant array size is %d, expected %d", len(a.values), initSize))
	}
	source := a.values[sourceIndex]
	for i := 0; i < count; i++ {
		a.values = append(a.values, source)
	}
}

// Allocate implements Resizable.
func (a *Array[T]) Allocate(indexes []int, sourceIndex int) {
	source := a.values[sourceIndex]
	for _, index := range indexes {
		a.values[index] = source
	}
}

// Reduce implements Resizable.
func (a *Array[T]) Reduce(count int) {
	n := len(a.values) - count
	clear(a.values[n:])
	a.values = a.values[:n]
}

// Delete implements Resizable.
func (a *Array[T]) Delete(index int) {
	var zero T
	a.values[index] = zero
}

// Len implements Resizable.
func (a *Array[T]) Len() int {
	return len(a.values)
}
