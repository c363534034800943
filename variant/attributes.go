package variant

// MultiVariantObject is implemented by every object whose attribute values
// differ between variants. The manager calls these hooks on each structural
// change so that all objects stay sized to the same variant dimension.
type MultiVariantObject interface {
	ExtendVariantArraySize(initSize, count, sourceIndex int)
	ReduceVariantArraySize(count int)
	DeleteVariantArrayElement(index int)
	AllocateVariantArrayElement(indexes []int, sourceIndex int)
}

// Sized is implemented by objects able to report the length of their variant
// arrays. It is used by the manager's consistency check.
type Sized interface {
	// VariantArrayLen returns the common length of the arrays, and false
	// when the arrays disagree.
	VariantArrayLen() (int, bool)
}

// Attributes groups the variant arrays of one object. Embedding it makes the
// object a MultiVariantObject whose hooks reach every tracked array, so a new
// attribute only has to be created through NewAttribute to take part.
type Attributes struct {
	arrays []Resizable
}

// Track adds arrays to the group.
func (a *Attributes) Track(arrays ...Resizable) {
	a.arrays = append(a.arrays, arrays...)
}

// NewAttribute creates an array sized to the context's current variant
// dimension and tracks it in attrs.
func NewAttribute[T any](attrs *Attributes, ctx Context, size int, initial T) *Array[T] {
	arr := NewArray(ctx, size, initial)
	attrs.Track(arr)
	return arr
}

// ExtendVariantArraySize implements MultiVariantObject.
func (a *Attributes) ExtendVariantArraySize(initSize, count, sourceIndex int) {
	for _, arr := range a.arrays {
		arr.Extend(initSize, count, sourceIndex)
	}
}

// ReduceVariantArraySize implements MultiVariantObject.
func (a *Attributes) ReduceVariantArraySize(count int) {
	for _, arr := range a.arrays {
		arr.Reduce(count)
	}
}

// DeleteVariantArrayElement implements MultiVariantObject.
func (a *Attributes) DeleteVariantArrayElement(index int) {
	for _, arr := range a.arrays {
		arr.Delete(index)
	}
}

// AllocateVariantArrayElement implements MultiVariantObject.
func (a *Attributes) AllocateVariantArrayElement(indexes []int, sourceIndex int) {
	for _, arr := range a.arrays {
		arr.Allocate(indexes, sourceIndex)
	}
}

// VariantArrayLen implements Sized. An object without arrays reports -1.
func (a *Attributes) VariantArrayLen() (int, bool) {
	if len(a.arrays) == 0 {
		return -1, true
	}
	n := a.arrays[0].Len()
	for _, arr := range a.arrays[1:] {
		if arr.Len() != n {
			return n, false
		}
	}
	return n, true
}
