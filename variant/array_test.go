package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedContext int

func (c fixedContext) VariantIndex() int { return int(c) }

func TestArrayLifecycle(t *testing.T) {
	ctx := fixedContext(0)
	arr := NewArray(ctx, 2, "a")

	assert.Equal(t, "a", arr.Get())
	assert.Equal(t, "a", arr.SetAt(1, "b"))
	assert.Equal(t, "b", arr.GetAt(1))

	arr.Extend(2, 2, 1)
	assert.Equal(t, 4, arr.Len())
	assert.Equal(t, "b", arr.GetAt(3))

	arr.Allocate([]int{0, 2}, 3)
	assert.Equal(t, "b", arr.GetAt(0))

	arr.Delete(2)
	assert.Equal(t, "", arr.GetAt(2))
	assert.Equal(t, 4, arr.Len())

	arr.Reduce(2)
	assert.Equal(t, 2, arr.Len())
}

func TestArrayExtendSizeMismatchPanics(t *testing.T) {
	arr := NewArray(fixedContext(0), 1, 0)
	assert.Panics(t, func() { arr.Extend(3, 1, 0) })
}

func TestAttributesReportDisagreement(t *testing.T) {
	var attrs Attributes
	n, ok := attrs.VariantArrayLen()
	assert.Equal(t, -1, n)
	assert.True(t, ok)

	a := NewAttribute(&attrs, fixedContext(0), 2, 1)
	NewAttribute(&attrs, fixedContext(0), 2, false)
	n, ok = attrs.VariantArrayLen()
	assert.Equal(t, 2, n)
	assert.True(t, ok)

	a.Reduce(1)
	_, ok = attrs.VariantArrayLen()
	assert.False(t, ok)
}
