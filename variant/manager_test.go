package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolink/iidm"
)

type load struct {
	Attributes
	p0     *Array[float64]
	onDuty *Array[bool]
}

type fixture struct {
	manager *Manager
	objects []MultiVariantObject
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}
	f.manager = NewManager(ObjectSourceFunc(func() []MultiVariantObject { return f.objects }), WithConsistencyCheck(true))
	return f
}

func (f *fixture) newLoad(p0 float64) *load {
	l := &load{}
	l.p0 = NewAttribute(&l.Attributes, f.manager, f.manager.ArraySize(), p0)
	l.onDuty = NewAttribute(&l.Attributes, f.manager, f.manager.ArraySize(), true)
	f.objects = append(f.objects, l)
	return l
}

func TestManagerInitialState(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, []string{InitialVariantID}, f.manager.VariantIDs())
	assert.Equal(t, InitialVariantID, f.manager.WorkingVariantID())
	assert.Equal(t, 0, f.manager.VariantIndex())
	assert.Equal(t, 1, f.manager.ArraySize())
}

func TestCloneVariantIsolation(t *testing.T) {
	f := newFixture(t)
	l := f.newLoad(10)

	require.NoError(t, f.manager.CloneVariant(InitialVariantID, "v1"))
	require.NoError(t, f.manager.CloneVariant("v1", "v2"))
	require.NoError(t, f.manager.SetWorkingVariant("v2"))
	l.p0.Set(42)

	require.NoError(t, f.manager.SetWorkingVariant("v1"))
	assert.Equal(t, 10.0, l.p0.Get())
	require.NoError(t, f.manager.SetWorkingVariant("v2"))
	assert.Equal(t, 42.0, l.p0.Get())

	v1, err := f.manager.VariantIndexOf("v1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, l.p0.GetAt(v1))
}

func TestCloneVariantMultipleTargets(t *testing.T) {
	f := newFixture(t)
	l := f.newLoad(5)

	require.NoError(t, f.manager.CloneVariant(InitialVariantID, "a", "b", "c"))
	assert.Equal(t, 4, f.manager.ArraySize())
	assert.Equal(t, 4, l.p0.Len())
	assert.ElementsMatch(t, []string{InitialVariantID, "a", "b", "c"}, f.manager.VariantIDs())
	for i := 0; i < 4; i++ {
		assert.Equal(t, 5.0, l.p0.GetAt(i))
	}
}

func TestCloneVariantErrors(t *testing.T) {
	f := newFixture(t)
	f.newLoad(1)

	err := f.manager.CloneVariant("missing", "v1")
	assert.ErrorIs(t, err, ErrVariantNotFound)
	assert.ErrorIs(t, err, iidm.ErrNotFound)

	require.NoError(t, f.manager.CloneVariant(InitialVariantID, "v1"))
	err = f.manager.CloneVariant(InitialVariantID, "v2", "v1")
	assert.ErrorIs(t, err, ErrVariantAlreadyExists)
	assert.False(t, f.manager.Exists("v2"), "a failed clone must not register any target")

	assert.ErrorIs(t, f.manager.CloneVariant(InitialVariantID, "x", "x"), ErrVariantAlreadyExists)
	assert.ErrorIs(t, f.manager.CloneVariant(InitialVariantID), ErrEmptyTargetList)
	assert.Equal(t, 2, f.manager.ArraySize())
}

func TestSetWorkingVariantUnknown(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.manager.SetWorkingVariant("nope"), ErrVariantNotFound)
	assert.Equal(t, InitialVariantID, f.manager.WorkingVariantID())
}

func TestRemoveTrailingVariantReducesArrays(t *testing.T) {
	f := newFixture(t)
	l := f.newLoad(1)

	require.NoError(t, f.manager.CloneVariant(InitialVariantID, "v1", "v2", "v3"))
	require.NoError(t, f.manager.RemoveVariant("v2"))
	assert.Equal(t, 4, l.p0.Len(), "an interior index stays allocated")

	require.NoError(t, f.manager.RemoveVariant("v3"))
	assert.Equal(t, 2, f.manager.ArraySize(), "freed indexes before the trailing one are truncated together")
	assert.Equal(t, 2, l.p0.Len())
	assert.Equal(t, 2, l.onDuty.Len())
}

func TestRemovedIndexIsReused(t *testing.T) {
	f := newFixture(t)
	l := f.newLoad(3)

	require.NoError(t, f.manager.CloneVariant(InitialVariantID, "v1", "v2"))
	sizeBefore := l.p0.Len()

	require.NoError(t, f.manager.RemoveVariant("v1"))
	require.NoError(t, f.manager.SetWorkingVariant("v2"))
	l.p0.Set(8)

	require.NoError(t, f.manager.CloneVariant("v2", "v3"))
	assert.Equal(t, sizeBefore, l.p0.Len())
	index, err := f.manager.VariantIndexOf("v3")
	require.NoError(t, err)
	assert.Equal(t, 1, index)
	assert.Equal(t, 8.0, l.p0.GetAt(index))

	require.NoError(t, f.manager.RemoveVariant("v3"))
	require.NoError(t, f.manager.CloneVariant(InitialVariantID, "v4"))
	assert.Equal(t, sizeBefore, l.p0.Len())
}

func TestRemoveVariantRules(t *testing.T) {
	f := newFixture(t)
	f.newLoad(1)

	assert.ErrorIs(t, f.manager.RemoveVariant(InitialVariantID), ErrInitialVariantRemoval)
	assert.ErrorIs(t, f.manager.RemoveVariant("nope"), ErrVariantNotFound)

	require.NoError(t, f.manager.CloneVariant(InitialVariantID, "v1"))
	require.NoError(t, f.manager.SetWorkingVariant("v1"))
	require.NoError(t, f.manager.RemoveVariant("v1"))
	assert.Equal(t, InitialVariantID, f.manager.WorkingVariantID())
	assert.Equal(t, 0, f.manager.VariantIndex())
}

func TestCloneVariantOverwrite(t *testing.T) {
	f := newFixture(t)
	l := f.newLoad(1)

	require.NoError(t, f.manager.CloneVariantOverwrite(InitialVariantID, "v1"))
	require.NoError(t, f.manager.SetWorkingVariant("v1"))
	l.p0.Set(99)

	require.NoError(t, f.manager.CloneVariantOverwrite(InitialVariantID, "v1"))
	assert.Equal(t, 1.0, l.p0.Get())
	assert.Equal(t, 2, f.manager.ArraySize())
}

func TestObjectsAddedAfterClone(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.manager.CloneVariant(InitialVariantID, "v1"))

	l := f.newLoad(7)
	assert.Equal(t, 2, l.p0.Len())
	require.NoError(t, f.manager.CheckConsistency())
}

func TestConsistencyCheckDetectsDrift(t *testing.T) {
	f := newFixture(t)
	l := f.newLoad(1)
	l.p0.Extend(1, 1, 0)

	err := f.manager.CheckConsistency()
	assert.ErrorIs(t, err, ErrInconsistentArrays)
	assert.ErrorIs(t, err, iidm.ErrInvalidState)
}
