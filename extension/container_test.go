package extension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolink/iidm"
)

type generator struct {
	id        string
	container Container
}

func (g *generator) ID() string { return g.id }
func (g *generator) TypeName() string { return "Generator" }
func (g *generator) ExtensionContainer() *Container { return &g.container }

type line struct {
	generator
}

func (l *line) TypeName() string { return "Line" }

type droop struct {
	Base
	value float64
}

func (d *droop) Name() string { return "droop" }

func (d *droop) AssertExtendable(owner Extendable) error {
	if _, ok := owner.(*generator); !ok {
		return OwnerTypeError(d.Name(), owner, "Generator")
	}
	return nil
}

type tag struct {
	Base
	label string
}

func (t *tag) Name() string { return "tag" }
func (t *tag) AssertExtendable(Extendable) error { return nil }
func (t *tag) Label() string { return t.label }

type labeled interface {
	Extension
	Label() string
}

type droopAdder struct {
	AdderBase
	value float64
}

func (a *droopAdder) InitDefaults() { a.value = -1 }

func (a *droopAdder) WithValue(v float64) *droopAdder {
	a.value = v
	return a
}

func (a *droopAdder) Add() (*droop, error) {
	ext := &droop{value: a.value}
	return ext, Attach(a.Owner(), ext)
}

func TestAttachAndLookup(t *testing.T) {
	gen := &generator{id: "GEN"}
	d := &droop{value: 4}

	require.NoError(t, Attach(gen, d))
	assert.Same(t, gen, d.Extendable())

	got, err := Get[*droop](gen)
	require.NoError(t, err)
	assert.Same(t, d, got)

	found, ok := Find[*droop](gen)
	assert.True(t, ok)
	assert.Same(t, d, found)

	byName, ok := ByName(gen, "droop")
	assert.True(t, ok)
	assert.Same(t, d, byName)

	typed, ok := FindByName[*droop](gen, "droop")
	assert.True(t, ok)
	assert.Same(t, d, typed)

	_, ok = FindByName[*tag](gen, "droop")
	assert.False(t, ok, "a name registered for another type does not match")
}

func TestGetMissingExtension(t *testing.T) {
	gen := &generator{id: "GEN"}

	_, ok := Find[*droop](gen)
	assert.False(t, ok)

	_, err := Get[*droop](gen)
	assert.ErrorIs(t, err, ErrExtensionNotFound)
	assert.ErrorIs(t, err, iidm.ErrNotFound)
	assert.Contains(t, err.Error(), "GEN")
}

func TestAttachLastWins(t *testing.T) {
	gen := &generator{id: "GEN"}
	first := &droop{value: 1}
	second := &droop{value: 2}

	require.NoError(t, Attach(gen, first))
	require.NoError(t, Attach(gen, second))

	assert.Equal(t, 1, gen.container.Len())
	got, err := Get[*droop](gen)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.value)
	assert.Nil(t, first.Extendable())
}

func TestAttachRejectsOwnerType(t *testing.T) {
	l := &line{generator{id: "L1"}}

	err := Attach(l, &droop{})
	require.ErrorIs(t, err, iidm.ErrOwnerTypeMismatch)
	assert.Contains(t, err.Error(), "Line")
	assert.Contains(t, err.Error(), "Generator")
	assert.Equal(t, 0, l.container.Len())
	assert.ErrorIs(t, Attach(l, nil), ErrNilExtension)
}

func TestRemove(t *testing.T) {
	gen := &generator{id: "GEN"}
	require.NoError(t, Attach(gen, &droop{}))
	require.NoError(t, Attach(gen, &tag{label: "x"}))

	assert.True(t, Remove[*droop](gen))
	assert.False(t, Remove[*droop](gen))
	_, ok := ByName(gen, "droop")
	assert.False(t, ok)
	assert.Len(t, List(gen), 1)
}

func TestFindByInterface(t *testing.T) {
	gen := &generator{id: "GEN"}
	require.NoError(t, Attach(gen, &droop{}))
	require.NoError(t, Attach(gen, &tag{label: "hello"}))

	ext, ok := Find[labeled](gen)
	require.True(t, ok)
	assert.Equal(t, "hello", ext.Label())
}

func TestListSortedByName(t *testing.T) {
	gen := &generator{id: "GEN"}
	require.NoError(t, Attach(gen, &tag{}))
	require.NoError(t, Attach(gen, &droop{}))

	names := []string{}
	for _, ext := range List(gen) {
		names = append(names, ext.Name())
	}
	assert.Equal(t, []string{"droop", "tag"}, names)
}

func TestNewExtensionBindsAdder(t *testing.T) {
	gen := &generator{id: "GEN"}

	adder := NewExtension[droopAdder](gen)
	assert.Same(t, gen, adder.Owner())
	assert.Equal(t, -1.0, adder.value)

	d, err := adder.WithValue(3).Add()
	require.NoError(t, err)
	assert.Equal(t, 3.0, d.value)

	_, err = NewExtension[droopAdder](&line{generator{id: "L"}}).Add()
	assert.ErrorIs(t, err, iidm.ErrOwnerTypeMismatch)
}
