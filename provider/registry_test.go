package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolink/iidm"
)

type serializer struct {
	name     string
	category string
}

func (s serializer) ExtensionName() string { return s.name }
func (s serializer) CategoryName() string  { return s.category }

func TestRegisterAndFind(t *testing.T) {
	r := New[serializer]("network")
	require.NoError(t, r.Register(serializer{"activePowerControl", "network"}))
	require.NoError(t, r.Register(serializer{"entsoeArea", "network"}))

	p, ok := r.Find("entsoeArea")
	assert.True(t, ok)
	assert.Equal(t, "entsoeArea", p.name)

	_, ok = r.Find("unknown")
	assert.False(t, ok)

	_, err := r.Get("unknown")
	assert.ErrorIs(t, err, ErrProviderNotFound)
	assert.ErrorIs(t, err, iidm.ErrNotFound)

	assert.Equal(t, []string{"activePowerControl", "entsoeArea"}, r.Names())
	assert.Len(t, r.Providers(), 2)
	assert.Equal(t, "network", r.Category())
}

func TestRegisterDuplicateFails(t *testing.T) {
	r := New[serializer]("network")
	require.NoError(t, r.Register(serializer{"activePowerControl", "network"}))

	err := r.Register(serializer{"activePowerControl", "network"})
	assert.ErrorIs(t, err, ErrProviderAlreadyRegistered)
	assert.ErrorIs(t, err, iidm.ErrAlreadyExists)
	assert.Len(t, r.Providers(), 1)
}

func TestRegisterWrongCategory(t *testing.T) {
	r := New[serializer]("network")
	assert.ErrorIs(t, r.Register(serializer{"x", "security-analysis"}), ErrCategoryMismatch)
	assert.Panics(t, func() { r.MustRegister(serializer{"x", "other"}) })
}

func TestUnregister(t *testing.T) {
	r := New[serializer]("network")
	r.MustRegister(serializer{"a", "network"}, serializer{"b", "network"})

	require.NoError(t, r.Unregister("a"))
	assert.Equal(t, []string{"b"}, r.Names())
	assert.ErrorIs(t, r.Unregister("a"), ErrProviderNotFound)

	require.NoError(t, r.Register(serializer{"a", "network"}))
	assert.Equal(t, []string{"b", "a"}, r.Names())
}
