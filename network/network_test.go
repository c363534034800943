package network

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolink/iidm"
	"github.com/toolink/iidm/variant"
)

func newTestNetwork(t *testing.T) *Network {
	t.Helper()
	n := New("test", "test", WithVariantOptions(variant.WithConsistencyCheck(true)))

	_, err := n.NewSubstation().WithID("S1").WithCountry("FR").Add()
	require.NoError(t, err)
	_, err = n.NewSubstation().WithID("S2").Add()
	require.NoError(t, err)
	_, err = n.NewGenerator().
		WithID("GEN").
		WithMinP(-10).
		WithMaxP(100).
		WithTargetP(50).
		WithTargetV(400).
		WithVoltageRegulatorOn(true).
		Add()
	require.NoError(t, err)
	_, err = n.NewLoad().WithID("LOAD").WithP0(20).WithQ0(5).Add()
	require.NoError(t, err)
	_, err = n.NewLine().WithID("L1").WithSubstation1("S1").WithSubstation2("S2").WithR(1).WithX(10).Add()
	require.NoError(t, err)
	return n
}

func TestNewNetworkDefaults(t *testing.T) {
	n := New("", "code")
	assert.NotEmpty(t, n.ID())
	assert.Equal(t, "Network", n.TypeName())
	assert.Equal(t, "code", n.SourceFormat())
	assert.False(t, n.CaseDate().IsZero())
	assert.Equal(t, []string{variant.InitialVariantID}, n.VariantManager().VariantIDs())

	i, ok := n.Find(n.ID())
	require.True(t, ok)
	assert.Same(t, n, i)
}

func TestDuplicateID(t *testing.T) {
	n := newTestNetwork(t)

	_, err := n.NewLoad().WithID("GEN").WithP0(1).WithQ0(1).Add()
	assert.ErrorIs(t, err, iidm.ErrDuplicateID)
	assert.Contains(t, err.Error(), "'Generator' with the id 'GEN'")
	assert.Len(t, n.Loads(), 1)

	g, err := n.Get("GEN")
	require.NoError(t, err)
	assert.Equal(t, "Generator", g.TypeName())
}

func TestGetUnknown(t *testing.T) {
	n := newTestNetwork(t)
	_, err := n.Get("nope")
	assert.ErrorIs(t, err, ErrIdentifiableNotFound)
	assert.ErrorIs(t, err, iidm.ErrNotFound)
	assert.Contains(t, err.Error(), "nope")
}

func TestAdderValidation(t *testing.T) {
	n := New("test", "test")
	_, err := n.NewSubstation().WithID("S1").Add()
	require.NoError(t, err)

	tests := []struct {
		name string
		add  func() error
	}{
		{"missing id", func() error {
			_, err := n.NewSubstation().Add()
			return err
		}},
		{"generator without limits", func() error {
			_, err := n.NewGenerator().WithID("G").WithTargetP(1).WithTargetQ(0).Add()
			return err
		}},
		{"generator inverted limits", func() error {
			_, err := n.NewGenerator().WithID("G").WithMinP(10).WithMaxP(0).WithTargetP(1).WithTargetQ(0).Add()
			return err
		}},
		{"generator regulating without target voltage", func() error {
			_, err := n.NewGenerator().WithID("G").WithMinP(0).WithMaxP(10).WithTargetP(1).WithVoltageRegulatorOn(true).Add()
			return err
		}},
		{"battery without p0", func() error {
			_, err := n.NewBattery().WithID("B").WithMinP(0).WithMaxP(10).WithQ0(0).Add()
			return err
		}},
		{"load with unknown type", func() error {
			_, err := n.NewLoad().WithID("LD").WithLoadType("BOGUS").WithP0(1).WithQ0(1).Add()
			return err
		}},
		{"line to unknown substation", func() error {
			_, err := n.NewLine().WithID("L").WithSubstation1("S1").WithSubstation2("S9").WithR(1).WithX(1).Add()
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.add(), iidm.ErrValidation)
		})
	}
	assert.Len(t, n.Identifiables(), 2)
}

func TestGeneratorVariants(t *testing.T) {
	n := newTestNetwork(t)
	m := n.VariantManager()
	g := n.Generators()[0]

	require.NoError(t, m.CloneVariant(variant.InitialVariantID, "v2"))
	require.NoError(t, m.SetWorkingVariant("v2"))
	require.NoError(t, g.SetTargetP(75))
	assert.Equal(t, 75.0, g.TargetP())

	require.NoError(t, m.SetWorkingVariant(variant.InitialVariantID))
	assert.Equal(t, 50.0, g.TargetP())

	assert.Error(t, g.SetTargetP(math.NaN()))
	assert.Error(t, g.SetVoltageRegulatorOn(false), "targetQ is NaN")
	require.NoError(t, g.SetTargetQ(10))
	require.NoError(t, g.SetVoltageRegulatorOn(false))
	assert.False(t, g.VoltageRegulatorOn())

	require.NoError(t, m.RemoveVariant("v2"))
	require.NoError(t, m.CheckConsistency())
}

func TestBatteryAndLoadVariants(t *testing.T) {
	n := newTestNetwork(t)
	m := n.VariantManager()
	require.NoError(t, m.CloneVariant(variant.InitialVariantID, "v2"))

	// added after the clone, must still be sized for both variants
	b, err := n.NewBattery().WithID("BAT").WithMinP(-5).WithMaxP(5).WithP0(1).WithQ0(0).Add()
	require.NoError(t, err)
	require.NoError(t, m.CheckConsistency())

	require.NoError(t, m.SetWorkingVariant("v2"))
	require.NoError(t, b.SetP0(-2))
	l := n.Loads()[0]
	require.NoError(t, l.SetQ0(7))

	require.NoError(t, m.SetWorkingVariant(variant.InitialVariantID))
	assert.Equal(t, 1.0, b.P0())
	assert.Equal(t, 5.0, l.Q0())
	assert.Equal(t, LoadTypeUndefined, l.LoadType())
}

func TestRemove(t *testing.T) {
	n := newTestNetwork(t)
	require.NoError(t, n.Remove("LOAD"))
	assert.Empty(t, n.Loads())
	_, ok := n.Find("LOAD")
	assert.False(t, ok)

	assert.ErrorIs(t, n.Remove("LOAD"), iidm.ErrNotFound)
	assert.ErrorIs(t, n.Remove(n.ID()), iidm.ErrInvalidState)

	// removed objects no longer take part in resizing
	assert.Len(t, n.MultiVariantObjects(), 1)
}

func TestProperties(t *testing.T) {
	n := newTestNetwork(t)
	s, err := n.Get("S1")
	require.NoError(t, err)

	p := s.Properties()
	_, existed := p.Set("voltage", "400")
	assert.False(t, existed)
	p.Set("active", "true")
	old, existed := p.Set("voltage", "225.5")
	assert.True(t, existed)
	assert.Equal(t, "400", old)

	v, err := PropertyAs[float64](p, "voltage")
	require.NoError(t, err)
	assert.Equal(t, 225.5, v)

	active, err := PropertyAs[bool](p, "active")
	require.NoError(t, err)
	assert.True(t, active)

	_, err = PropertyAs[int](p, "voltage")
	assert.Error(t, err)

	_, err = PropertyAs[string](p, "missing")
	assert.ErrorIs(t, err, ErrPropertyNotFound)

	assert.Equal(t, []string{"active", "voltage"}, p.Names())
	assert.Equal(t, "x", p.GetOr("missing", "x"))
	assert.True(t, p.Remove("active"))
	assert.False(t, p.Has("active"))
	assert.Equal(t, 1, p.Len())
}

func TestNameOrID(t *testing.T) {
	n := newTestNetwork(t)
	s := n.Substations()[0]
	assert.Equal(t, "S1", s.NameOrID())
	s.SetName("Site one")
	assert.Equal(t, "Site one", s.NameOrID())
}
