package extensions

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolink/iidm"
	"github.com/toolink/iidm/extension"
	"github.com/toolink/iidm/iidmxml"
	"github.com/toolink/iidm/network"
	"github.com/toolink/iidm/variant"
)

type fixture struct {
	network    *network.Network
	substation *network.Substation
	generator  *network.Generator
	battery    *network.Battery
	load       *network.Load
	line       *network.Line
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{network: network.New("ext", "test")}
	var err error
	f.substation, err = f.network.NewSubstation().WithID("S1").Add()
	require.NoError(t, err)
	_, err = f.network.NewSubstation().WithID("S2").Add()
	require.NoError(t, err)
	f.generator, err = f.network.NewGenerator().
		WithID("GEN").
		WithMinP(0).
		WithMaxP(100).
		WithTargetP(50).
		WithTargetQ(0).
		Add()
	require.NoError(t, err)
	f.battery, err = f.network.NewBattery().WithID("BAT").WithMinP(-5).WithMaxP(5).WithP0(0).WithQ0(0).Add()
	require.NoError(t, err)
	f.load, err = f.network.NewLoad().WithID("LOAD").WithP0(10).WithQ0(2).Add()
	require.NoError(t, err)
	f.line, err = f.network.NewLine().WithID("L1").WithSubstation1("S1").WithSubstation2("S2").WithR(1).WithX(1).Add()
	require.NoError(t, err)
	return f
}

func newCatalog(t *testing.T) *iidmxml.Catalog {
	t.Helper()
	c := iidmxml.NewCatalog()
	require.NoError(t, Register(c))
	return c
}

func roundTrip(t *testing.T, n *network.Network, opts iidmxml.ExportOptions) (*network.Network, string) {
	t.Helper()
	c := newCatalog(t)
	var buf bytes.Buffer
	_, err := iidmxml.NewExporter(c).Export(context.Background(), n, &buf, opts)
	require.NoError(t, err)
	doc := buf.String()

	imported, err := iidmxml.NewImporter(c).Import(context.Background(), strings.NewReader(doc), iidmxml.ImportOptions{})
	require.NoError(t, err)

	buf.Reset()
	_, err = iidmxml.NewExporter(c).Export(context.Background(), imported, &buf, opts)
	require.NoError(t, err)
	assert.Equal(t, doc, buf.String(), "export, import, export must be stable")
	return imported, doc
}

func TestActivePowerControlRoundTrip(t *testing.T) {
	f := newFixture(t)
	_, err := extension.NewExtension[ActivePowerControlAdder](f.generator).
		WithDroop(4).
		WithParticipate(true).
		Add()
	require.NoError(t, err)

	imported, doc := roundTrip(t, f.network, iidmxml.DefaultExportOptions())
	assert.Contains(t, doc, `<apc:activePowerControl participate="true" droop="4">`)

	g, err := imported.Get("GEN")
	require.NoError(t, err)
	apc, err := extension.Get[*ActivePowerControl](g)
	require.NoError(t, err)
	assert.Equal(t, 4.0, apc.Droop())
	assert.True(t, apc.Participate())
	assert.True(t, math.IsNaN(apc.ParticipationFactor()))
	assert.Same(t, g, apc.Extendable())
}

func TestActivePowerControlVersions(t *testing.T) {
	f := newFixture(t)
	_, err := extension.NewExtension[ActivePowerControlAdder](f.battery).
		WithDroop(2.5).
		WithParticipationFactor(0.25).
		Add()
	require.NoError(t, err)

	_, doc := roundTrip(t, f.network, iidmxml.ExportOptions{})
	assert.Contains(t, doc, "active_power_control/1_1")
	assert.Contains(t, doc, `participationFactor="0.25"`)

	imported, doc := roundTrip(t, f.network, iidmxml.ExportOptions{ExtensionVersions: map[string]string{ActivePowerControlName: "1.0"}})
	assert.Contains(t, doc, "active_power_control/1_0")
	assert.NotContains(t, doc, "participationFactor")
	b, err := imported.Get("BAT")
	require.NoError(t, err)
	apc, err := extension.Get[*ActivePowerControl](b)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(apc.ParticipationFactor()))

	var buf bytes.Buffer
	_, err = iidmxml.NewExporter(newCatalog(t)).Export(context.Background(), f.network, &buf, iidmxml.ExportOptions{
		Version:           "1.4",
		ExtensionVersions: map[string]string{ActivePowerControlName: "1.1"},
	})
	assert.ErrorIs(t, err, iidm.ErrVersionIncompatible)
	assert.Zero(t, buf.Len())
}

func TestActivePowerControlValidation(t *testing.T) {
	f := newFixture(t)
	_, err := extension.NewExtension[ActivePowerControlAdder](f.generator).Add()
	assert.ErrorIs(t, err, iidm.ErrValidation)
	assert.Zero(t, f.generator.ExtensionContainer().Len())
}

func TestOwnerTypeGate(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		add  func() error
	}{
		{"activePowerControl on load", func() error {
			_, err := extension.NewExtension[ActivePowerControlAdder](f.load).WithDroop(1).Add()
			return err
		}},
		{"generatorEntsoeCategory on battery", func() error {
			_, err := extension.NewExtension[GeneratorEntsoeCategoryAdder](f.battery).WithCode(1).Add()
			return err
		}},
		{"generatorStartup on load", func() error {
			_, err := extension.NewExtension[GeneratorStartupAdder](f.load).Add()
			return err
		}},
		{"entsoeArea on generator", func() error {
			_, err := extension.NewExtension[EntsoeAreaAdder](f.generator).WithCode("FR").Add()
			return err
		}},
		{"branchStatus on substation", func() error {
			_, err := extension.NewExtension[BranchStatusAdder](f.substation).Add()
			return err
		}},
		{"detail on generator", func() error {
			_, err := extension.NewExtension[LoadDetailAdder](f.generator).
				WithFixedActivePower(1).
				WithFixedReactivePower(1).
				WithVariableActivePower(1).
				WithVariableReactivePower(1).
				Add()
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.add()
			assert.ErrorIs(t, err, iidm.ErrOwnerTypeMismatch)
		})
	}
	for _, i := range f.network.Identifiables() {
		assert.Zero(t, i.ExtensionContainer().Len(), i.ID())
	}
}

func TestGeneratorEntsoeCategory(t *testing.T) {
	f := newFixture(t)

	_, err := extension.NewExtension[GeneratorEntsoeCategoryAdder](f.generator).WithCode(0).Add()
	require.Error(t, err)
	assert.EqualError(t, err, "Bad generator ENTSO-E code 0")
	assert.ErrorIs(t, err, iidm.ErrValidation)

	_, err = extension.NewExtension[GeneratorEntsoeCategoryAdder](f.generator).WithCode(43).Add()
	assert.EqualError(t, err, "Bad generator ENTSO-E code 43")

	c, err := extension.NewExtension[GeneratorEntsoeCategoryAdder](f.generator).WithCode(11).Add()
	require.NoError(t, err)
	assert.Error(t, c.SetCode(-1))
	assert.Equal(t, 11, c.Code())

	imported, doc := roundTrip(t, f.network, iidmxml.DefaultExportOptions())
	assert.Contains(t, doc, `<gec:generatorEntsoeCategory>11</gec:generatorEntsoeCategory>`)
	g, err := imported.Get("GEN")
	require.NoError(t, err)
	got, err := extension.Get[*GeneratorEntsoeCategory](g)
	require.NoError(t, err)
	assert.Equal(t, 11, got.Code())
}

func TestGeneratorStartupVersions(t *testing.T) {
	f := newFixture(t)
	_, err := extension.NewExtension[GeneratorStartupAdder](f.generator).
		WithPlannedActivePowerSetpoint(90).
		WithStartupCost(5).
		WithMarginalCost(10).
		WithPlannedOutageRate(0.8).
		WithForcedOutageRate(0.7).
		Add()
	require.NoError(t, err)

	imported, doc := roundTrip(t, f.network, iidmxml.DefaultExportOptions())
	assert.Contains(t, doc, `<gs:generatorStartup plannedActivePowerSetpoint="90" startupCost="5" marginalCost="10" plannedOutageRate="0.8" forcedOutageRate="0.7">`)
	g, _ := imported.Get("GEN")
	gs, err := extension.Get[*GeneratorStartup](g)
	require.NoError(t, err)
	assert.Equal(t, 5.0, gs.StartupCost())

	// batteries need 1.1
	require.NoError(t, f.network.Remove("BAT"))
	imported, doc = roundTrip(t, f.network, iidmxml.ExportOptions{Version: "1.0"})
	assert.Contains(t, doc, `<gs:generatorStartup predefinedActivePowerSetpoint="90" marginalCost="10"`)
	assert.NotContains(t, doc, "startupCost")
	g, _ = imported.Get("GEN")
	gs, err = extension.Get[*GeneratorStartup](g)
	require.NoError(t, err)
	assert.Equal(t, 90.0, gs.PlannedActivePowerSetpoint())
	assert.True(t, math.IsNaN(gs.StartupCost()))
}

func TestGeneratorStartupRates(t *testing.T) {
	f := newFixture(t)
	_, err := extension.NewExtension[GeneratorStartupAdder](f.generator).WithForcedOutageRate(1.5).Add()
	assert.ErrorIs(t, err, iidm.ErrValidation)

	gs, err := extension.NewExtension[GeneratorStartupAdder](f.generator).Add()
	require.NoError(t, err)
	assert.True(t, math.IsNaN(gs.PlannedOutageRate()))
	assert.Error(t, gs.SetPlannedOutageRate(-0.1))
	require.NoError(t, gs.SetPlannedOutageRate(math.NaN()))
	require.NoError(t, gs.SetForcedOutageRate(0))
}

func TestEntsoeAreaMultipleAdd(t *testing.T) {
	f := newFixture(t)
	_, err := extension.NewExtension[EntsoeAreaAdder](f.substation).WithCode("FR").Add()
	require.NoError(t, err)
	_, err = extension.NewExtension[EntsoeAreaAdder](f.substation).WithCode("D7").Add()
	require.NoError(t, err)

	assert.Equal(t, 1, f.substation.ExtensionContainer().Len())
	area, err := extension.Get[*EntsoeArea](f.substation)
	require.NoError(t, err)
	assert.Equal(t, EntsoeGeographicalCode("D7"), area.Code())

	_, err = extension.NewExtension[EntsoeAreaAdder](f.substation).Add()
	assert.ErrorIs(t, err, iidm.ErrValidation)
	_, err = extension.NewExtension[EntsoeAreaAdder](f.substation).WithCode("XX").Add()
	assert.ErrorIs(t, err, iidm.ErrValidation)

	imported, doc := roundTrip(t, f.network, iidmxml.DefaultExportOptions())
	assert.Contains(t, doc, `<ea:entsoeArea>D7</ea:entsoeArea>`)
	s, _ := imported.Get("S1")
	area, err = extension.Get[*EntsoeArea](s)
	require.NoError(t, err)
	assert.Equal(t, EntsoeGeographicalCode("D7"), area.Code())
}

func TestBranchStatus(t *testing.T) {
	f := newFixture(t)
	b, err := extension.NewExtension[BranchStatusAdder](f.line).Add()
	require.NoError(t, err)
	assert.Equal(t, StatusInOperation, b.Status())
	require.NoError(t, b.SetStatus(StatusPlannedOutage))
	assert.Error(t, b.SetStatus("BROKEN"))

	imported, doc := roundTrip(t, f.network, iidmxml.DefaultExportOptions())
	assert.Contains(t, doc, `<bs:branchStatus>PLANNED_OUTAGE</bs:branchStatus>`)
	l, _ := imported.Get("L1")
	got, err := extension.Get[*BranchStatus](l)
	require.NoError(t, err)
	assert.Equal(t, StatusPlannedOutage, got.Status())
}

func TestLoadDetailVariants(t *testing.T) {
	f := newFixture(t)
	m := f.network.VariantManager()
	require.NoError(t, m.CloneVariant(variant.InitialVariantID, "v1"))

	_, err := extension.NewExtension[LoadDetailAdder](f.load).WithFixedActivePower(1).Add()
	assert.ErrorIs(t, err, iidm.ErrValidation)

	d, err := extension.NewExtension[LoadDetailAdder](f.load).
		WithFixedActivePower(4).
		WithFixedReactivePower(1).
		WithVariableActivePower(6).
		WithVariableReactivePower(1).
		Add()
	require.NoError(t, err)
	require.NoError(t, m.CheckConsistency())

	require.NoError(t, m.CloneVariant("v1", "v2"))
	require.NoError(t, m.SetWorkingVariant("v2"))
	require.NoError(t, d.SetVariableActivePower(8))
	assert.Error(t, d.SetFixedActivePower(math.NaN()))

	require.NoError(t, m.SetWorkingVariant("v1"))
	assert.Equal(t, 6.0, d.VariableActivePower())

	// freed index reused without growing the arrays
	size := m.ArraySize()
	require.NoError(t, m.RemoveVariant("v1"))
	require.NoError(t, m.CloneVariant("v2", "v3"))
	assert.Equal(t, size, m.ArraySize())
	require.NoError(t, m.SetWorkingVariant("v3"))
	assert.Equal(t, 8.0, d.VariableActivePower())
	require.NoError(t, m.CheckConsistency())

	imported, doc := roundTrip(t, f.network, iidmxml.DefaultExportOptions())
	assert.Contains(t, doc, `<ld:detail fixedActivePower="4" fixedReactivePower="1" variableActivePower="8" variableReactivePower="1">`)
	l, _ := imported.Get("LOAD")
	got, err := extension.Get[*LoadDetail](l)
	require.NoError(t, err)
	assert.Equal(t, 8.0, got.VariableActivePower())
}

func TestRemoveVariantAwareExtension(t *testing.T) {
	f := newFixture(t)
	_, err := extension.NewExtension[LoadDetailAdder](f.load).
		WithFixedActivePower(1).
		WithFixedReactivePower(1).
		WithVariableActivePower(1).
		WithVariableReactivePower(1).
		Add()
	require.NoError(t, err)
	before := len(f.network.MultiVariantObjects())

	assert.True(t, extension.Remove[*LoadDetail](f.load))
	assert.Len(t, f.network.MultiVariantObjects(), before-1)
	_, err = extension.Get[*LoadDetail](f.load)
	assert.ErrorIs(t, err, iidm.ErrNotFound)
}

func TestRegisterTwiceFails(t *testing.T) {
	c := newCatalog(t)
	assert.ErrorIs(t, Register(c), iidm.ErrAlreadyExists)

	s, err := c.Get(LoadDetailName)
	require.NoError(t, err)
	assert.Equal(t, "ld", s.NamespacePrefix())
	assert.Equal(t, iidmxml.Category, s.CategoryName())
}

func TestFindByName(t *testing.T) {
	f := newFixture(t)
	_, err := extension.NewExtension[ActivePowerControlAdder](f.generator).WithDroop(1).Add()
	require.NoError(t, err)

	apc, ok := extension.FindByName[*ActivePowerControl](f.generator, ActivePowerControlName)
	require.True(t, ok)
	assert.Equal(t, 1.0, apc.Droop())
	_, ok = extension.FindByName[*GeneratorStartup](f.generator, ActivePowerControlName)
	assert.False(t, ok)
}

func TestAddLogsExtension(t *testing.T) {
	var buf bytes.Buffer
	logger, level := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = logger
		zerolog.SetGlobalLevel(level)
	})
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	f := newFixture(t)
	_, err := extension.NewExtension[GeneratorEntsoeCategoryAdder](f.generator).WithCode(7).Add()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"generator ENTSO-E category added"`)
	assert.Contains(t, out, `"id":"GEN"`)
	assert.Contains(t, out, `"code":7`)
}
