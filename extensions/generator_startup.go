package extensions

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/toolink/iidm/extension"
	"github.com/toolink/iidm/iidmxml"
	"github.com/toolink/iidm/network"
)

// GeneratorStartupName is the name of the GeneratorStartup extension.
const GeneratorStartupName = "generatorStartup"

// GeneratorStartup holds the start up economics of a generator. Every field
// is optional and NaN when unknown.
type GeneratorStartup struct {
	extension.Base
	plannedActivePowerSetpoint float64
	startupCost                float64
	marginalCost               float64
	plannedOutageRate          float64
	forcedOutageRate           float64
}

// Name implements extension.Extension.
func (*GeneratorStartup) Name() string { return GeneratorStartupName }

// AssertExtendable implements extension.Extension.
func (*GeneratorStartup) AssertExtendable(owner extension.Extendable) error {
	if _, ok := owner.(*network.Generator); ok {
		return nil
	}
	return extension.OwnerTypeError(GeneratorStartupName, owner, "Generator")
}

// PlannedActivePowerSetpoint returns the planned active power setpoint, in MW.
func (g *GeneratorStartup) PlannedActivePowerSetpoint() float64 { return g.plannedActivePowerSetpoint }

// StartupCost returns the startup cost.
func (g *GeneratorStartup) StartupCost() float64 { return g.startupCost }

// MarginalCost returns the marginal cost.
func (g *GeneratorStartup) MarginalCost() float64 { return g.marginalCost }

// PlannedOutageRate returns the planned outage rate, in [0, 1] or NaN.
func (g *GeneratorStartup) PlannedOutageRate() float64 { return g.plannedOutageRate }

// ForcedOutageRate returns the forced outage rate, in [0, 1] or NaN.
func (g *GeneratorStartup) ForcedOutageRate() float64 { return g.forcedOutageRate }

// SetPlannedActivePowerSetpoint changes the planned active power setpoint.
func (g *GeneratorStartup) SetPlannedActivePowerSetpoint(p float64) { g.plannedActivePowerSetpoint = p }

// SetStartupCost changes the startup cost.
func (g *GeneratorStartup) SetStartupCost(cost float64) { g.startupCost = cost }

// SetMarginalCost changes the marginal cost.
func (g *GeneratorStartup) SetMarginalCost(cost float64) { g.marginalCost = cost }

// SetPlannedOutageRate changes the planned outage rate, NaN or within [0, 1].
func (g *GeneratorStartup) SetPlannedOutageRate(rate float64) error {
	if err := checkRate("planned outage rate", rate); err != nil {
		return err
	}
	g.plannedOutageRate = rate
	return nil
}

// SetForcedOutageRate changes the forced outage rate, NaN or within [0, 1].
func (g *GeneratorStartup) SetForcedOutageRate(rate float64) error {
	if err := checkRate("forced outage rate", rate); err != nil {
		return err
	}
	g.forcedOutageRate = rate
	return nil
}

func checkRate(what string, rate float64) error {
	if !math.IsNaN(rate) && (rate < 0 || rate > 1) {
		return validationErrorf("Unexpected value for %s: %v, it should be in [0, 1]", what, rate)
	}
	return nil
}

// GeneratorStartupAdder builds a GeneratorStartup.
type GeneratorStartupAdder struct {
	extension.AdderBase
	plannedActivePowerSetpoint float64
	startupCost                float64
	marginalCost               float64
	plannedOutageRate          float64
	forcedOutageRate           float64
}

// InitDefaults implements extension.Defaulter.
func (a *GeneratorStartupAdder) InitDefaults() {
	nan := math.NaN()
	a.plannedActivePowerSetpoint = nan
	a.startupCost = nan
	a.marginalCost = nan
	a.plannedOutageRate = nan
	a.forcedOutageRate = nan
}

// WithPlannedActivePowerSetpoint sets the planned active power setpoint.
func (a *GeneratorStartupAdder) WithPlannedActivePowerSetpoint(p float64) *GeneratorStartupAdder {
	a.plannedActivePowerSetpoint = p
	return a
}

// WithStartupCost sets the startup cost.
func (a *GeneratorStartupAdder) WithStartupCost(cost float64) *GeneratorStartupAdder {
	a.startupCost = cost
	return a
}

// WithMarginalCost sets the marginal cost.
func (a *GeneratorStartupAdder) WithMarginalCost(cost float64) *GeneratorStartupAdder {
	a.marginalCost = cost
	return a
}

// WithPlannedOutageRate sets the planned outage rate.
func (a *GeneratorStartupAdder) WithPlannedOutageRate(rate float64) *GeneratorStartupAdder {
	a.plannedOutageRate = rate
	return a
}

// WithForcedOutageRate sets the forced outage rate.
func (a *GeneratorStartupAdder) WithForcedOutageRate(rate float64) *GeneratorStartupAdder {
	a.forcedOutageRate = rate
	return a
}

// Add validates the rates and attaches the extension to the adder's owner.
func (a *GeneratorStartupAdder) Add() (*GeneratorStartup, error) {
	if err := checkRate("planned outage rate", a.plannedOutageRate); err != nil {
		return nil, err
	}
	if err := checkRate("forced outage rate", a.forcedOutageRate); err != nil {
		return nil, err
	}
	g := &GeneratorStartup{
		plannedActivePowerSetpoint: a.plannedActivePowerSetpoint,
		startupCost:                a.startupCost,
		marginalCost:               a.marginalCost,
		plannedOutageRate:          a.plannedOutageRate,
		forcedOutageRate:           a.forcedOutageRate,
	}
	if err := extension.Attach(a.Owner(), g); err != nil {
		return nil, err
	}
	log.Debug().Str("id", a.Owner().ID()).Float64("marginal_cost", g.marginalCost).Msg("generator startup added")
	return g, nil
}

// GeneratorStartupSerializer reads and writes GeneratorStartup. Version 1.0
// calls the set point predefinedActivePowerSetpoint and has no startup cost.
type GeneratorStartupSerializer struct {
	iidmxml.VersionableSerializer
}

// NewGeneratorStartupSerializer returns the serializer of GeneratorStartup.
func NewGeneratorStartupSerializer() *GeneratorStartupSerializer {
	return &GeneratorStartupSerializer{
		VersionableSerializer: iidmxml.NewVersionableSerializer(GeneratorStartupName, "gs",
			iidmxml.NewCompatibilityTable().
				PutRange(iidmxml.V1_0, iidmxml.V1_4, "1.0").
				Put(iidmxml.V1_5, "1.0", "1.1"),
			map[string]string{
				"1.0": "http://www.itesla_project.eu/schema/iidm/ext/generator_startup/1_0",
				"1.1": "http://www.powsybl.org/schema/iidm/ext/generator_startup/1_1",
			}),
	}
}

func setpointAttribute(version string) string {
	if version == "1.0" {
		return "predefinedActivePowerSetpoint"
	}
	return "plannedActivePowerSetpoint"
}

// Write implements iidmxml.ExtensionSerializer.
func (s *GeneratorStartupSerializer) Write(ext extension.Extension, ctx *iidmxml.WriterContext) error {
	g, err := cast[*GeneratorStartup](ext)
	if err != nil {
		return err
	}
	version := versionOf(ctx, GeneratorStartupName)
	w := ctx.Writer()
	w.WriteOptionalFloatAttribute(setpointAttribute(version), g.plannedActivePowerSetpoint)
	if version != "1.0" {
		w.WriteOptionalFloatAttribute("startupCost", g.startupCost)
	}
	w.WriteOptionalFloatAttribute("marginalCost", g.marginalCost)
	w.WriteOptionalFloatAttribute("plannedOutageRate", g.plannedOutageRate)
	w.WriteOptionalFloatAttribute("forcedOutageRate", g.forcedOutageRate)
	return nil
}

// Read implements iidmxml.ExtensionSerializer.
func (s *GeneratorStartupSerializer) Read(owner extension.Extendable, ctx *iidmxml.ReaderContext) (extension.Extension, error) {
	version := versionOf(ctx, GeneratorStartupName)
	r := ctx.Reader()

	names := []string{setpointAttribute(version), "startupCost", "marginalCost", "plannedOutageRate", "forcedOutageRate"}
	values := make([]float64, len(names))
	for i, name := range names {
		if name == "startupCost" && version == "1.0" {
			values[i] = math.NaN()
			continue
		}
		v, err := r.OptionalFloatAttribute(name)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	g, err := extension.NewExtension[GeneratorStartupAdder](owner).
		WithPlannedActivePowerSetpoint(values[0]).
		WithStartupCost(values[1]).
		WithMarginalCost(values[2]).
		WithPlannedOutageRate(values[3]).
		WithForcedOutageRate(values[4]).
		Add()
	if err != nil {
		return nil, err
	}
	return g, nil
}
