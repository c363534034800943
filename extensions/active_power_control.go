package extensions

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/toolink/iidm/extension"
	"github.com/toolink/iidm/iidmxml"
	"github.com/toolink/iidm/network"
)

// ActivePowerControlName is the name of the ActivePowerControl extension.
const ActivePowerControlName = "activePowerControl"

// ActivePowerControl describes how a generator or a battery takes part in
// primary frequency control.
type ActivePowerControl struct {
	extension.Base
	participate         bool
	droop               float64
	participationFactor float64
}

// Name implements extension.Extension.
func (*ActivePowerControl) Name() string { return ActivePowerControlName }

// AssertExtendable implements extension.Extension.
func (*ActivePowerControl) AssertExtendable(owner extension.Extendable) error {
	switch owner.(type) {
	case *network.Generator, *network.Battery:
		return nil
	}
	return extension.OwnerTypeError(ActivePowerControlName, owner, "Generator", "Battery")
}

// Participate reports whether the owner takes part in active power control.
func (a *ActivePowerControl) Participate() bool { return a.participate }

// Droop returns the droop, in percent.
func (a *ActivePowerControl) Droop() float64 { return a.droop }

// ParticipationFactor returns the participation factor, NaN when unset.
func (a *ActivePowerControl) ParticipationFactor() float64 { return a.participationFactor }

// SetParticipate turns participation on or off.
func (a *ActivePowerControl) SetParticipate(participate bool) {
	a.participate = participate
}

// SetDroop changes the droop. NaN is rejected.
func (a *ActivePowerControl) SetDroop(droop float64) error {
	if math.IsNaN(droop) {
		return validationErrorf("Active power control droop is not set")
	}
	a.droop = droop
	return nil
}

// SetParticipationFactor changes the participation factor. NaN unsets it.
func (a *ActivePowerControl) SetParticipationFactor(factor float64) {
	a.participationFactor = factor
}

// ActivePowerControlAdder builds an ActivePowerControl. Create it with
// extension.NewExtension.
type ActivePowerControlAdder struct {
	extension.AdderBase
	participate         bool
	droop               float64
	participationFactor float64
}

// InitDefaults implements extension.Defaulter.
func (a *ActivePowerControlAdder) InitDefaults() {
	a.droop = math.NaN()
	a.participationFactor = math.NaN()
}

// WithParticipate sets whether the owner participates. Defaults to false.
func (a *ActivePowerControlAdder) WithParticipate(participate bool) *ActivePowerControlAdder {
	a.participate = participate
	return a
}

// WithDroop sets the droop. Required.
func (a *ActivePowerControlAdder) WithDroop(droop float64) *ActivePowerControlAdder {
	a.droop = droop
	return a
}

// WithParticipationFactor sets the optional participation factor.
func (a *ActivePowerControlAdder) WithParticipationFactor(factor float64) *ActivePowerControlAdder {
	a.participationFactor = factor
	return a
}

// Add validates the fields and attaches the extension to the adder's owner.
func (a *ActivePowerControlAdder) Add() (*ActivePowerControl, error) {
	if math.IsNaN(a.droop) {
		return nil, validationErrorf("Active power control droop is not set")
	}
	apc := &ActivePowerControl{
		participate:         a.participate,
		droop:               a.droop,
		participationFactor: a.participationFactor,
	}
	if err := extension.Attach(a.Owner(), apc); err != nil {
		return nil, err
	}
	log.Debug().Str("id", a.Owner().ID()).Bool("participate", apc.participate).Float64("droop", apc.droop).Msg("active power control added")
	return apc, nil
}

// ActivePowerControlSerializer reads and writes ActivePowerControl. Version
// 1.1 adds participationFactor.
type ActivePowerControlSerializer struct {
	iidmxml.VersionableSerializer
}

// NewActivePowerControlSerializer returns the serializer of ActivePowerControl.
func NewActivePowerControlSerializer() *ActivePowerControlSerializer {
	return &ActivePowerControlSerializer{
		VersionableSerializer: iidmxml.NewVersionableSerializer(ActivePowerControlName, "apc",
			iidmxml.NewCompatibilityTable().
				PutRange(iidmxml.V1_0, iidmxml.V1_4, "1.0").
				Put(iidmxml.V1_5, "1.0", "1.1"),
			map[string]string{
				"1.0": "http://www.powsybl.org/schema/iidm/ext/active_power_control/1_0",
				"1.1": "http://www.powsybl.org/schema/iidm/ext/active_power_control/1_1",
			}),
	}
}

// Write implements iidmxml.ExtensionSerializer.
func (s *ActivePowerControlSerializer) Write(ext extension.Extension, ctx *iidmxml.WriterContext) error {
	apc, err := cast[*ActivePowerControl](ext)
	if err != nil {
		return err
	}
	w := ctx.Writer()
	w.WriteBoolAttribute("participate", apc.participate)
	w.WriteFloatAttribute("droop", apc.droop)
	if versionOf(ctx, ActivePowerControlName) != "1.0" {
		w.WriteOptionalFloatAttribute("participationFactor", apc.participationFactor)
	}
	return nil
}

// Read implements iidmxml.ExtensionSerializer.
func (s *ActivePowerControlSerializer) Read(owner extension.Extendable, ctx *iidmxml.ReaderContext) (extension.Extension, error) {
	r := ctx.Reader()
	participate, err := r.BoolAttribute("participate")
	if err != nil {
		return nil, err
	}
	droop, err := r.FloatAttribute("droop")
	if err != nil {
		return nil, err
	}
	factor := math.NaN()
	if versionOf(ctx, ActivePowerControlName) != "1.0" {
		if factor, err = r.OptionalFloatAttribute("participationFactor"); err != nil {
			return nil, err
		}
	}
	apc, err := extension.NewExtension[ActivePowerControlAdder](owner).
		WithParticipate(participate).
		WithDroop(droop).
		WithParticipationFactor(factor).
		Add()
	if err != nil {
		return nil, err
	}
	return apc, nil
}
