package extensions

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/toolink/iidm/extension"
	"github.com/toolink/iidm/iidmxml"
	"github.com/toolink/iidm/network"
	"github.com/toolink/iidm/variant"
)

// LoadDetailName is the name of the LoadDetail extension.
const LoadDetailName = "detail"

// LoadDetail splits the consumption of a load into a fixed and a variable
// part. Its values differ per variant.
type LoadDetail struct {
	extension.Base
	variant.Attributes

	fixedActivePower      *variant.Array[float64]
	fixedReactivePower    *variant.Array[float64]
	variableActivePower   *variant.Array[float64]
	variableReactivePower *variant.Array[float64]
}

// Name implements extension.Extension.
func (*LoadDetail) Name() string { return LoadDetailName }

// AssertExtendable implements extension.Extension.
func (*LoadDetail) AssertExtendable(owner extension.Extendable) error {
	if _, ok := owner.(*network.Load); ok {
		return nil
	}
	return extension.OwnerTypeError(LoadDetailName, owner, "Load")
}

// FixedActivePower returns the fixed part of the active power under the working variant.
func (d *LoadDetail) FixedActivePower() float64 { return d.fixedActivePower.Get() }

// FixedReactivePower returns the fixed part of the reactive power under the working variant.
func (d *LoadDetail) FixedReactivePower() float64 { return d.fixedReactivePower.Get() }

// VariableActivePower returns the variable part of the active power under the working variant.
func (d *LoadDetail) VariableActivePower() float64 { return d.variableActivePower.Get() }

// VariableReactivePower returns the variable part of the reactive power under the working variant.
func (d *LoadDetail) VariableReactivePower() float64 { return d.variableReactivePower.Get() }

// SetFixedActivePower changes the value under the working variant.
func (d *LoadDetail) SetFixedActivePower(p float64) error {
	return setPower(d.fixedActivePower, "fixed active power", p)
}

// SetFixedReactivePower changes the value under the working variant.
func (d *LoadDetail) SetFixedReactivePower(q float64) error {
	return setPower(d.fixedReactivePower, "fixed reactive power", q)
}

// SetVariableActivePower changes the value under the working variant.
func (d *LoadDetail) SetVariableActivePower(p float64) error {
	return setPower(d.variableActivePower, "variable active power", p)
}

// SetVariableReactivePower changes the value under the working variant.
func (d *LoadDetail) SetVariableReactivePower(q float64) error {
	return setPower(d.variableReactivePower, "variable reactive power", q)
}

func setPower(arr *variant.Array[float64], what string, v float64) error {
	if err := checkPower(what, v); err != nil {
		return err
	}
	arr.Set(v)
	return nil
}

func checkPower(what string, v float64) error {
	if math.IsNaN(v) {
		return validationErrorf("Invalid %s", what)
	}
	return nil
}

// LoadDetailAdder builds a LoadDetail. Every value is required.
type LoadDetailAdder struct {
	extension.AdderBase
	fixedActivePower      float64
	fixedReactivePower    float64
	variableActivePower   float64
	variableReactivePower float64
}

// InitDefaults implements extension.Defaulter.
func (a *LoadDetailAdder) InitDefaults() {
	nan := math.NaN()
	a.fixedActivePower = nan
	a.fixedReactivePower = nan
	a.variableActivePower = nan
	a.variableReactivePower = nan
}

// WithFixedActivePower sets the fixed active power. Required.
func (a *LoadDetailAdder) WithFixedActivePower(p float64) *LoadDetailAdder {
	a.fixedActivePower = p
	return a
}

// WithFixedReactivePower sets the fixed reactive power. Required.
func (a *LoadDetailAdder) WithFixedReactivePower(q float64) *LoadDetailAdder {
	a.fixedReactivePower = q
	return a
}

// WithVariableActivePower sets the variable active power. Required.
func (a *LoadDetailAdder) WithVariableActivePower(p float64) *LoadDetailAdder {
	a.variableActivePower = p
	return a
}

// WithVariableReactivePower sets the variable reactive power. Required.
func (a *LoadDetailAdder) WithVariableReactivePower(q float64) *LoadDetailAdder {
	a.variableReactivePower = q
	return a
}

// Add validates the values and attaches the extension to the adder's owner,
// with every variant of the owner's network starting from the same values.
func (a *LoadDetailAdder) Add() (*LoadDetail, error) {
	load, ok := a.Owner().(*network.Load)
	if !ok {
		return nil, extension.OwnerTypeError(LoadDetailName, a.Owner(), "Load")
	}

	checks := []struct {
		what string
		v    float64
	}{
		{"fixed active power", a.fixedActivePower},
		{"fixed reactive power", a.fixedReactivePower},
		{"variable active power", a.variableActivePower},
		{"variable reactive power", a.variableReactivePower},
	}
	for _, c := range checks {
		if err := checkPower(c.what, c.v); err != nil {
			return nil, err
		}
	}

	variants := load.Network().VariantManager()
	size := variants.ArraySize()

	d := &LoadDetail{}
	d.fixedActivePower = variant.NewAttribute(&d.Attributes, variants, size, a.fixedActivePower)
	d.fixedReactivePower = variant.NewAttribute(&d.Attributes, variants, size, a.fixedReactivePower)
	d.variableActivePower = variant.NewAttribute(&d.Attributes, variants, size, a.variableActivePower)
	d.variableReactivePower = variant.NewAttribute(&d.Attributes, variants, size, a.variableReactivePower)

	if err := extension.Attach(load, d); err != nil {
		return nil, err
	}
	log.Debug().Str("id", load.ID()).Int("variants", size).Msg("load detail added")
	return d, nil
}

// LoadDetailSerializer writes the values of the working variant.
type LoadDetailSerializer struct {
	iidmxml.VersionableSerializer
}

// NewLoadDetailSerializer returns the serializer of LoadDetail.
func NewLoadDetailSerializer() *LoadDetailSerializer {
	return &LoadDetailSerializer{
		VersionableSerializer: iidmxml.NewVersionableSerializer(LoadDetailName, "ld",
			iidmxml.NewCompatibilityTable().PutRange(iidmxml.V1_0, iidmxml.CurrentVersion, "1.0"),
			map[string]string{
				"1.0": "http://www.powsybl.org/schema/iidm/ext/load_detail/1_0",
			}),
	}
}

// Write implements iidmxml.ExtensionSerializer.
func (s *LoadDetailSerializer) Write(ext extension.Extension, ctx *iidmxml.WriterContext) error {
	d, err := cast[*LoadDetail](ext)
	if err != nil {
		return err
	}
	w := ctx.Writer()
	w.WriteFloatAttribute("fixedActivePower", d.FixedActivePower())
	w.WriteFloatAttribute("fixedReactivePower", d.FixedReactivePower())
	w.WriteFloatAttribute("variableActivePower", d.VariableActivePower())
	w.WriteFloatAttribute("variableReactivePower", d.VariableReactivePower())
	return nil
}

// Read implements iidmxml.ExtensionSerializer.
func (s *LoadDetailSerializer) Read(owner extension.Extendable, ctx *iidmxml.ReaderContext) (extension.Extension, error) {
	r := ctx.Reader()
	var values [4]float64
	for i, name := range []string{"fixedActivePower", "fixedReactivePower", "variableActivePower", "variableReactivePower"} {
		v, err := r.FloatAttribute(name)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	d, err := extension.NewExtension[LoadDetailAdder](owner).
		WithFixedActivePower(values[0]).
		WithFixedReactivePower(values[1]).
		WithVariableActivePower(values[2]).
		WithVariableReactivePower(values[3]).
		Add()
	if err != nil {
		return nil, err
	}
	return d, nil
}
