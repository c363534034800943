package network

import (
	"math"

	"github.com/toolink/iidm/variant"
)

// Generator is a power injection whose operating point differs per variant.
type Generator struct {
	identifiable
	variant.Attributes

	minP float64
	maxP float64

	targetP            *variant.Array[float64]
	targetQ            *variant.Array[float64]
	targetV            *variant.Array[float64]
	voltageRegulatorOn *variant.Array[bool]
}

// TypeName implements extension.Extendable.
func (g *Generator) TypeName() string { return "Generator" }

// MinP returns the minimum active power, in MW.
func (g *Generator) MinP() float64 { return g.minP }

// MaxP returns the maximum active power, in MW.
func (g *Generator) MaxP() float64 { return g.maxP }

// TargetP returns the active power target under the working variant.
func (g *Generator) TargetP() float64 { return g.targetP.Get() }

// TargetQ returns the reactive power target under the working variant.
func (g *Generator) TargetQ() float64 { return g.targetQ.Get() }

// TargetV returns the voltage target under the working variant.
func (g *Generator) TargetV() float64 { return g.targetV.Get() }

// VoltageRegulatorOn reports whether the generator regulates voltage under
// the working variant.
func (g *Generator) VoltageRegulatorOn() bool { return g.voltageRegulatorOn.Get() }

// SetTargetP changes the active power target under the working variant.
func (g *Generator) SetTargetP(p float64) error {
	if math.IsNaN(p) {
		return validationError(g.TypeName(), g.id, "invalid value (NaN) for active power target")
	}
	g.targetP.Set(p)
	return nil
}

// SetTargetQ changes the reactive power target under the working variant.
func (g *Generator) SetTargetQ(q float64) error {
	if !g.voltageRegulatorOn.Get() && math.IsNaN(q) {
		return validationError(g.TypeName(), g.id, "invalid value (NaN) for reactive power target when voltage regulator is off")
	}
	g.targetQ.Set(q)
	return nil
}

// SetTargetV changes the voltage target under the working variant.
func (g *Generator) SetTargetV(v float64) error {
	if g.voltageRegulatorOn.Get() && !(v > 0) {
		return validationError(g.TypeName(), g.id, "invalid value for voltage target when voltage regulator is on")
	}
	g.targetV.Set(v)
	return nil
}

// SetVoltageRegulatorOn switches voltage regulation under the working variant.
func (g *Generator) SetVoltageRegulatorOn(on bool) error {
	if err := checkVoltageControl(g.id, on, g.targetV.Get(), g.targetQ.Get()); err != nil {
		return err
	}
	g.voltageRegulatorOn.Set(on)
	return nil
}

func checkVoltageControl(id string, on bool, targetV, targetQ float64) error {
	if on && !(targetV > 0) {
		return validationError("Generator", id, "invalid value for voltage target when voltage regulator is on")
	}
	if !on && math.IsNaN(targetQ) {
		return validationError("Generator", id, "invalid value (NaN) for reactive power target when voltage regulator is off")
	}
	return nil
}

// GeneratorAdder builds a Generator.
type GeneratorAdder struct {
	network            *Network
	id                 string
	name               string
	minP               float64
	maxP               float64
	targetP            float64
	targetQ            float64
	targetV            float64
	voltageRegulatorOn bool
}

// NewGenerator returns an adder for a generator of n.
func (n *Network) NewGenerator() *GeneratorAdder {
	nan := math.NaN()
	return &GeneratorAdder{network: n, minP: nan, maxP: nan, targetP: nan, targetQ: nan, targetV: nan}
}

func (a *GeneratorAdder) WithID(id string) *GeneratorAdder {
	a.id = id
	return a
}
func (a *GeneratorAdder) WithName(name string) *GeneratorAdder {
	a.name = name
	return a
}
func (a *GeneratorAdder) WithMinP(p float64) *GeneratorAdder {
	a.minP = p
	return a
}
func (a *GeneratorAdder) WithMaxP(p float64) *GeneratorAdder {
	a.maxP = p
	return a
}
func (a *GeneratorAdder) WithTargetP(p float64) *GeneratorAdder {
	a.targetP = p
	return a
}
func (a *GeneratorAdder) WithTargetQ(q float64) *GeneratorAdder {
	a.targetQ = q
	return a
}
func (a *GeneratorAdder) WithTargetV(v float64) *GeneratorAdder {
	a.targetV = v
	return a
}
func (a *GeneratorAdder) WithVoltageRegulatorOn(on bool) *GeneratorAdder {
	a.voltageRegulatorOn = on
	return a
}

// Add validates the fields and adds the generator to the network.
func (a *GeneratorAdder) Add() (*Generator, error) {
	const kind = "Generator"
	n := a.network
	if err := n.checkID(kind, a.id); err != nil {
		return nil, err
	}
	if err := checkActiveLimits(kind, a.id, a.minP, a.maxP); err != nil {
		return nil, err
	}
	if math.IsNaN(a.targetP) {
		return nil, validationError(kind, a.id, "invalid value (NaN) for active power target")
	}
	if err := checkVoltageControl(a.id, a.voltageRegulatorOn, a.targetV, a.targetQ); err != nil {
		return nil, err
	}

	g := &Generator{
		identifiable: identifiable{id: a.id, name: a.name, network: n},
		minP:         a.minP,
		maxP:         a.maxP,
	}
	size := n.variants.ArraySize()
	g.targetP = variant.NewAttribute(&g.Attributes, n.variants, size, a.targetP)
	g.targetQ = variant.NewAttribute(&g.Attributes, n.variants, size, a.targetQ)
	g.targetV = variant.NewAttribute(&g.Attributes, n.variants, size, a.targetV)
	g.voltageRegulatorOn = variant.NewAttribute(&g.Attributes, n.variants, size, a.voltageRegulatorOn)

	n.generators = append(n.generators, g)
	n.register(g)
	return g, nil
}

func checkActiveLimits(kind, id string, minP, maxP float64) error {
	if math.IsNaN(minP) {
		return validationError(kind, id, "minimum P is not set")
	}
	if math.IsNaN(maxP) {
		return validationError(kind, id, "maximum P is not set")
	}
	if minP > maxP {
		return validationError(kind, id, "invalid active limits ["+formatFloat(minP)+", "+formatFloat(maxP)+"]")
	}
	return nil
}
