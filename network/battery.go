package network

import (
	"math"

	"github.com/toolink/iidm/variant"
)

// Battery is a storage unit whose set points differ per variant.
type Battery struct {
	identifiable
	variant.Attributes

	minP float64
	maxP float64

	p0 *variant.Array[float64]
	q0 *variant.Array[float64]
}

// TypeName implements extension.Extendable.
func (b *Battery) TypeName() string { return "Battery" }

// MinP returns the minimum active power, in MW.
func (b *Battery) MinP() float64 { return b.minP }

// MaxP returns the maximum active power, in MW.
func (b *Battery) MaxP() float64 { return b.maxP }

// P0 returns the active power set point under the working variant.
func (b *Battery) P0() float64 { return b.p0.Get() }

// Q0 returns the reactive power set point under the working variant.
func (b *Battery) Q0() float64 { return b.q0.Get() }

// SetP0 changes the active power set point under the working variant.
func (b *Battery) SetP0(p float64) error {
	if math.IsNaN(p) {
		return validationError(b.TypeName(), b.id, "p0 is invalid")
	}
	b.p0.Set(p)
	return nil
}

// SetQ0 changes the reactive power set point under the working variant.
func (b *Battery) SetQ0(q float64) error {
	if math.IsNaN(q) {
		return validationError(b.TypeName(), b.id, "q0 is invalid")
	}
	b.q0.Set(q)
	return nil
}

// BatteryAdder builds a Battery.
type BatteryAdder struct {
	network *Network
	id      string
	name    string
	minP    float64
	maxP    float64
	p0      float64
	q0      float64
}

// NewBattery returns an adder for a battery of n.
func (n *Network) NewBattery() *BatteryAdder {
	nan := math.NaN()
	return &BatteryAdder{network: n, minP: nan, maxP: nan, p0: nan, q0: nan}
}

func (a *BatteryAdder) WithID(id string) *BatteryAdder {
	a.id = id
	return a
}
func (a *BatteryAdder) WithName(name string) *BatteryAdder {
	a.name = name
	return a
}
func (a *BatteryAdder) WithMinP(p float64) *BatteryAdder {
	a.minP = p
	return a
}
func (a *BatteryAdder) WithMaxP(p float64) *BatteryAdder {
	a.maxP = p
	return a
}
func (a *BatteryAdder) WithP0(p float64) *BatteryAdder {
	a.p0 = p
	return a
}
func (a *BatteryAdder) WithQ0(q float64) *BatteryAdder {
	a.q0 = q
	return a
}

// Add validates the fields and adds the battery to the network.
func (a *BatteryAdder) Add() (*Battery, error) {
	const kind = "Battery"
	n := a.network
	if err := n.checkID(kind, a.id); err != nil {
		return nil, err
	}
	if err := checkActiveLimits(kind, a.id, a.minP, a.maxP); err != nil {
		return nil, err
	}
	if math.IsNaN(a.p0) {
		return nil, validationError(kind, a.id, "p0 is not set")
	}
	if math.IsNaN(a.q0) {
		return nil, validationError(kind, a.id, "q0 is not set")
	}

	b := &Battery{
		identifiable: identifiable{id: a.id, name: a.name, network: n},
		minP:         a.minP,
		maxP:         a.maxP,
	}
	size := n.variants.ArraySize()
	b.p0 = variant.NewAttribute(&b.Attributes, n.variants, size, a.p0)
	b.q0 = variant.NewAttribute(&b.Attributes, n.variants, size, a.q0)

	n.batteries = append(n.batteries, b)
	n.register(b)
	return b, nil
}
