package network

import (
	"fmt"
	"math"

	"github.com/toolink/iidm/variant"
)

// LoadType classifies a load.
type LoadType string

const (
	LoadTypeUndefined  LoadType = "UNDEFINED"
	LoadTypeAuxiliary  LoadType = "AUXILIARY"
	LoadTypeFictitious LoadType = "FICTITIOUS"
)

// ParseLoadType parses the XML representation of a load type.
func ParseLoadType(s string) (LoadType, error) {
	switch t := LoadType(s); t {
	case LoadTypeUndefined, LoadTypeAuxiliary, LoadTypeFictitious:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown load type %q", ErrValidation, s)
}

// Load is a power consumption whose set points differ per variant.
type Load struct {
	identifiable
	variant.Attributes

	loadType LoadType
	p0       *variant.Array[float64]
	q0       *variant.Array[float64]
}

// TypeName implements extension.Extendable.
func (l *Load) TypeName() string { return "Load" }

// LoadType returns the load classification.
func (l *Load) LoadType() LoadType { return l.loadType }

// P0 returns the active power set point under the working variant.
func (l *Load) P0() float64 { return l.p0.Get() }

// Q0 returns the reactive power set point under the working variant.
func (l *Load) Q0() float64 { return l.q0.Get() }

// SetP0 changes the active power set point under the working variant.
func (l *Load) SetP0(p float64) error {
	if math.IsNaN(p) {
		return validationError(l.TypeName(), l.id, "p0 is invalid")
	}
	l.p0.Set(p)
	return nil
}

// SetQ0 changes the reactive power set point under the working variant.
func (l *Load) SetQ0(q float64) error {
	if math.IsNaN(q) {
		return validationError(l.TypeName(), l.id, "q0 is invalid")
	}
	l.q0.Set(q)
	return nil
}

// LoadAdder builds a Load.
type LoadAdder struct {
	network  *Network
	id       string
	name     string
	loadType LoadType
	p0       float64
	q0       float64
}

// NewLoad returns an adder for a load of n.
func (n *Network) NewLoad() *LoadAdder {
	return &LoadAdder{network: n, loadType: LoadTypeUndefined, p0: math.NaN(), q0: math.NaN()}
}

func (a *LoadAdder) WithID(id string) *LoadAdder {
	a.id = id
	return a
}
func (a *LoadAdder) WithName(name string) *LoadAdder {
	a.name = name
	return a
}
func (a *LoadAdder) WithLoadType(t LoadType) *LoadAdder {
	a.loadType = t
	return a
}
func (a *LoadAdder) WithP0(p float64) *LoadAdder {
	a.p0 = p
	return a
}
func (a *LoadAdder) WithQ0(q float64) *LoadAdder {
	a.q0 = q
	return a
}

// Add validates the fields and adds the load to the network.
func (a *LoadAdder) Add() (*Load, error) {
	const kind = "Load"
	n := a.network
	if err := n.checkID(kind, a.id); err != nil {
		return nil, err
	}
	if _, err := ParseLoadType(string(a.loadType)); err != nil {
		return nil, validationError(kind, a.id, err.Error())
	}
	if math.IsNaN(a.p0) {
		return nil, validationError(kind, a.id, "p0 is not set")
	}
	if math.IsNaN(a.q0) {
		return nil, validationError(kind, a.id, "q0 is not set")
	}

	l := &Load{
		identifiable: identifiable{id: a.id, name: a.name, network: n},
		loadType:     a.loadType,
	}
	size := n.variants.ArraySize()
	l.p0 = variant.NewAttribute(&l.Attributes, n.variants, size, a.p0)
	l.q0 = variant.NewAttribute(&l.Attributes, n.variants, size, a.q0)

	n.loads = append(n.loads, l)
	n.register(l)
	return l, nil
}
