package network

import (
	"math"
	"strconv"
)

// Line is an AC branch between two substations.
type Line struct {
	identifiable
	substation1 string
	substation2 string
	r           float64
	x           float64
}

// TypeName implements extension.Extendable.
func (l *Line) TypeName() string { return "Line" }

// Substation1 returns the id of the substation at side one.
func (l *Line) Substation1() string { return l.substation1 }

// Substation2 returns the id of the substation at side two.
func (l *Line) Substation2() string { return l.substation2 }

// R returns the series resistance, in ohms.
func (l *Line) R() float64 { return l.r }

// X returns the series reactance, in ohms.
func (l *Line) X() float64 { return l.x }

// LineAdder builds a Line.
type LineAdder struct {
	network     *Network
	id          string
	name        string
	substation1 string
	substation2 string
	r           float64
	x           float64
}

// NewLine returns an adder for a line of n.
func (n *Network) NewLine() *LineAdder {
	return &LineAdder{network: n, r: math.NaN(), x: math.NaN()}
}

func (a *LineAdder) WithID(id string) *LineAdder {
	a.id = id
	return a
}
func (a *LineAdder) WithName(name string) *LineAdder {
	a.name = name
	return a
}
func (a *LineAdder) WithSubstation1(id string) *LineAdder {
	a.substation1 = id
	return a
}
func (a *LineAdder) WithSubstation2(id string) *LineAdder {
	a.substation2 = id
	return a
}
func (a *LineAdder) WithR(r float64) *LineAdder {
	a.r = r
	return a
}
func (a *LineAdder) WithX(x float64) *LineAdder {
	a.x = x
	return a
}

// Add validates the fields and adds the line to the network. Both ends must
// name substations already in the network.
func (a *LineAdder) Add() (*Line, error) {
	const kind = "AC line"
	n := a.network
	if err := n.checkID(kind, a.id); err != nil {
		return nil, err
	}
	for _, side := range []string{a.substation1, a.substation2} {
		if side == "" {
			return nil, validationError(kind, a.id, "substation is not set")
		}
		if s, ok := n.index[side]; !ok || s.TypeName() != "Substation" {
			return nil, validationError(kind, a.id, "substation '"+side+"' not found")
		}
	}
	if math.IsNaN(a.r) {
		return nil, validationError(kind, a.id, "r is invalid")
	}
	if math.IsNaN(a.x) {
		return nil, validationError(kind, a.id, "x is invalid")
	}

	l := &Line{
		identifiable: identifiable{id: a.id, name: a.name, network: n},
		substation1:  a.substation1,
		substation2:  a.substation2,
		r:            a.r,
		x:            a.x,
	}
	n.lines = append(n.lines, l)
	n.register(l)
	return l, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
