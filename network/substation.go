package network

// Substation groups equipment at one geographic site.
type Substation struct {
	identifiable
	country string
	tso     string
}

// TypeName implements extension.Extendable.
func (s *Substation) TypeName() string { return "Substation" }

// Country returns the ISO country code, possibly empty.
func (s *Substation) Country() string { return s.country }

// TSO returns the transmission system operator, possibly empty.
func (s *Substation) TSO() string { return s.tso }

// SubstationAdder builds a Substation.
type SubstationAdder struct {
	network *Network
	id      string
	name    string
	country string
	tso     string
}

// NewSubstation returns an adder for a substation of n.
func (n *Network) NewSubstation() *SubstationAdder {
	return &SubstationAdder{network: n}
}

func (a *SubstationAdder) WithID(id string) *SubstationAdder {
	a.id = id
	return a
}
func (a *SubstationAdder) WithName(name string) *SubstationAdder {
	a.name = name
	return a
}
func (a *SubstationAdder) WithCountry(country string) *SubstationAdder {
	a.country = country
	return a
}
func (a *SubstationAdder) WithTSO(tso string) *SubstationAdder {
	a.tso = tso
	return a
}

// Add validates the fields and adds the substation to the network.
func (a *SubstationAdder) Add() (*Substation, error) {
	if err := a.network.checkID("Substation", a.id); err != nil {
		return nil, err
	}
	s := &Substation{
		identifiable: identifiable{id: a.id, name: a.name, network: a.network},
		country:      a.country,
		tso:          a.tso,
	}
	a.network.substations = append(a.network.substations, s)
	a.network.register(s)
	return s, nil
}
