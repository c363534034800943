// Package network is the in-memory element graph the extensions attach to:
// a network of substations, generators, batteries, loads and lines, with
// per-variant operating points.
package network

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/toolink/iidm"
	"github.com/toolink/iidm/extension"
	"github.com/toolink/iidm/variant"
)

// Predefined errors for the network model.
var (
	ErrIdentifiableNotFound = fmt.Errorf("identifiable %w", iidm.ErrNotFound)
	ErrPropertyNotFound     = fmt.Errorf("property %w", iidm.ErrNotFound)
	ErrValidation           = iidm.ErrValidation
)

// Identifiable is implemented by every network element with an id.
type Identifiable interface {
	extension.Extendable

	// Name returns the human readable name, which may be empty.
	Name() string
	// NameOrID returns the name, or the id when no name is set.
	NameOrID() string
	// Network returns the network the element belongs to.
	Network() *Network
	// Properties returns the element's string properties.
	Properties() *Properties
}

type identifiable struct {
	id         string
	name       string
	network    *Network
	properties Properties
	extensions extension.Container
}

func (i *identifiable) ID() string { return i.id }
func (i *identifiable) Name() string { return i.name }
func (i *identifiable) Network() *Network { return i.network }
func (i *identifiable) Properties() *Properties { return &i.properties }
func (i *identifiable) ExtensionContainer() *extension.Container { return &i.extensions }

func (i *identifiable) NameOrID() string {
	if i.name != "" {
		return i.name
	}
	return i.id
}

// SetName changes the human readable name.
func (i *identifiable) SetName(name string) {
	i.name = name
}

// Option configures a Network.
type Option func(*Network)

// WithCaseDate sets the date of the case the network describes.
func WithCaseDate(t time.Time) Option {
	return func(n *Network) {
		n.caseDate = t
	}
}

// WithForecastDistance sets the forecast distance, in minutes.
func WithForecastDistance(minutes int) Option {
	return func(n *Network) {
		n.forecastDistance = minutes
	}
}

// WithVariantOptions passes options to the network's variant manager.
func WithVariantOptions(opts ...variant.Option) Option {
	return func(n *Network) {
		n.variantOpts = append(n.variantOpts, opts...)
	}
}

// Network is the root of the element graph. It owns the identifiable index
// and the variant manager shared by every variant-aware element.
type Network struct {
	identifiable

	caseDate         time.Time
	forecastDistance int
	sourceFormat     string

	variantOpts []variant.Option
	variants    *variant.Manager

	index       map[string]Identifiable
	order       []Identifiable
	substations []*Substation
	generators  []*Generator
	batteries   []*Battery
	loads       []*Load
	lines       []*Line
}

// New creates an empty network. An empty id is replaced by a random UUID.
func New(id, sourceFormat string, opts ...Option) *Network {
	if id == "" {
		id = uuid.NewString()
	}
	n := &Network{
		sourceFormat: sourceFormat,
		caseDate:     time.Now().UTC().Truncate(time.Millisecond),
		index:        make(map[string]Identifiable),
	}
	n.identifiable = identifiable{id: id, network: n}
	for _, opt := range opts {
		opt(n)
	}
	n.variants = variant.NewManager(n, n.variantOpts...)
	n.index[id] = n
	log.Debug().Str("id", id).Str("source_format", sourceFormat).Msg("network created")
	return n
}

// TypeName implements extension.Extendable.
func (n *Network) TypeName() string { return "Network" }

// CaseDate returns the date of the case.
func (n *Network) CaseDate() time.Time { return n.caseDate }

// SetCaseDate changes the date of the case.
func (n *Network) SetCaseDate(t time.Time) { n.caseDate = t }

// ForecastDistance returns the forecast distance in minutes.
func (n *Network) ForecastDistance() int { return n.forecastDistance }

// SetForecastDistance changes the forecast distance.
func (n *Network) SetForecastDistance(minutes int) { n.forecastDistance = minutes }

// SourceFormat returns the format the network was built from.
func (n *Network) SourceFormat() string { return n.sourceFormat }

// VariantManager returns the manager of the network's variants.
func (n *Network) VariantManager() *variant.Manager { return n.variants }

// Substations returns the substations in insertion order.
func (n *Network) Substations() []*Substation { return n.substations }

// Generators returns the generators in insertion order.
func (n *Network) Generators() []*Generator { return n.generators }

// Batteries returns the batteries in insertion order.
func (n *Network) Batteries() []*Battery { return n.batteries }

// Loads returns the loads in insertion order.
func (n *Network) Loads() []*Load { return n.loads }

// Lines returns the lines in insertion order.
func (n *Network) Lines() []*Line { return n.lines }

// Identifiables returns every element of the network, the network first,
// then the others in insertion order.
func (n *Network) Identifiables() []Identifiable {
	out := make([]Identifiable, 0, len(n.order)+1)
	out = append(out, n)
	return append(out, n.order...)
}

// Find returns the identifiable with the given id.
func (n *Network) Find(id string) (Identifiable, bool) {
	i, ok := n.index[id]
	return i, ok
}

// Get is like Find but fails with ErrIdentifiableNotFound.
func (n *Network) Get(id string) (Identifiable, error) {
	i, ok := n.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrIdentifiableNotFound, id)
	}
	return i, nil
}

// Remove deletes an element and, with it, its extensions.
func (n *Network) Remove(id string) error {
	i, ok := n.index[id]
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrIdentifiableNotFound, id)
	}
	if i == Identifiable(n) {
		return fmt.Errorf("%w: the network itself cannot be removed", iidm.ErrInvalidState)
	}
	delete(n.index, id)
	n.order = removeItem(n.order, i)
	switch e := i.(type) {
	case *Substation:
		n.substations = removeItem(n.substations, e)
	case *Generator:
		n.generators = removeItem(n.generators, e)
	case *Battery:
		n.batteries = removeItem(n.batteries, e)
	case *Load:
		n.loads = removeItem(n.loads, e)
	case *Line:
		n.lines = removeItem(n.lines, e)
	}
	log.Debug().Str("id", id).Str("type", i.TypeName()).Msg("identifiable removed")
	return nil
}

func removeItem[T comparable](items []T, item T) []T {
	out := items[:0]
	for _, it := range items {
		if it != item {
			out = append(out, it)
		}
	}
	return out
}

// MultiVariantObjects implements variant.ObjectSource: every variant-aware
// element, followed by every variant-aware extension attached to any element.
func (n *Network) MultiVariantObjects() []variant.MultiVariantObject {
	var objects []variant.MultiVariantObject
	for _, g := range n.generators {
		objects = append(objects, g)
	}
	for _, b := range n.batteries {
		objects = append(objects, b)
	}
	for _, l := range n.loads {
		objects = append(objects, l)
	}
	for _, i := range n.Identifiables() {
		for _, ext := range extension.List(i) {
			if obj, ok := ext.(variant.MultiVariantObject); ok {
				objects = append(objects, obj)
			}
		}
	}
	return objects
}

// checkID rejects empty and already used ids.
func (n *Network) checkID(kind, id string) error {
	if id == "" {
		return validationError(kind, id, "id is not set")
	}
	if existing, exists := n.index[id]; exists {
		log.Error().Str("id", id).Str("type", kind).Str("existing_type", existing.TypeName()).Msg("duplicate identifier")
		return fmt.Errorf("%w: the network %s already contains an object '%s' with the id '%s'",
			iidm.ErrDuplicateID, n.id, existing.TypeName(), id)
	}
	return nil
}

func (n *Network) register(i Identifiable) {
	n.index[i.ID()] = i
	n.order = append(n.order, i)
	log.Debug().Str("id", i.ID()).Str("type", i.TypeName()).Msg("identifiable added")
}

func validationError(kind, id, msg string) error {
	return fmt.Errorf("%w: %s '%s': %s", ErrValidation, kind, id, msg)
}
