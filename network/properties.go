package network

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Properties holds the free-form string properties of an identifiable.
// The zero value is ready to use.
type Properties struct {
	data map[string]string
}

// Set adds or updates a property and returns the previous value, if any.
func (p *Properties) Set(key, value string) (string, bool) {
	if p.data == nil {
		p.data = make(map[string]string)
	}
	old, existed := p.data[key]
	p.data[key] = value
	log.Debug().Str("key", key).Str("value", value).Msg("property set")
	return old, existed
}

// Get returns the value of a property.
func (p *Properties) Get(key string) (string, bool) {
	value, ok := p.data[key]
	return value, ok
}

// GetOr returns the value of a property, or def when it is not set.
func (p *Properties) GetOr(key, def string) string {
	if value, ok := p.data[key]; ok {
		return value
	}
	return def
}

// Has reports whether a property is set.
func (p *Properties) Has(key string) bool {
	_, ok := p.data[key]
	return ok
}

// Remove deletes a property and reports whether it was set.
func (p *Properties) Remove(key string) bool {
	_, ok := p.data[key]
	delete(p.data, key)
	return ok
}

// Names returns the property names, sorted.
func (p *Properties) Names() []string {
	names := make([]string, 0, len(p.data))
	for name := range p.data {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	return len(p.data)
}

// PropertyAs parses the property under key as T.
func PropertyAs[T string | bool | int | float64](p *Properties, key string) (t T, err error) {
	raw, ok := p.Get(key)
	if !ok {
		err = fmt.Errorf("%w: %q", ErrPropertyNotFound, key)
		return
	}

	var value any
	switch any(t).(type) {
	case string:
		value = raw
	case bool:
		value, err = strconv.ParseBool(raw)
	case int:
		value, err = strconv.Atoi(raw)
	case float64:
		value, err = strconv.ParseFloat(raw, 64)
	}
	if err != nil {
		err = fmt.Errorf("property %q has value %q, which is not a %T: %w", key, raw, t, err)
		return
	}
	t = value.(T)
	return
}
