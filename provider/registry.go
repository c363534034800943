// Package provider defines category-scoped registries mapping an extension
// name to the provider (typically a serializer) able to handle it.
package provider

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/toolink/iidm"
)

// Provider is implemented by anything registered in a Registry.
type Provider interface {
	// ExtensionName returns the name of the extension the provider handles.
	// It is the registration and lookup key.
	ExtensionName() string

	// CategoryName returns the category the provider belongs to. A registry
	// only accepts providers of its own category.
	CategoryName() string
}

// Predefined errors for provider registration.
var (
	ErrProviderAlreadyRegistered = fmt.Errorf("provider %w", iidm.ErrAlreadyExists)
	ErrProviderNotFound          = fmt.Errorf("provider %w", iidm.ErrNotFound)
	ErrCategoryMismatch          = fmt.Errorf("%w: provider category mismatch", iidm.ErrInvalidState)
)

// Registry maps extension names to providers of one category.
//
// A registry is meant to be filled once at startup and then shared by every
// reader and writer; it is nevertheless safe for concurrent use.
type Registry[P Provider] struct {
	category  string
	mu        sync.RWMutex
	providers map[string]P // keyed by extension name
	order     []string     // registration order
}

// New creates an empty registry for category.
func New[P Provider](category string) *Registry[P] {
	return &Registry[P]{
		category:  category,
		providers: make(map[string]P),
	}
}

// Category returns the category the registry was created for.
func (r *Registry[P]) Category() string {
	return r.category
}

// Register adds p under p.ExtensionName(). A second provider for the same
// name is rejected with ErrProviderAlreadyRegistered.
func (r *Registry[P]) Register(p P) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.ExtensionName()
	if p.CategoryName() != r.category {
		log.Error().Str("extension", name).Str("category", p.CategoryName()).Str("registry", r.category).Msg("attempted to register provider in the wrong category")
		return fmt.Errorf("%w: %s belongs to %q, registry is %q", ErrCategoryMismatch, name, p.CategoryName(), r.category)
	}
	if _, exists := r.providers[name]; exists {
		log.Error().Str("extension", name).Str("category", r.category).Msg("attempted to register duplicate provider")
		return fmt.Errorf("%w: %s", ErrProviderAlreadyRegistered, name)
	}

	r.providers[name] = p
	r.order = append(r.order, name)
	log.Info().Str("extension", name).Str("category", r.category).Msg("provider registered")
	return nil
}

// MustRegister is like Register but panics on error. Useful during
// application startup.
func (r *Registry[P]) MustRegister(providers ...P) {
	for _, p := range providers {
		if err := r.Register(p); err != nil {
			log.Panic().Err(err).Msg("failed to register provider")
		}
	}
}

// Unregister removes the provider registered under name.
func (r *Registry[P]) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		log.Warn().Str("extension", name).Str("category", r.category).Msg("attempted to unregister non-existent provider")
		return fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	delete(r.providers, name)

	order := make([]string, 0, len(r.order)-1)
	for _, n := range r.order {
		if n != name {
			order = append(order, n)
		}
	}
	r.order = order

	log.Info().Str("extension", name).Str("category", r.category).Msg("provider unregistered")
	return nil
}

// Find returns the provider registered under name.
func (r *Registry[P]) Find(name string) (P, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Get is like Find but fails with ErrProviderNotFound.
func (r *Registry[P]) Get(name string) (P, error) {
	p, ok := r.Find(name)
	if !ok {
		return p, fmt.Errorf("%w: %s in category %q", ErrProviderNotFound, name, r.category)
	}
	return p, nil
}

// Providers returns the registered providers in registration order.
func (r *Registry[P]) Providers() []P {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]P, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.providers[name])
	}
	return out
}

// Names returns the registered extension names in registration order.
func (r *Registry[P]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
