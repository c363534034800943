package extension

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/rs/zerolog/log"
)

// Container holds the extensions of one element, indexed both by concrete
// type and by name. Attachment and typed access go through the type index;
// XML dispatch, which only knows the element name, goes through the name
// index. The zero value is ready to use.
type Container struct {
	byType map[reflect.Type]Extension
	byName map[string]Extension
}

func (c *Container) init() {
	if c.byType == nil {
		c.byType = make(map[reflect.Type]Extension)
		c.byName = make(map[string]Extension)
	}
}

// Len returns the number of attached extensions.
func (c *Container) Len() int {
	return len(c.byType)
}

func (c *Container) remove(ext Extension) {
	delete(c.byType, reflect.TypeOf(ext))
	if c.byName[ext.Name()] == ext {
		delete(c.byName, ext.Name())
	}
	ext.bind(nil)
}

// Attach checks that ext accepts owner and registers it under both its type
// and its name. An extension of the same type already attached is replaced:
// the last one attached wins.
func Attach(owner Extendable, ext Extension) error {
	if ext == nil {
		return ErrNilExtension
	}
	if err := ext.AssertExtendable(owner); err != nil {
		log.Error().Err(err).Str("extension", ext.Name()).Msg("extension rejected by owner type check")
		return err
	}

	c := owner.ExtensionContainer()
	c.init()

	if old, exists := c.byType[reflect.TypeOf(ext)]; exists {
		log.Warn().Str("id", owner.ID()).Str("extension", ext.Name()).Msg("replacing existing extension")
		c.remove(old)
	}
	if old, exists := c.byName[ext.Name()]; exists {
		log.Warn().Str("id", owner.ID()).Str("extension", ext.Name()).Str("type", fmt.Sprintf("%T", old)).Msg("replacing extension registered under the same name")
		c.remove(old)
	}

	c.byType[reflect.TypeOf(ext)] = ext
	c.byName[ext.Name()] = ext
	ext.bind(owner)
	log.Debug().Str("id", owner.ID()).Str("extension", ext.Name()).Msg("extension attached")
	return nil
}

// Find returns the extension of type E attached to owner. E is normally a
// pointer to a concrete extension type; an interface type matches the first
// attached extension, in name order, implementing it.
func Find[E Extension](owner Extendable) (E, bool) {
	var zero E
	c := owner.ExtensionContainer()
	if c.byType == nil {
		return zero, false
	}

	target := reflect.TypeFor[E]()
	if ext, ok := c.byType[target]; ok {
		return ext.(E), true
	}
	if target.Kind() == reflect.Interface {
		for _, ext := range List(owner) {
			if e, ok := ext.(E); ok {
				return e, true
			}
		}
	}
	return zero, false
}

// Get is like Find but fails with ErrExtensionNotFound when nothing matches.
func Get[E Extension](owner Extendable) (E, error) {
	ext, ok := Find[E](owner)
	if !ok {
		return ext, fmt.Errorf("%w: %s on %s %s", ErrExtensionNotFound, reflect.TypeFor[E](), owner.TypeName(), owner.ID())
	}
	return ext, nil
}

// ByName returns the extension registered under name.
func ByName(owner Extendable, name string) (Extension, bool) {
	ext, ok := owner.ExtensionContainer().byName[name]
	return ext, ok
}

// FindByName returns the extension registered under name if it is of type E.
func FindByName[E Extension](owner Extendable, name string) (E, bool) {
	ext, ok := ByName(owner, name)
	if !ok {
		var zero E
		return zero, false
	}
	e, ok := ext.(E)
	return e, ok
}

// Remove detaches the extension of type E, if any, and reports whether one
// was attached.
func Remove[E Extension](owner Extendable) bool {
	ext, ok := Find[E](owner)
	if !ok {
		return false
	}
	owner.ExtensionContainer().remove(ext)
	log.Debug().Str("id", owner.ID()).Str("extension", ext.Name()).Msg("extension removed")
	return true
}

// List returns the attached extensions sorted by name.
func List(owner Extendable) []Extension {
	c := owner.ExtensionContainer()
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	slices.Sort(names)

	exts := make([]Extension, 0, len(names))
	for _, name := range names {
		exts = append(exts, c.byName[name])
	}
	return exts
}
