// Package extension attaches typed side-tables of attributes to network
// elements and looks them up by type or by name.
package extension

import (
	"fmt"
	"strings"

	"github.com/toolink/iidm"
)

// Predefined errors for extension management.
var (
	ErrExtensionNotFound = fmt.Errorf("extension %w", iidm.ErrNotFound)
	ErrNilExtension      = fmt.Errorf("%w: nil extension", iidm.ErrInvalidState)
)

// Extendable is implemented by every element able to own extensions.
type Extendable interface {
	// ID returns the element identifier, used in error messages.
	ID() string
	// TypeName returns the element kind, e.g. "Generator".
	TypeName() string
	// ExtensionContainer returns the storage holding the element's extensions.
	ExtensionContainer() *Container
}

// Extension is a typed bundle of attributes describing one capability of
// exactly one Extendable. Implementations embed Base.
type Extension interface {
	// Name returns the stable name of the extension kind. It is also the XML
	// element name.
	Name() string

	// Extendable returns the owning element, or nil when detached.
	Extendable() Extendable

	// AssertExtendable rejects owners of a kind the extension does not describe.
	AssertExtendable(owner Extendable) error

	bind(owner Extendable)
}

// Base carries the back-reference to the owning element. The extension does
// not own the element; the element owns its extensions.
type Base struct {
	owner Extendable
}

// Extendable implements Extension.
func (b *Base) Extendable() Extendable {
	return b.owner
}

func (b *Base) bind(owner Extendable) {
	b.owner = owner
}

// OwnerTypeError builds the error returned by AssertExtendable
// implementations. It names the actual and the accepted owner kinds.
func OwnerTypeError(extensionName string, owner Extendable, accepted ...string) error {
	if owner == nil {
		return fmt.Errorf("%w: extension %s needs an owner of type %s, got none",
			iidm.ErrOwnerTypeMismatch, extensionName, strings.Join(accepted, " or "))
	}
	return fmt.Errorf("%w: unexpected owner type %s (%s) for extension %s, expected %s",
		iidm.ErrOwnerTypeMismatch, owner.TypeName(), owner.ID(), extensionName, strings.Join(accepted, " or "))
}
