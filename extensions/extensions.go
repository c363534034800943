// Package extensions holds the concrete network extensions and their XML
// serializers.
package extensions

import (
	"fmt"

	"github.com/toolink/iidm"
	"github.com/toolink/iidm/extension"
	"github.com/toolink/iidm/iidmxml"
)

// ValidationError reports an invalid extension field. Its message is exactly
// the one given; errors.Is matches iidm.ErrValidation.
type ValidationError struct {
	msg string
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// Error implements error.
func (e *ValidationError) Error() string { return e.msg }

// Unwrap returns iidm.ErrValidation.
func (e *ValidationError) Unwrap() error { return iidm.ErrValidation }

// Serializers returns a fresh serializer for every extension of the package.
func Serializers() []iidmxml.ExtensionSerializer {
	return []iidmxml.ExtensionSerializer{
		NewActivePowerControlSerializer(),
		NewBranchStatusSerializer(),
		NewEntsoeAreaSerializer(),
		NewGeneratorEntsoeCategorySerializer(),
		NewGeneratorStartupSerializer(),
		NewLoadDetailSerializer(),
	}
}

// Register adds the serializers of the package to catalog.
func Register(catalog *iidmxml.Catalog) error {
	for _, s := range Serializers() {
		if err := catalog.Register(s); err != nil {
			return err
		}
	}
	return nil
}

func cast[E extension.Extension](ext extension.Extension) (E, error) {
	e, ok := ext.(E)
	if !ok {
		return e, fmt.Errorf("%w: cannot write %T as %T", iidm.ErrInvalidState, ext, e)
	}
	return e, nil
}

// versioned is implemented by both the reader and the writer context.
type versioned interface {
	ExtensionVersion(name string) (string, bool)
}

func versionOf(ctx versioned, name string) string {
	v, _ := ctx.ExtensionVersion(name)
	return v
}
