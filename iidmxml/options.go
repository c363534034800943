package iidmxml

import (
	"slices"

	"github.com/toolink/iidm/anonymizer"
)

// ExportOptions control how a network is written.
type ExportOptions struct {
	// Version is the core version, "1.5" or "1_5". Empty means CurrentVersion.
	Version string `mapstructure:"version" yaml:"version"`
	// Indent pretty prints the document.
	Indent bool `mapstructure:"indent" yaml:"indent"`
	// Anonymized replaces identifiers with codes; the exporter returns the
	// anonymizer holding the mapping.
	Anonymized bool `mapstructure:"anonymized" yaml:"anonymized"`
	// Extensions restricts the written extensions to these names. Empty means all.
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
	// SkipExtensions writes no extension at all.
	SkipExtensions bool `mapstructure:"skip_extensions" yaml:"skip_extensions"`
	// ExtensionVersions pins extension versions by name. Others get the
	// newest version allowed with the core version.
	ExtensionVersions map[string]string `mapstructure:"extension_versions" yaml:"extension_versions"`
	// FailIfExtensionNotFound turns an extension with no registered
	// serializer into an error instead of a skipped extension.
	FailIfExtensionNotFound bool `mapstructure:"fail_if_extension_not_found" yaml:"fail_if_extension_not_found"`

	// Anonymizer is used when Anonymized is set. Nil means a fresh
	// in-memory SimpleAnonymizer.
	Anonymizer anonymizer.Anonymizer `mapstructure:"-" yaml:"-"`
}

// DefaultExportOptions returns indented export at the current version.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Version: CurrentVersion.String(),
		Indent:  true,
	}
}

// Validate checks the core version.
func (o *ExportOptions) Validate() error {
	_, err := o.version()
	return err
}

func (o *ExportOptions) version() (Version, error) {
	if o.Version == "" {
		return CurrentVersion, nil
	}
	return ParseVersion(o.Version)
}

// IncludesExtension reports whether extension name is to be written.
func (o ExportOptions) IncludesExtension(name string) bool {
	if o.SkipExtensions {
		return false
	}
	return len(o.Extensions) == 0 || slices.Contains(o.Extensions, name)
}

// ImportOptions control how a document is read.
type ImportOptions struct {
	// Extensions restricts the read extensions to these names. Empty means all.
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
	// FailIfExtensionNotFound turns an extension element with no registered
	// serializer into an error instead of a skipped element.
	FailIfExtensionNotFound bool `mapstructure:"fail_if_extension_not_found" yaml:"fail_if_extension_not_found"`

	// Anonymizer restores identifiers of an anonymized document. Nil means
	// identifiers are kept as written.
	Anonymizer anonymizer.Anonymizer `mapstructure:"-" yaml:"-"`
}

// IncludesExtension reports whether extension name is to be read.
func (o ImportOptions) IncludesExtension(name string) bool {
	return len(o.Extensions) == 0 || slices.Contains(o.Extensions, name)
}
