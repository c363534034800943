package iidmxml

import (
	"fmt"
	"maps"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/toolink/iidm"
	"github.com/toolink/iidm/extension"
	"github.com/toolink/iidm/provider"
)

// Category is the provider category of network extension serializers.
const Category = "network"

// Predefined errors for extension serialization.
var (
	ErrExtensionVersionNotSupported = fmt.Errorf("%w: extension version not supported", iidm.ErrVersionIncompatible)
	ErrIncompatibleVersions         = fmt.Errorf("%w: extension version not allowed with core version", iidm.ErrVersionIncompatible)
	ErrUnknownNamespace             = fmt.Errorf("%w: unknown extension namespace", iidm.ErrVersionIncompatible)
)

// ExtensionSerializer converts one extension kind to and from a single XML
// element named after the extension.
type ExtensionSerializer interface {
	provider.Provider

	// NamespacePrefix returns the prefix of the extension's elements.
	NamespacePrefix() string

	// Versions returns the known extension versions, oldest first.
	Versions() []string
	// NamespaceURI returns the namespace of an extension version.
	NamespaceURI(version string) (string, error)
	// VersionForNamespaceURI returns the extension version a namespace denotes.
	VersionForNamespaceURI(uri string) (string, error)
	// DefaultVersion returns the newest extension version allowed with core.
	DefaultVersion(core Version) (string, error)

	CheckExtensionVersionSupported(version string) error
	CheckWritingCompatibility(version string, core Version) error
	CheckReadingCompatibility(ctx *ReaderContext) error

	// Read builds the extension from the element the reader is positioned on
	// and attaches it to owner.
	Read(owner extension.Extendable, ctx *ReaderContext) (extension.Extension, error)
	// Write adds the extension's attributes and content to the element the
	// writer has open.
	Write(ext extension.Extension, ctx *WriterContext) error
}

// Catalog maps extension names to serializers.
type Catalog = provider.Registry[ExtensionSerializer]

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return provider.New[ExtensionSerializer](Category)
}

// VersionableSerializer implements the version bookkeeping of an
// ExtensionSerializer. Concrete serializers embed it and add Read and Write.
type VersionableSerializer struct {
	name       string
	prefix     string
	compat     *CompatibilityTable
	namespaces map[string]string // extension version -> namespace URI
}

// NewVersionableSerializer describes extension name, written under prefix,
// whose versions map to the given namespaces.
func NewVersionableSerializer(name, prefix string, compat *CompatibilityTable, namespaces map[string]string) VersionableSerializer {
	return VersionableSerializer{
		name:       name,
		prefix:     prefix,
		compat:     compat,
		namespaces: namespaces,
	}
}

// ExtensionName implements provider.Provider.
func (s *VersionableSerializer) ExtensionName() string { return s.name }

// CategoryName implements provider.Provider.
func (s *VersionableSerializer) CategoryName() string { return Category }

// NamespacePrefix implements ExtensionSerializer.
func (s *VersionableSerializer) NamespacePrefix() string { return s.prefix }

// Versions implements ExtensionSerializer.
func (s *VersionableSerializer) Versions() []string {
	versions := slices.Collect(maps.Keys(s.namespaces))
	slices.SortFunc(versions, compareExtensionVersions)
	return versions
}

// NamespaceURI implements ExtensionSerializer.
func (s *VersionableSerializer) NamespaceURI(version string) (string, error) {
	uri, ok := s.namespaces[version]
	if !ok {
		return "", s.unsupported(version)
	}
	return uri, nil
}

// VersionForNamespaceURI implements ExtensionSerializer.
func (s *VersionableSerializer) VersionForNamespaceURI(uri string) (string, error) {
	for version, ns := range s.namespaces {
		if ns == uri {
			return version, nil
		}
	}
	return "", fmt.Errorf("%w: %q for extension %s", ErrUnknownNamespace, uri, s.name)
}

// DefaultVersion implements ExtensionSerializer.
func (s *VersionableSerializer) DefaultVersion(core Version) (string, error) {
	version, ok := s.compat.Latest(core)
	if !ok {
		return "", fmt.Errorf("%w: no version of extension %s is allowed with IIDM %s", ErrIncompatibleVersions, s.name, core)
	}
	return version, nil
}

// CheckExtensionVersionSupported fails for a version with no namespace.
func (s *VersionableSerializer) CheckExtensionVersionSupported(version string) error {
	if _, ok := s.namespaces[version]; !ok {
		return s.unsupported(version)
	}
	return nil
}

// CheckWritingCompatibility fails when version may not be written in a
// document of core version.
func (s *VersionableSerializer) CheckWritingCompatibility(version string, core Version) error {
	if err := s.CheckExtensionVersionSupported(version); err != nil {
		return err
	}
	if !s.compat.Allows(core, version) {
		log.Error().Str("extension", s.name).Str("version", version).Stringer("iidm_version", core).Msg("incompatible versions requested for writing")
		return s.incompatible(version, core)
	}
	return nil
}

// CheckReadingCompatibility fails when the document's core version does not
// allow the extension version it was written with.
func (s *VersionableSerializer) CheckReadingCompatibility(ctx *ReaderContext) error {
	version, ok := ctx.ExtensionVersion(s.name)
	if !ok {
		return fmt.Errorf("%w: version of extension %s unknown in this document", ErrUnknownNamespace, s.name)
	}
	if !s.compat.Allows(ctx.Version(), version) {
		log.Error().Str("extension", s.name).Str("version", version).Stringer("iidm_version", ctx.Version()).Msg("incompatible versions in document")
		return s.incompatible(version, ctx.Version())
	}
	return nil
}

func (s *VersionableSerializer) unsupported(version string) error {
	return fmt.Errorf("%w: %s %q, known versions %v", ErrExtensionVersionNotSupported, s.name, version, s.Versions())
}

func (s *VersionableSerializer) incompatible(version string, core Version) error {
	return fmt.Errorf("%w: %s version %s with IIDM version %s, allowed %v",
		ErrIncompatibleVersions, s.name, version, core, s.compat.Allowed(core))
}
