// Package global holds the process-wide default extension serializer catalog.
// Applications that need isolation build their own iidmxml.Catalog and pass
// it to iidmxml.NewExporter and iidmxml.NewImporter instead.
package global

import (
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/toolink/iidm/extensions"
	"github.com/toolink/iidm/iidmxml"
)

func defaultExtensionSerializers() *atomic.Value {
	catalog := iidmxml.NewCatalog()
	if err := extensions.Register(catalog); err != nil {
		log.Panic().Err(err).Msg("failed to register built-in extension serializers")
	}
	v := &atomic.Value{}
	v.Store(catalog)
	return v
}

var globalExtensionSerializers = defaultExtensionSerializers()

// SetExtensionSerializers replaces the global serializer catalog.
func SetExtensionSerializers(c *iidmxml.Catalog) {
	globalExtensionSerializers.Store(c)
}

// ExtensionSerializers returns the global serializer catalog, which holds
// every serializer of package extensions unless replaced.
func ExtensionSerializers() *iidmxml.Catalog {
	return globalExtensionSerializers.Load().(*iidmxml.Catalog)
}

// NewExporter returns an exporter on the global catalog.
func NewExporter() *iidmxml.Exporter {
	return iidmxml.NewExporter(ExtensionSerializers())
}

// NewImporter returns an importer on the global catalog.
func NewImporter() *iidmxml.Importer {
	return iidmxml.NewImporter(ExtensionSerializers())
}
