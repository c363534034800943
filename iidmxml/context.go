package iidmxml

import (
	"context"

	"github.com/toolink/iidm/anonymizer"
	"github.com/toolink/iidm/network"
)

// WriterContext carries the per-document state shared by every serializer
// during an export.
type WriterContext struct {
	ctx               context.Context
	writer            *Writer
	anonymizer        anonymizer.Anonymizer
	version           Version
	options           ExportOptions
	extensionVersions map[string]string
	exported          map[string]struct{}
}

func newWriterContext(ctx context.Context, w *Writer, anon anonymizer.Anonymizer, version Version, opts ExportOptions) *WriterContext {
	return &WriterContext{
		ctx:               ctx,
		writer:            w,
		anonymizer:        anon,
		version:           version,
		options:           opts,
		extensionVersions: make(map[string]string),
		exported:          make(map[string]struct{}),
	}
}

// Context returns the context of the export.
func (c *WriterContext) Context() context.Context { return c.ctx }

// Writer returns the XML writer.
func (c *WriterContext) Writer() *Writer { return c.writer }

// Anonymizer returns the anonymizer of the export.
func (c *WriterContext) Anonymizer() anonymizer.Anonymizer { return c.anonymizer }

// Version returns the core version being written.
func (c *WriterContext) Version() Version { return c.version }

// Options returns the export options.
func (c *WriterContext) Options() ExportOptions { return c.options }

// Anonymize is a shortcut for Anonymizer().Anonymize with the export context.
func (c *WriterContext) Anonymize(s string) (string, error) {
	return c.anonymizer.Anonymize(c.ctx, s)
}

// AddExportedEquipment records that i has been written.
func (c *WriterContext) AddExportedEquipment(i network.Identifiable) {
	c.exported[i.ID()] = struct{}{}
}

// IsExportedEquipment reports whether the identifiable id has been written.
func (c *WriterContext) IsExportedEquipment(id string) bool {
	_, ok := c.exported[id]
	return ok
}

// ExtensionVersion returns the version extension name is written with:
// the pinned one from the options, or the newest one allowed with the core
// version. It is only known for extensions present in the document.
func (c *WriterContext) ExtensionVersion(name string) (string, bool) {
	v, ok := c.extensionVersions[name]
	return v, ok
}

// ReaderContext carries the per-document state shared by every serializer
// during an import.
type ReaderContext struct {
	ctx               context.Context
	reader            *Reader
	anonymizer        anonymizer.Anonymizer
	version           Version
	options           ImportOptions
	extensionVersions map[string]string
}

func newReaderContext(ctx context.Context, r *Reader, anon anonymizer.Anonymizer, version Version, opts ImportOptions) *ReaderContext {
	return &ReaderContext{
		ctx:               ctx,
		reader:            r,
		anonymizer:        anon,
		version:           version,
		options:           opts,
		extensionVersions: make(map[string]string),
	}
}

// Context returns the context of the import.
func (c *ReaderContext) Context() context.Context { return c.ctx }

// Reader returns the XML reader.
func (c *ReaderContext) Reader() *Reader { return c.reader }

// Anonymizer returns the anonymizer restoring identifiers.
func (c *ReaderContext) Anonymizer() anonymizer.Anonymizer { return c.anonymizer }

// Version returns the core version of the document.
func (c *ReaderContext) Version() Version { return c.version }

// Options returns the import options.
func (c *ReaderContext) Options() ImportOptions { return c.options }

// Deanonymize is a shortcut for Anonymizer().Deanonymize with the import context.
func (c *ReaderContext) Deanonymize(s string) (string, error) {
	return c.anonymizer.Deanonymize(c.ctx, s)
}

// ExtensionVersion returns the version extension name was written with, as
// given by the namespace of its elements.
func (c *ReaderContext) ExtensionVersion(name string) (string, bool) {
	v, ok := c.extensionVersions[name]
	return v, ok
}
