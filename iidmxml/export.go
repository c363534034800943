package iidmxml

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/toolink/iidm"
	"github.com/toolink/iidm/anonymizer"
	"github.com/toolink/iidm/extension"
	"github.com/toolink/iidm/network"
)

// ErrExtensionSerializerNotFound is returned when an extension has no
// registered serializer and the options ask to fail on it.
var ErrExtensionSerializerNotFound = fmt.Errorf("extension serializer %w", iidm.ErrNotFound)

// Exporter writes networks as IIDM XML documents.
type Exporter struct {
	catalog *Catalog
}

// NewExporter returns an exporter resolving extension serializers in catalog.
func NewExporter(catalog *Catalog) *Exporter {
	return &Exporter{catalog: catalog}
}

// exportPlan is everything decided before the first byte is written.
type exportPlan struct {
	version     Version
	serializers []ExtensionSerializer // sorted by name
	versions    map[string]string
}

// Export writes n to w and returns the anonymizer used, which holds the
// identifier mapping when opts.Anonymized is set.
//
// Versions and extensions are checked before anything is written, and the
// document is only written to w once it is complete, so a failed export
// leaves w untouched.
func (e *Exporter) Export(ctx context.Context, n *network.Network, w io.Writer, opts ExportOptions) (anonymizer.Anonymizer, error) {
	start := time.Now()

	plan, err := e.plan(n, &opts)
	if err != nil {
		return nil, err
	}

	var anon anonymizer.Anonymizer = anonymizer.FakeAnonymizer{}
	if opts.Anonymized {
		anon = opts.Anonymizer
		if anon == nil {
			anon = anonymizer.NewSimpleAnonymizer(nil)
		}
	}

	var buf bytes.Buffer
	xw := NewWriter(&buf, opts.Indent)
	wc := newWriterContext(ctx, xw, anon, plan.version, opts)
	for name, version := range plan.versions {
		wc.extensionVersions[name] = version
	}

	if err := e.writeNetwork(n, wc, plan); err != nil {
		return nil, err
	}
	if err := xw.Flush(); err != nil {
		return nil, err
	}
	if opts.Indent {
		buf.WriteByte('\n')
	}
	if _, err := buf.WriteTo(w); err != nil {
		return nil, fmt.Errorf("writing document: %w", err)
	}

	log.Info().
		Str("network", n.ID()).
		Stringer("iidm_version", plan.version).
		Int("extensions", len(plan.serializers)).
		Dur("elapsed", time.Since(start)).
		Msg("network exported")
	return anon, nil
}

func (e *Exporter) plan(n *network.Network, opts *ExportOptions) (*exportPlan, error) {
	version, err := opts.version()
	if err != nil {
		return nil, err
	}
	if !version.AtLeast(V1_1) && len(n.Batteries()) > 0 {
		return nil, fmt.Errorf("%w: batteries are not supported in IIDM version %s, it should be >= %s",
			iidm.ErrVersionIncompatible, version, V1_1)
	}

	// pinned versions are checked even for extensions the network lacks
	for name, requested := range opts.ExtensionVersions {
		s, ok := e.catalog.Find(name)
		if !ok {
			if opts.FailIfExtensionNotFound {
				return nil, fmt.Errorf("%w: %s", ErrExtensionSerializerNotFound, name)
			}
			log.Warn().Str("extension", name).Msg("version requested for an extension with no serializer")
			continue
		}
		if err := s.CheckWritingCompatibility(requested, version); err != nil {
			return nil, err
		}
	}

	used := make(map[string]ExtensionSerializer)
	for _, i := range n.Identifiables() {
		for _, ext := range extension.List(i) {
			name := ext.Name()
			if !opts.IncludesExtension(name) {
				continue
			}
			if _, seen := used[name]; seen {
				continue
			}
			s, ok := e.catalog.Find(name)
			if !ok {
				if opts.FailIfExtensionNotFound {
					return nil, fmt.Errorf("%w: %s on %s", ErrExtensionSerializerNotFound, name, i.ID())
				}
				log.Warn().Str("extension", name).Str("id", i.ID()).Msg("no serializer for extension, skipping")
				continue
			}
			used[name] = s
		}
	}

	plan := &exportPlan{version: version, versions: make(map[string]string, len(used))}
	for name, s := range used {
		v, pinned := opts.ExtensionVersions[name]
		if !pinned {
			if v, err = s.DefaultVersion(version); err != nil {
				return nil, err
			}
		}
		plan.versions[name] = v
		plan.serializers = append(plan.serializers, s)
	}
	slices.SortFunc(plan.serializers, func(a, b ExtensionSerializer) int {
		return cmp.Compare(a.ExtensionName(), b.ExtensionName())
	})
	return plan, nil
}

func (e *Exporter) writeNetwork(n *network.Network, wc *WriterContext, plan *exportPlan) error {
	w := wc.Writer()
	if err := w.WriteStartDocument(); err != nil {
		return err
	}
	if err := w.WriteStartElement(NamespacePrefix, "network"); err != nil {
		return err
	}
	w.WriteNamespace(NamespacePrefix, plan.version.NamespaceURI())
	for _, s := range plan.serializers {
		uri, err := s.NamespaceURI(plan.versions[s.ExtensionName()])
		if err != nil {
			return err
		}
		w.WriteNamespace(s.NamespacePrefix(), uri)
	}
	id, err := wc.Anonymize(n.ID())
	if err != nil {
		return err
	}
	w.WriteAttribute("id", id)
	w.WriteAttribute("caseDate", n.CaseDate().Format(time.RFC3339Nano))
	w.WriteIntAttribute("forecastDistance", n.ForecastDistance())
	w.WriteAttribute("sourceFormat", n.SourceFormat())
	if err := writeProperties(n, w); err != nil {
		return err
	}

	for _, s := range n.Substations() {
		if err := writeSubstation(s, wc); err != nil {
			return err
		}
	}
	for _, g := range n.Generators() {
		if err := writeGenerator(g, wc); err != nil {
			return err
		}
	}
	for _, b := range n.Batteries() {
		if err := writeBattery(b, wc); err != nil {
			return err
		}
	}
	for _, l := range n.Loads() {
		if err := writeLoad(l, wc); err != nil {
			return err
		}
	}
	for _, l := range n.Lines() {
		if err := writeLine(l, wc); err != nil {
			return err
		}
	}

	if len(plan.serializers) > 0 {
		wc.AddExportedEquipment(n)
		for _, i := range documentOrder(n) {
			if !wc.IsExportedEquipment(i.ID()) {
				continue
			}
			if err := e.writeExtensions(i, wc); err != nil {
				return err
			}
		}
	}
	return w.WriteEndElement()
}

// documentOrder lists the identifiables in the order their elements are
// written, which is also the order an import creates them in.
func documentOrder(n *network.Network) []network.Identifiable {
	order := []network.Identifiable{n}
	order = appendIdentifiables(order, n.Substations())
	order = appendIdentifiables(order, n.Generators())
	order = appendIdentifiables(order, n.Batteries())
	order = appendIdentifiables(order, n.Loads())
	return appendIdentifiables(order, n.Lines())
}

func appendIdentifiables[T network.Identifiable](dst []network.Identifiable, items []T) []network.Identifiable {
	for _, i := range items {
		dst = append(dst, i)
	}
	return dst
}

func (e *Exporter) writeExtensions(i network.Identifiable, wc *WriterContext) error {
	var exts []extension.Extension
	for _, ext := range extension.List(i) {
		if _, ok := wc.ExtensionVersion(ext.Name()); ok {
			exts = append(exts, ext)
		}
	}
	if len(exts) == 0 {
		return nil
	}

	w := wc.Writer()
	id, err := wc.Anonymize(i.ID())
	if err != nil {
		return err
	}
	if err := w.WriteStartElement(NamespacePrefix, "extension"); err != nil {
		return err
	}
	w.WriteAttribute("id", id)
	for _, ext := range exts {
		s, err := e.catalog.Get(ext.Name())
		if err != nil {
			return err
		}
		if err := w.WriteStartElement(s.NamespacePrefix(), s.ExtensionName()); err != nil {
			return err
		}
		if err := s.Write(ext, wc); err != nil {
			return fmt.Errorf("writing extension %s of %s: %w", ext.Name(), i.ID(), err)
		}
		if err := w.WriteEndElement(); err != nil {
			return err
		}
	}
	return w.WriteEndElement()
}
