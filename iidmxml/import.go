package iidmxml

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/toolink/iidm/anonymizer"
	"github.com/toolink/iidm/network"
)

// Importer reads IIDM XML documents into networks.
type Importer struct {
	catalog *Catalog
}

// NewImporter returns an importer resolving extension serializers in catalog.
func NewImporter(catalog *Catalog) *Importer {
	return &Importer{catalog: catalog}
}

// Import reads a whole document. Any error aborts the import; no partial
// network is returned.
func (i *Importer) Import(ctx context.Context, r io.Reader, opts ImportOptions) (*network.Network, error) {
	start := time.Now()
	xr := NewReader(r)
	root, err := xr.ReadRoot()
	if err != nil {
		return nil, err
	}
	if root.Name.Local != "network" {
		return nil, fmt.Errorf("%w: root element is %s, expected network", ErrMalformedDocument, root.Name.Local)
	}
	version, err := VersionFromNamespaceURI(root.Name.Space)
	if err != nil {
		return nil, err
	}

	var anon anonymizer.Anonymizer = anonymizer.FakeAnonymizer{}
	if opts.Anonymizer != nil {
		anon = opts.Anonymizer
	}
	rc := newReaderContext(ctx, xr, anon, version, opts)

	n, err := readNetworkHeader(rc)
	if err != nil {
		return nil, err
	}

	err = xr.ReadUntilEndElement(func() error {
		switch local := xr.LocalName(); local {
		case "property":
			name, err := xr.RequiredAttribute("name")
			if err != nil {
				return err
			}
			value, err := xr.RequiredAttribute("value")
			if err != nil {
				return err
			}
			n.Properties().Set(name, value)
			return nil
		case "substation":
			return readSubstation(n, rc)
		case "generator":
			return readGenerator(n, rc)
		case "battery":
			return readBattery(n, rc)
		case "load":
			return readLoad(n, rc)
		case "line":
			return readLine(n, rc)
		case "extension":
			return i.readExtensions(n, rc)
		default:
			return fmt.Errorf("%w: unexpected element %s", ErrMalformedDocument, local)
		}
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("network", n.ID()).
		Stringer("iidm_version", version).
		Int("identifiables", len(n.Identifiables())).
		Dur("elapsed", time.Since(start)).
		Msg("network imported")
	return n, nil
}

func readNetworkHeader(rc *ReaderContext) (*network.Network, error) {
	r := rc.Reader()
	raw, err := r.RequiredAttribute("id")
	if err != nil {
		return nil, err
	}
	id, err := rc.Deanonymize(raw)
	if err != nil {
		return nil, err
	}
	rawDate, err := r.RequiredAttribute("caseDate")
	if err != nil {
		return nil, err
	}
	caseDate, err := time.Parse(time.RFC3339Nano, rawDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid caseDate %q: %v", ErrMalformedDocument, rawDate, err)
	}
	forecastDistance, err := r.OptionalIntAttribute("forecastDistance", 0)
	if err != nil {
		return nil, err
	}
	sourceFormat, err := r.RequiredAttribute("sourceFormat")
	if err != nil {
		return nil, err
	}
	return network.New(id, sourceFormat,
		network.WithCaseDate(caseDate),
		network.WithForecastDistance(forecastDistance),
	), nil
}

func (i *Importer) readExtensions(n *network.Network, rc *ReaderContext) error {
	r := rc.Reader()
	raw, err := r.RequiredAttribute("id")
	if err != nil {
		return err
	}
	id, err := rc.Deanonymize(raw)
	if err != nil {
		return err
	}
	owner, err := n.Get(id)
	if err != nil {
		return err
	}

	return r.ReadUntilEndElement(func() error {
		name := r.LocalName()
		if !rc.Options().IncludesExtension(name) {
			log.Debug().Str("extension", name).Str("id", id).Msg("extension filtered out")
			return nil
		}
		s, ok := i.catalog.Find(name)
		if !ok {
			if rc.Options().FailIfExtensionNotFound {
				return fmt.Errorf("%w: %s on %s", ErrExtensionSerializerNotFound, name, id)
			}
			log.Warn().Str("extension", name).Str("id", id).Msg("no serializer for extension, skipping")
			return nil
		}

		version, err := s.VersionForNamespaceURI(r.NamespaceURI())
		if err != nil {
			return err
		}
		rc.extensionVersions[name] = version
		if err := s.CheckReadingCompatibility(rc); err != nil {
			return err
		}
		if _, err := s.Read(owner, rc); err != nil {
			return fmt.Errorf("reading extension %s of %s: %w", name, id, err)
		}
		return nil
	})
}
