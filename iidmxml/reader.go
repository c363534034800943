package iidmxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/toolink/iidm"
)

// ErrMalformedDocument is returned when the document does not have the
// expected shape.
var ErrMalformedDocument = fmt.Errorf("%w: malformed IIDM document", iidm.ErrValidation)

// Reader is a pull reader tracking the element it is positioned on.
// Namespace prefixes are resolved: Current().Name.Space holds the URI.
type Reader struct {
	dec     *xml.Decoder
	current xml.StartElement
	depth   int
}

// NewReader returns a reader on r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: xml.NewDecoder(r)}
}

// ReadRoot positions the reader on the document element.
func (r *Reader) ReadRoot() (xml.StartElement, error) {
	for {
		tok, err := r.token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if _, ok := tok.(xml.StartElement); ok {
			return r.current, nil
		}
	}
}

// Current returns the element the reader is positioned on.
func (r *Reader) Current() xml.StartElement {
	return r.current
}

// LocalName returns the local name of the current element.
func (r *Reader) LocalName() string {
	return r.current.Name.Local
}

// NamespaceURI returns the namespace of the current element.
func (r *Reader) NamespaceURI() string {
	return r.current.Name.Space
}

// ReadUntilEndElement calls handler once per child of the current element,
// with the reader positioned on that child, and returns after the current
// element's end. A child the handler leaves unfinished is skipped.
func (r *Reader) ReadUntilEndElement(handler func() error) error {
	parent := r.depth
	for {
		tok, err := r.token()
		if err != nil {
			return err
		}
		switch tok.(type) {
		case xml.StartElement:
			if err := handler(); err != nil {
				return err
			}
			if err := r.skipTo(parent); err != nil {
				return err
			}
		case xml.EndElement:
			if r.depth < parent {
				return nil
			}
		}
	}
}

// ReadText returns the text content of the current element and consumes its
// end. Text of nested elements is ignored.
func (r *Reader) ReadText() (string, error) {
	depth := r.depth
	var sb strings.Builder
	for {
		tok, err := r.token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if r.depth == depth {
				sb.Write(t)
			}
		case xml.EndElement:
			if r.depth < depth {
				return strings.TrimSpace(sb.String()), nil
			}
		}
	}
}

// Skip consumes the rest of the current element.
func (r *Reader) Skip() error {
	return r.skipTo(r.depth - 1)
}

// Attribute returns an unprefixed attribute of the current element.
func (r *Reader) Attribute(name string) (string, bool) {
	for _, a := range r.current.Attr {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// RequiredAttribute is Attribute failing when name is absent.
func (r *Reader) RequiredAttribute(name string) (string, error) {
	v, ok := r.Attribute(name)
	if !ok {
		return "", fmt.Errorf("%w: element %s misses attribute %s", ErrMalformedDocument, r.current.Name.Local, name)
	}
	return v, nil
}

// FloatAttribute reads a required double.
func (r *Reader) FloatAttribute(name string) (float64, error) {
	raw, err := r.RequiredAttribute(name)
	if err != nil {
		return 0, err
	}
	return r.parseFloat(name, raw)
}

// OptionalFloatAttribute reads a double, NaN when absent.
func (r *Reader) OptionalFloatAttribute(name string) (float64, error) {
	raw, ok := r.Attribute(name)
	if !ok {
		return math.NaN(), nil
	}
	return r.parseFloat(name, raw)
}

// BoolAttribute reads a required boolean.
func (r *Reader) BoolAttribute(name string) (bool, error) {
	raw, err := r.RequiredAttribute(name)
	if err != nil {
		return false, err
	}
	return r.parseBool(name, raw)
}

// OptionalBoolAttribute reads a boolean, def when absent.
func (r *Reader) OptionalBoolAttribute(name string, def bool) (bool, error) {
	raw, ok := r.Attribute(name)
	if !ok {
		return def, nil
	}
	return r.parseBool(name, raw)
}

// OptionalIntAttribute reads an integer, def when absent.
func (r *Reader) OptionalIntAttribute(name string, def int) (int, error) {
	raw, ok := r.Attribute(name)
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, r.attributeError(name, raw, err)
	}
	return v, nil
}

func (r *Reader) parseFloat(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, r.attributeError(name, raw, err)
	}
	return v, nil
}

func (r *Reader) parseBool(name, raw string) (bool, error) {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, r.attributeError(name, raw, err)
	}
	return v, nil
}

func (r *Reader) attributeError(name, raw string, err error) error {
	return fmt.Errorf("%w: attribute %s of %s has invalid value %q: %v", ErrMalformedDocument, name, r.current.Name.Local, raw, err)
}

func (r *Reader) token() (xml.Token, error) {
	tok, err := r.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: unexpected end of document", ErrMalformedDocument)
		}
		return nil, err
	}
	switch t := tok.(type) {
	case xml.StartElement:
		r.depth++
		r.current = t.Copy()
	case xml.EndElement:
		r.depth--
	}
	return tok, nil
}

func (r *Reader) skipTo(depth int) error {
	for r.depth > depth {
		if _, err := r.token(); err != nil {
			return err
		}
	}
	return nil
}
