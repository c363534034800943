package iidmxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/toolink/iidm"
)

// ErrWriterState is returned when an attribute is written with no element open
// to receive it.
var ErrWriterState = fmt.Errorf("%w: no start element pending", iidm.ErrInvalidState)

// Writer is a streaming XML writer. A start element stays pending until its
// first child, text or end, so attributes can be added after it is opened,
// typically by an extension serializer.
//
// Attribute writes do not return errors: a misuse is kept and reported by the
// next element, text or flush call.
type Writer struct {
	enc     *xml.Encoder
	pending *xml.StartElement
	open    []xml.Name
	err     error
}

// NewWriter returns a writer on w, indenting by two spaces when indent is set.
func NewWriter(w io.Writer, indent bool) *Writer {
	enc := xml.NewEncoder(w)
	if indent {
		enc.Indent("", "  ")
	}
	return &Writer{enc: enc}
}

// WriteStartDocument writes the XML declaration.
func (w *Writer) WriteStartDocument() error {
	return w.enc.EncodeToken(xml.ProcInst{Target: "xml", Inst: []byte(`version="1.0" encoding="UTF-8"`)})
}

// WriteStartElement opens prefix:local. An empty prefix writes local alone.
func (w *Writer) WriteStartElement(prefix, local string) error {
	if err := w.flushPending(); err != nil {
		return err
	}
	w.pending = &xml.StartElement{Name: qualified(prefix, local)}
	return nil
}

// WriteNamespace declares prefix on the pending element.
func (w *Writer) WriteNamespace(prefix, uri string) {
	w.attr("xmlns:"+prefix, uri)
}

// WriteAttribute adds an attribute to the pending element.
func (w *Writer) WriteAttribute(name, value string) {
	w.attr(name, value)
}

// WriteOptionalAttribute is WriteAttribute, skipped for an empty value.
func (w *Writer) WriteOptionalAttribute(name, value string) {
	if value != "" {
		w.attr(name, value)
	}
}

// WriteFloatAttribute writes v in its shortest exact form.
func (w *Writer) WriteFloatAttribute(name string, v float64) {
	w.attr(name, FormatFloat(v))
}

// WriteOptionalFloatAttribute is WriteFloatAttribute, skipped for NaN.
func (w *Writer) WriteOptionalFloatAttribute(name string, v float64) {
	if !math.IsNaN(v) {
		w.attr(name, FormatFloat(v))
	}
}

// WriteBoolAttribute writes "true" or "false".
func (w *Writer) WriteBoolAttribute(name string, v bool) {
	w.attr(name, strconv.FormatBool(v))
}

// WriteIntAttribute writes a decimal integer.
func (w *Writer) WriteIntAttribute(name string, v int) {
	w.attr(name, strconv.Itoa(v))
}

// WriteOptionalIntAttribute is WriteIntAttribute, skipped when v equals absent.
func (w *Writer) WriteOptionalIntAttribute(name string, v, absent int) {
	if v != absent {
		w.attr(name, strconv.Itoa(v))
	}
}

// WriteCharacters writes escaped text inside the current element.
func (w *Writer) WriteCharacters(text string) error {
	if err := w.flushPending(); err != nil {
		return err
	}
	return w.enc.EncodeToken(xml.CharData(text))
}

// WriteEndElement closes the innermost open element.
func (w *Writer) WriteEndElement() error {
	if err := w.flushPending(); err != nil {
		return err
	}
	if len(w.open) == 0 {
		return fmt.Errorf("%w: no element to close", iidm.ErrInvalidState)
	}
	name := w.open[len(w.open)-1]
	w.open = w.open[:len(w.open)-1]
	return w.enc.EncodeToken(xml.EndElement{Name: name})
}

// Flush writes buffered output to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.flushPending(); err != nil {
		return err
	}
	return w.enc.Flush()
}

func (w *Writer) attr(name, value string) {
	if w.pending == nil {
		if w.err == nil {
			w.err = fmt.Errorf("%w: attribute %s", ErrWriterState, name)
		}
		return
	}
	w.pending.Attr = append(w.pending.Attr, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

func (w *Writer) flushPending() error {
	if w.err != nil {
		return w.err
	}
	if w.pending == nil {
		return nil
	}
	start := *w.pending
	w.pending = nil
	w.open = append(w.open, start.Name)
	return w.enc.EncodeToken(start)
}

// qualified keeps the prefix in the local part, so the encoder writes the
// name as is instead of generating its own namespace declarations.
func qualified(prefix, local string) xml.Name {
	if prefix == "" {
		return xml.Name{Local: local}
	}
	return xml.Name{Local: prefix + ":" + local}
}

// FormatFloat formats v in the shortest form that parses back to v.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
