package extensions

import (
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/toolink/iidm/extension"
	"github.com/toolink/iidm/iidmxml"
	"github.com/toolink/iidm/network"
)

// EntsoeAreaName is the name of the EntsoeArea extension.
const EntsoeAreaName = "entsoeArea"

// EntsoeGeographicalCode identifies an ENTSO-E area, a country or a German
// control area.
type EntsoeGeographicalCode string

var entsoeGeographicalCodes = []EntsoeGeographicalCode{
	"AL", "AT", "BA", "BE", "BG", "CH", "CZ", "DE",
	"D1", "D2", "D4", "D7", "D8",
	"DK", "ES", "FR", "GB", "GR", "HR", "HU", "IT", "KS", "LU",
	"ME", "MK", "NL", "NO", "PL", "PT", "RO", "RS", "SE", "SI",
	"SK", "TR", "UA", "UX",
}

// ParseEntsoeGeographicalCode checks that s is a known code.
func ParseEntsoeGeographicalCode(s string) (EntsoeGeographicalCode, error) {
	code := EntsoeGeographicalCode(s)
	if !slices.Contains(entsoeGeographicalCodes, code) {
		return "", validationErrorf("Unknown ENTSO-E geographical code %q", s)
	}
	return code, nil
}

// EntsoeArea holds the ENTSO-E area of a substation.
type EntsoeArea struct {
	extension.Base
	code EntsoeGeographicalCode
}

// Name implements extension.Extension.
func (*EntsoeArea) Name() string { return EntsoeAreaName }

// AssertExtendable implements extension.Extension.
func (*EntsoeArea) AssertExtendable(owner extension.Extendable) error {
	if _, ok := owner.(*network.Substation); ok {
		return nil
	}
	return extension.OwnerTypeError(EntsoeAreaName, owner, "Substation")
}

// Code returns the geographical code.
func (e *EntsoeArea) Code() EntsoeGeographicalCode { return e.code }

// SetCode changes the geographical code.
func (e *EntsoeArea) SetCode(code EntsoeGeographicalCode) error {
	if _, err := ParseEntsoeGeographicalCode(string(code)); err != nil {
		return err
	}
	e.code = code
	return nil
}

// EntsoeAreaAdder builds an EntsoeArea.
type EntsoeAreaAdder struct {
	extension.AdderBase
	code EntsoeGeographicalCode
}

// WithCode sets the geographical code. Required.
func (a *EntsoeAreaAdder) WithCode(code EntsoeGeographicalCode) *EntsoeAreaAdder {
	a.code = code
	return a
}

// Add checks that a known code is set and attaches the extension to the
// adder's owner. Adding twice replaces the first area.
func (a *EntsoeAreaAdder) Add() (*EntsoeArea, error) {
	if a.code == "" {
		return nil, validationErrorf("ENTSO-E geographical code is not set")
	}
	if _, err := ParseEntsoeGeographicalCode(string(a.code)); err != nil {
		return nil, err
	}
	e := &EntsoeArea{code: a.code}
	if err := extension.Attach(a.Owner(), e); err != nil {
		return nil, err
	}
	log.Debug().Str("id", a.Owner().ID()).Str("code", string(e.code)).Msg("ENTSO-E area added")
	return e, nil
}

// EntsoeAreaSerializer writes the code as element text.
type EntsoeAreaSerializer struct {
	iidmxml.VersionableSerializer
}

// NewEntsoeAreaSerializer returns the serializer of EntsoeArea.
func NewEntsoeAreaSerializer() *EntsoeAreaSerializer {
	return &EntsoeAreaSerializer{
		VersionableSerializer: iidmxml.NewVersionableSerializer(EntsoeAreaName, "ea",
			iidmxml.NewCompatibilityTable().PutRange(iidmxml.V1_0, iidmxml.CurrentVersion, "1.0"),
			map[string]string{
				"1.0": "http://www.itesla_project.eu/schema/iidm/ext/entsoe_area/1_0",
			}),
	}
}

// Write implements iidmxml.ExtensionSerializer.
func (s *EntsoeAreaSerializer) Write(ext extension.Extension, ctx *iidmxml.WriterContext) error {
	e, err := cast[*EntsoeArea](ext)
	if err != nil {
		return err
	}
	return ctx.Writer().WriteCharacters(string(e.code))
}

// Read implements iidmxml.ExtensionSerializer.
func (s *EntsoeAreaSerializer) Read(owner extension.Extendable, ctx *iidmxml.ReaderContext) (extension.Extension, error) {
	text, err := ctx.Reader().ReadText()
	if err != nil {
		return nil, err
	}
	e, err := extension.NewExtension[EntsoeAreaAdder](owner).WithCode(EntsoeGeographicalCode(text)).Add()
	if err != nil {
		return nil, err
	}
	return e, nil
}
