package extensions

import (
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/toolink/iidm/extension"
	"github.com/toolink/iidm/iidmxml"
	"github.com/toolink/iidm/network"
)

// GeneratorEntsoeCategoryName is the name of the GeneratorEntsoeCategory extension.
const GeneratorEntsoeCategoryName = "generatorEntsoeCategory"

// ENTSO-E generator category codes range from 1 to 42.
const (
	MinGeneratorEntsoeCode = 1
	MaxGeneratorEntsoeCode = 42
)

// GeneratorEntsoeCategory holds the ENTSO-E category code of a generator.
type GeneratorEntsoeCategory struct {
	extension.Base
	code int
}

// Name implements extension.Extension.
func (*GeneratorEntsoeCategory) Name() string { return GeneratorEntsoeCategoryName }

// AssertExtendable implements extension.Extension.
func (*GeneratorEntsoeCategory) AssertExtendable(owner extension.Extendable) error {
	if _, ok := owner.(*network.Generator); ok {
		return nil
	}
	return extension.OwnerTypeError(GeneratorEntsoeCategoryName, owner, "Generator")
}

// Code returns the category code.
func (c *GeneratorEntsoeCategory) Code() int { return c.code }

// SetCode changes the category code.
func (c *GeneratorEntsoeCategory) SetCode(code int) error {
	if err := checkEntsoeCode(code); err != nil {
		return err
	}
	c.code = code
	return nil
}

func checkEntsoeCode(code int) error {
	if code < MinGeneratorEntsoeCode || code > MaxGeneratorEntsoeCode {
		return validationErrorf("Bad generator ENTSO-E code %d", code)
	}
	return nil
}

// GeneratorEntsoeCategoryAdder builds a GeneratorEntsoeCategory.
type GeneratorEntsoeCategoryAdder struct {
	extension.AdderBase
	code int
}

// WithCode sets the category code, in [MinGeneratorEntsoeCode, MaxGeneratorEntsoeCode].
func (a *GeneratorEntsoeCategoryAdder) WithCode(code int) *GeneratorEntsoeCategoryAdder {
	a.code = code
	return a
}

// Add validates the code and attaches the extension to the adder's owner.
func (a *GeneratorEntsoeCategoryAdder) Add() (*GeneratorEntsoeCategory, error) {
	if err := checkEntsoeCode(a.code); err != nil {
		return nil, err
	}
	c := &GeneratorEntsoeCategory{code: a.code}
	if err := extension.Attach(a.Owner(), c); err != nil {
		return nil, err
	}
	log.Debug().Str("id", a.Owner().ID()).Int("code", c.code).Msg("generator ENTSO-E category added")
	return c, nil
}

// GeneratorEntsoeCategorySerializer writes the code as element text.
type GeneratorEntsoeCategorySerializer struct {
	iidmxml.VersionableSerializer
}

// NewGeneratorEntsoeCategorySerializer returns the serializer of GeneratorEntsoeCategory.
func NewGeneratorEntsoeCategorySerializer() *GeneratorEntsoeCategorySerializer {
	return &GeneratorEntsoeCategorySerializer{
		VersionableSerializer: iidmxml.NewVersionableSerializer(GeneratorEntsoeCategoryName, "gec",
			iidmxml.NewCompatibilityTable().PutRange(iidmxml.V1_0, iidmxml.CurrentVersion, "1.0"),
			map[string]string{
				"1.0": "http://www.itesla_project.eu/schema/iidm/ext/generator_entsoe_category/1_0",
			}),
	}
}

// Write implements iidmxml.ExtensionSerializer.
func (s *GeneratorEntsoeCategorySerializer) Write(ext extension.Extension, ctx *iidmxml.WriterContext) error {
	c, err := cast[*GeneratorEntsoeCategory](ext)
	if err != nil {
		return err
	}
	return ctx.Writer().WriteCharacters(strconv.Itoa(c.code))
}

// Read implements iidmxml.ExtensionSerializer.
func (s *GeneratorEntsoeCategorySerializer) Read(owner extension.Extendable, ctx *iidmxml.ReaderContext) (extension.Extension, error) {
	text, err := ctx.Reader().ReadText()
	if err != nil {
		return nil, err
	}
	code, err := strconv.Atoi(text)
	if err != nil {
		return nil, validationErrorf("Bad generator ENTSO-E code %q", text)
	}
	c, err := extension.NewExtension[GeneratorEntsoeCategoryAdder](owner).WithCode(code).Add()
	if err != nil {
		return nil, err
	}
	return c, nil
}
