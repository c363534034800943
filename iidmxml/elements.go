package iidmxml

import (
	"fmt"

	"github.com/toolink/iidm/network"
)

func writeProperties(i network.Identifiable, w *Writer) error {
	p := i.Properties()
	for _, name := range p.Names() {
		value, _ := p.Get(name)
		if err := w.WriteStartElement(NamespacePrefix, "property"); err != nil {
			return err
		}
		w.WriteAttribute("name", name)
		w.WriteAttribute("value", value)
		if err := w.WriteEndElement(); err != nil {
			return err
		}
	}
	return nil
}

// writeIdentifiable opens the element of i and writes its id and name.
func writeIdentifiable(i network.Identifiable, local string, wc *WriterContext) error {
	id, err := wc.Anonymize(i.ID())
	if err != nil {
		return err
	}
	name, err := wc.Anonymize(i.Name())
	if err != nil {
		return err
	}
	w := wc.Writer()
	if err := w.WriteStartElement(NamespacePrefix, local); err != nil {
		return err
	}
	w.WriteAttribute("id", id)
	w.WriteOptionalAttribute("name", name)
	return nil
}

// endIdentifiable writes the properties of i and closes its element.
func endIdentifiable(i network.Identifiable, wc *WriterContext) error {
	if err := writeProperties(i, wc.Writer()); err != nil {
		return err
	}
	wc.AddExportedEquipment(i)
	return wc.Writer().WriteEndElement()
}

func writeSubstation(s *network.Substation, wc *WriterContext) error {
	if err := writeIdentifiable(s, "substation", wc); err != nil {
		return err
	}
	w := wc.Writer()
	w.WriteOptionalAttribute("country", s.Country())
	w.WriteOptionalAttribute("tso", s.TSO())
	return endIdentifiable(s, wc)
}

func writeGenerator(g *network.Generator, wc *WriterContext) error {
	if err := writeIdentifiable(g, "generator", wc); err != nil {
		return err
	}
	w := wc.Writer()
	w.WriteFloatAttribute("minP", g.MinP())
	w.WriteFloatAttribute("maxP", g.MaxP())
	w.WriteBoolAttribute("voltageRegulatorOn", g.VoltageRegulatorOn())
	w.WriteFloatAttribute("targetP", g.TargetP())
	w.WriteOptionalFloatAttribute("targetV", g.TargetV())
	w.WriteOptionalFloatAttribute("targetQ", g.TargetQ())
	return endIdentifiable(g, wc)
}

func writeBattery(b *network.Battery, wc *WriterContext) error {
	if err := writeIdentifiable(b, "battery", wc); err != nil {
		return err
	}
	w := wc.Writer()
	w.WriteFloatAttribute("p0", b.P0())
	w.WriteFloatAttribute("q0", b.Q0())
	w.WriteFloatAttribute("minP", b.MinP())
	w.WriteFloatAttribute("maxP", b.MaxP())
	return endIdentifiable(b, wc)
}

func writeLoad(l *network.Load, wc *WriterContext) error {
	if err := writeIdentifiable(l, "load", wc); err != nil {
		return err
	}
	w := wc.Writer()
	w.WriteAttribute("loadType", string(l.LoadType()))
	w.WriteFloatAttribute("p0", l.P0())
	w.WriteFloatAttribute("q0", l.Q0())
	return endIdentifiable(l, wc)
}

func writeLine(l *network.Line, wc *WriterContext) error {
	if err := writeIdentifiable(l, "line", wc); err != nil {
		return err
	}
	s1, err := wc.Anonymize(l.Substation1())
	if err != nil {
		return err
	}
	s2, err := wc.Anonymize(l.Substation2())
	if err != nil {
		return err
	}
	w := wc.Writer()
	w.WriteAttribute("substation1", s1)
	w.WriteAttribute("substation2", s2)
	w.WriteFloatAttribute("r", l.R())
	w.WriteFloatAttribute("x", l.X())
	return endIdentifiable(l, wc)
}

// readIdentity reads and restores the id and name of the current element.
func readIdentity(rc *ReaderContext) (id, name string, err error) {
	r := rc.Reader()
	raw, err := r.RequiredAttribute("id")
	if err != nil {
		return "", "", err
	}
	if id, err = rc.Deanonymize(raw); err != nil {
		return "", "", err
	}
	raw, _ = r.Attribute("name")
	if name, err = rc.Deanonymize(raw); err != nil {
		return "", "", err
	}
	return id, name, nil
}

// readProperties reads the property children of the current element.
func readProperties(i network.Identifiable, rc *ReaderContext) error {
	r := rc.Reader()
	return r.ReadUntilEndElement(func() error {
		if r.LocalName() != "property" {
			return fmt.Errorf("%w: unexpected element %s in %s %s", ErrMalformedDocument, r.LocalName(), i.TypeName(), i.ID())
		}
		name, err := r.RequiredAttribute("name")
		if err != nil {
			return err
		}
		value, err := r.RequiredAttribute("value")
		if err != nil {
			return err
		}
		i.Properties().Set(name, value)
		return nil
	})
}

func readSubstation(n *network.Network, rc *ReaderContext) error {
	id, name, err := readIdentity(rc)
	if err != nil {
		return err
	}
	r := rc.Reader()
	country, _ := r.Attribute("country")
	tso, _ := r.Attribute("tso")
	s, err := n.NewSubstation().
		WithID(id).
		WithName(name).
		WithCountry(country).
		WithTSO(tso).
		Add()
	if err != nil {
		return err
	}
	return readProperties(s, rc)
}

func readGenerator(n *network.Network, rc *ReaderContext) error {
	id, name, err := readIdentity(rc)
	if err != nil {
		return err
	}
	r := rc.Reader()
	var (
		minP, maxP, targetP, targetV, targetQ float64
		voltageRegulatorOn                    bool
	)
	if minP, err = r.FloatAttribute("minP"); err != nil {
		return err
	}
	if maxP, err = r.FloatAttribute("maxP"); err != nil {
		return err
	}
	if voltageRegulatorOn, err = r.BoolAttribute("voltageRegulatorOn"); err != nil {
		return err
	}
	if targetP, err = r.FloatAttribute("targetP"); err != nil {
		return err
	}
	if targetV, err = r.OptionalFloatAttribute("targetV"); err != nil {
		return err
	}
	if targetQ, err = r.OptionalFloatAttribute("targetQ"); err != nil {
		return err
	}
	g, err := n.NewGenerator().
		WithID(id).
		WithName(name).
		WithMinP(minP).
		WithMaxP(maxP).
		WithVoltageRegulatorOn(voltageRegulatorOn).
		WithTargetP(targetP).
		WithTargetV(targetV).
		WithTargetQ(targetQ).
		Add()
	if err != nil {
		return err
	}
	return readProperties(g, rc)
}

func readBattery(n *network.Network, rc *ReaderContext) error {
	if !rc.Version().AtLeast(V1_1) {
		return fmt.Errorf("%w: battery element in IIDM version %s", ErrMalformedDocument, rc.Version())
	}
	id, name, err := readIdentity(rc)
	if err != nil {
		return err
	}
	r := rc.Reader()
	var p0, q0, minP, maxP float64
	if p0, err = r.FloatAttribute("p0"); err != nil {
		return err
	}
	if q0, err = r.FloatAttribute("q0"); err != nil {
		return err
	}
	if minP, err = r.FloatAttribute("minP"); err != nil {
		return err
	}
	if maxP, err = r.FloatAttribute("maxP"); err != nil {
		return err
	}
	b, err := n.NewBattery().
		WithID(id).
		WithName(name).
		WithP0(p0).
		WithQ0(q0).
		WithMinP(minP).
		WithMaxP(maxP).
		Add()
	if err != nil {
		return err
	}
	return readProperties(b, rc)
}

func readLoad(n *network.Network, rc *ReaderContext) error {
	id, name, err := readIdentity(rc)
	if err != nil {
		return err
	}
	r := rc.Reader()
	rawType, err := r.RequiredAttribute("loadType")
	if err != nil {
		return err
	}
	loadType, err := network.ParseLoadType(rawType)
	if err != nil {
		return err
	}
	var p0, q0 float64
	if p0, err = r.FloatAttribute("p0"); err != nil {
		return err
	}
	if q0, err = r.FloatAttribute("q0"); err != nil {
		return err
	}
	l, err := n.NewLoad().
		WithID(id).
		WithName(name).
		WithLoadType(loadType).
		WithP0(p0).
		WithQ0(q0).
		Add()
	if err != nil {
		return err
	}
	return readProperties(l, rc)
}

func readLine(n *network.Network, rc *ReaderContext) error {
	id, name, err := readIdentity(rc)
	if err != nil {
		return err
	}
	r := rc.Reader()
	var (
		s1, s2 string
		x, rr  float64
	)
	for attr, dst := range map[string]*string{"substation1": &s1, "substation2": &s2} {
		raw, err := r.RequiredAttribute(attr)
		if err != nil {
			return err
		}
		if *dst, err = rc.Deanonymize(raw); err != nil {
			return err
		}
	}
	if rr, err = r.FloatAttribute("r"); err != nil {
		return err
	}
	if x, err = r.FloatAttribute("x"); err != nil {
		return err
	}
	l, err := n.NewLine().
		WithID(id).
		WithName(name).
		WithSubstation1(s1).
		WithSubstation2(s2).
		WithR(rr).
		WithX(x).
		Add()
	if err != nil {
		return err
	}
	return readProperties(l, rc)
}
