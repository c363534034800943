package extension

// AdderBase binds an adder to the element the extension will be attached to.
// Every adder embeds it.
type AdderBase struct {
	owner Extendable
}

// Owner returns the element the adder attaches to.
func (a *AdderBase) Owner() Extendable {
	return a.owner
}

func (a *AdderBase) setOwner(owner Extendable) {
	a.owner = owner
}

type ownerSetter interface {
	setOwner(owner Extendable)
}

// Defaulter is implemented by adders whose fields start at a sentinel other
// than the zero value, typically NaN for doubles.
type Defaulter interface {
	InitDefaults()
}

// NewExtension returns a fresh adder of type A bound to owner:
//
//	apc, err := extension.NewExtension[extensions.ActivePowerControlAdder](gen).
//		WithDroop(4).
//		WithParticipate(true).
//		Add()
func NewExtension[A any, PA interface {
	*A
	ownerSetter
}](owner Extendable) PA {
	adder := PA(new(A))
	adder.setOwner(owner)
	if d, ok := any(adder).(Defaulter); ok {
		d.InitDefaults()
	}
	return adder
}
