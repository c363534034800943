package extensions

import (
	"github.com/rs/zerolog/log"

	"github.com/toolink/iidm/extension"
	"github.com/toolink/iidm/iidmxml"
	"github.com/toolink/iidm/network"
)

// BranchStatusName is the name of the BranchStatus extension.
const BranchStatusName = "branchStatus"

// Status is the operating status of a branch.
type Status string

const (
	StatusInOperation   Status = "IN_OPERATION"
	StatusPlannedOutage Status = "PLANNED_OUTAGE"
	StatusForcedOutage  Status = "FORCED_OUTAGE"
)

// ParseStatus checks that s is a known status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusInOperation, StatusPlannedOutage, StatusForcedOutage:
		return st, nil
	}
	return "", validationErrorf("Unknown branch status %q", s)
}

// BranchStatus holds the operating status of a line.
type BranchStatus struct {
	extension.Base
	status Status
}

// Name implements extension.Extension.
func (*BranchStatus) Name() string { return BranchStatusName }

// AssertExtendable implements extension.Extension.
func (*BranchStatus) AssertExtendable(owner extension.Extendable) error {
	if _, ok := owner.(*network.Line); ok {
		return nil
	}
	return extension.OwnerTypeError(BranchStatusName, owner, "Line")
}

// Status returns the operating status.
func (b *BranchStatus) Status() Status { return b.status }

// SetStatus changes the operating status.
func (b *BranchStatus) SetStatus(status Status) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	b.status = status
	return nil
}

// BranchStatusAdder builds a BranchStatus. The status defaults to
// StatusInOperation.
type BranchStatusAdder struct {
	extension.AdderBase
	status Status
}

// InitDefaults implements extension.Defaulter.
func (a *BranchStatusAdder) InitDefaults() {
	a.status = StatusInOperation
}

// WithStatus sets the status. Defaults to StatusInOperation.
func (a *BranchStatusAdder) WithStatus(status Status) *BranchStatusAdder {
	a.status = status
	return a
}

// Add attaches the extension to the adder's owner.
func (a *BranchStatusAdder) Add() (*BranchStatus, error) {
	if _, err := ParseStatus(string(a.status)); err != nil {
		return nil, err
	}
	b := &BranchStatus{status: a.status}
	if err := extension.Attach(a.Owner(), b); err != nil {
		return nil, err
	}
	log.Debug().Str("id", a.Owner().ID()).Str("status", string(b.status)).Msg("branch status added")
	return b, nil
}

// BranchStatusSerializer writes the status as element text.
type BranchStatusSerializer struct {
	iidmxml.VersionableSerializer
}

// NewBranchStatusSerializer returns the serializer of BranchStatus.
func NewBranchStatusSerializer() *BranchStatusSerializer {
	return &BranchStatusSerializer{
		VersionableSerializer: iidmxml.NewVersionableSerializer(BranchStatusName, "bs",
			iidmxml.NewCompatibilityTable().PutRange(iidmxml.V1_0, iidmxml.CurrentVersion, "1.0"),
			map[string]string{
				"1.0": "http://www.powsybl.org/schema/iidm/ext/branch_status/1_0",
			}),
	}
}

// Write implements iidmxml.ExtensionSerializer.
func (s *BranchStatusSerializer) Write(ext extension.Extension, ctx *iidmxml.WriterContext) error {
	b, err := cast[*BranchStatus](ext)
	if err != nil {
		return err
	}
	return ctx.Writer().WriteCharacters(string(b.status))
}

// Read implements iidmxml.ExtensionSerializer.
func (s *BranchStatusSerializer) Read(owner extension.Extendable, ctx *iidmxml.ReaderContext) (extension.Extension, error) {
	text, err := ctx.Reader().ReadText()
	if err != nil {
		return nil, err
	}
	b, err := extension.NewExtension[BranchStatusAdder](owner).WithStatus(Status(text)).Add()
	if err != nil {
		return nil, err
	}
	return b, nil
}
