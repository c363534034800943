package iidm

import "errors"

// Error kinds. Packages wrap these in their own sentinels so that callers can
// test either the precise error or its kind with errors.Is.
var (
	// ErrNotFound is returned by every lookup of an unknown key.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a key is registered twice.
	ErrAlreadyExists = errors.New("already exists")

	// ErrDuplicateID is returned when two identifiables share an id in one network.
	ErrDuplicateID = errors.New("duplicate identifier")

	// ErrOwnerTypeMismatch is returned when an extension is attached to an
	// element type it does not accept.
	ErrOwnerTypeMismatch = errors.New("owner type mismatch")

	// ErrValidation is returned by adders when a field is missing or out of range.
	ErrValidation = errors.New("validation error")

	// ErrVersionIncompatible is returned when a core/extension schema version
	// combination is unknown.
	ErrVersionIncompatible = errors.New("version incompatibility")

	// ErrInvalidState is returned when an operation is not allowed in the
	// current state of the object.
	ErrInvalidState = errors.New("invalid state")
)
