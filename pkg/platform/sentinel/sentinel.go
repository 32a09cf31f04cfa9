package sentinel

import "errors"

// Sentinel errors for store-level facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors with
// caller-facing messages.
//
// These represent factual states about persisted resources:
// - ErrNotFound: row does not exist for the scoping user
// - ErrConflict: uniqueness constraint violated
// - ErrInvalidState: row exists but is in the wrong status for the operation
// - ErrForeignKey: a referenced row does not exist
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrForeignKey   = errors.New("referenced row missing")
)
