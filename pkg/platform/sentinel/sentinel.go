package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and clients return these
// (optionally wrapped) so services can decide whether a miss is expected or not:
// - ErrNotFound: the key or record does not exist in the store
// - ErrUnavailable: the backing service is down or deliberately disabled
// - ErrConflict: a write lost against a concurrent writer
//
// For input validation failures use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
	ErrConflict    = errors.New("conflict")
)
