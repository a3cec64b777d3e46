package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Registry sources and caches return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: identifier is not present in a source or cache
// - ErrUnavailable: source or cache temporarily unavailable
//
// For validation errors (bad input, missing columns), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
