package core

import "errors"

var (
	// ErrInvalidQuery marks a query that fails the structural invariant:
	// no free text, no required skills and no profile name. Reported to
	// the caller immediately, never retried.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrRetrievalUnavailable means every executed signal branch failed.
	// Distinct from an empty result, which is a valid outcome.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
)
