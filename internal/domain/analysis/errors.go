package analysis

import "errors"

var (
	// ErrInvalidInput: text missing or shorter than MinTextLength after trimming.
	ErrInvalidInput = errors.New("text must be at least 50 characters long")

	// ErrAnalysisFailed is returned together with one of the causes below whenever
	// no result could be produced.
	ErrAnalysisFailed = errors.New("analysis failed")

	ErrScorerUnavailable = errors.New("scorer unavailable")
	ErrScorerTimeout     = errors.New("scorer timeout")
	ErrStoreUnavailable  = errors.New("store unavailable")

	// ErrDuplicateFingerprint is returned by Repository.Insert when a record for the
	// fingerprint already exists.
	ErrDuplicateFingerprint = errors.New("duplicate fingerprint")

	// ErrNotFound is returned by Repository.FindByFingerprint on a miss.
	ErrNotFound = errors.New("analysis not found")
)
