package config

import "errors"

// Validation errors returned by Config.Validate. Package-level sentinels
// keep errors.Is usable for callers while carrying a readable message.
var (
	// ErrNoSeed is returned when no seed URL was provided, either as an
	// argument or through the interactive prompt.
	ErrNoSeed = errors.New("no seed URL specified")

	// ErrInvalidDepth is returned when the expansion ceiling is negative.
	// A ceiling of 0 is valid and means the seed page is never expanded.
	ErrInvalidDepth = errors.New("invalid depth: must be non-negative")

	// ErrInvalidMaxPages is returned when the page budget is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidDelay is returned when the politeness delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the body size limit is negative.
	// Use 0 to fall back to the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidBatch is returned when the seed concurrency is not positive.
	ErrInvalidBatch = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are requested. Only one report format can be produced.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
