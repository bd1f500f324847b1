package knowledge

import "errors"

// Error kinds for knowledge operations. The HTTP layer maps these onto
// status codes, so every failure path in this package must wrap one of them.
var (
	// ErrValidation indicates malformed or missing caller input.
	ErrValidation = errors.New("invalid request")

	// ErrConfiguration indicates a required credential or setting is absent.
	ErrConfiguration = errors.New("service is not configured")

	// ErrStoreUnavailable indicates the vector store could not be reached.
	ErrStoreUnavailable = errors.New("knowledge store unavailable")

	// ErrRateLimited indicates an upstream AI provider rejected the request
	// for quota reasons.
	ErrRateLimited = errors.New("upstream provider rate limited")

	// ErrNotFound indicates the referenced source does not exist.
	ErrNotFound = errors.New("source not found")

	// ErrExtraction indicates source content could not be parsed into text.
	ErrExtraction = errors.New("content extraction failed")
)
