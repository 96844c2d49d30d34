package deaddrop

import "errors"

var (
	// ErrInvalidPolicy is returned for a threshold/total-shares pair
	// outside [2, 10] or with threshold > total.
	ErrInvalidPolicy = errors.New("deaddrop: invalid share policy")
	// ErrIO wraps local filesystem failures encountered while staging
	// or reading a drop.
	ErrIO = errors.New("deaddrop: io error")
	// ErrAuthFailure is returned when a chunk's AEAD tag fails to verify
	// during retrieval.
	ErrAuthFailure = errors.New("deaddrop: chunk authentication failure")
	// ErrMalformedStream is returned when a chunk's length-prefix framing
	// is inconsistent with the remaining stream.
	ErrMalformedStream = errors.New("deaddrop: malformed chunk stream")
)
