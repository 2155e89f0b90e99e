package internal

import "errors"

var (
	// ErrProfileNotFound is returned by Store.Load when no key is stored
	// under the requested profile.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrStateCorrupt is returned when the state file cannot be decoded or a
	// stored key does not match its fingerprint.
	ErrStateCorrupt = errors.New("state file corrupt")

	// ErrRoundTrip is returned when decrypting an encryption does not give
	// back the original text.
	ErrRoundTrip = errors.New("round-trip mismatch")
)
