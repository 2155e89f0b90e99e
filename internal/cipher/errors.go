package cipher

import "errors"

var (
	// ErrInvalidKey is returned when a candidate key string is not a
	// permutation of the alphabet. Wrapped errors carry the specific reason.
	ErrInvalidKey = errors.New("key must be exactly 26 unique A-Z letters")

	// ErrKeyNotReady is returned by Engine.Encrypt and Engine.Decrypt when
	// the engine holds no validated key.
	ErrKeyNotReady = errors.New("cipher key not ready")
)
