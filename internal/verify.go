package internal

import (
	"fmt"

	"subriot/internal/cipher"
)

// EncryptVerified encrypts text under k and then immediately verifies a full
// round-trip by decrypting the result with the same key. If verification
// fails for any reason, an error is returned and no ciphertext is produced.
//
// Verification checks, in order:
//   - the key is a bijection
//   - the ciphertext has the same length as the input
//   - every non-letter byte is unchanged
//   - decrypting the ciphertext yields text exactly
func EncryptVerified(k cipher.Key, text string) (string, error) {
	if !k.Valid() {
		return "", cipher.ErrInvalidKey
	}

	enc := k.Encrypt(text)
	if len(enc) != len(text) {
		return "", fmt.Errorf("%w: ciphertext length %d != %d", ErrRoundTrip, len(enc), len(text))
	}
	for i := 0; i < len(text); i++ {
		if !isASCIILetter(rune(text[i])) && enc[i] != text[i] {
			return "", fmt.Errorf("%w: non-letter changed at byte %d", ErrRoundTrip, i)
		}
	}

	dec := k.Decrypt(enc)
	if dec != text {
		return "", fmt.Errorf("%w: first difference at byte %d", ErrRoundTrip, firstDiff(dec, text))
	}
	return enc, nil
}

// VerifyRoundTrip checks that encrypting and then decrypting text under k
// yields text. It is equivalent to calling EncryptVerified and discarding the
// ciphertext.
func VerifyRoundTrip(k cipher.Key, text string) error {
	_, err := EncryptVerified(k, text)
	return err
}

func firstDiff(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
