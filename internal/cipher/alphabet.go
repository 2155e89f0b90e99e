// Package cipher implements a mono-alphabetic substitution cipher over the
// 26-letter Latin alphabet.
//
// A Key is a permutation of the alphabet: Key[i] is the ciphertext letter for
// the plaintext letter at alphabet index i. Encryption substitutes every ASCII
// letter through the key, preserving case; everything else passes through
// unchanged. Decryption applies the inverse permutation, derived on demand.
//
// The package has no terminal, file or network dependencies. The Engine type
// holds the active key for callers that edit and replace keys at runtime.
package cipher

const (
	// Alphabet is the canonical index space: index 0 is 'A', index 25 is 'Z'.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// Size is the number of letters in the alphabet (and in every key).
	Size = len(Alphabet)
)

// letterIndex maps an ASCII letter of either case to its alphabet index.
// It reports whether r was a letter and whether it was uppercase.
func letterIndex(r rune) (idx int, upper bool, ok bool) {
	switch {
	case r >= 'A' && r <= 'Z':
		return int(r - 'A'), true, true
	case r >= 'a' && r <= 'z':
		return int(r - 'a'), false, true
	}
	return 0, false, false
}

// withCase returns the uppercase letter c in lowercase when upper is false.
func withCase(c byte, upper bool) rune {
	if upper {
		return rune(c)
	}
	return rune(c - 'A' + 'a')
}
