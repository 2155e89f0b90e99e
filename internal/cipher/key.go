package cipher

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Key is a permutation of Alphabet. Key[i] is the uppercase ciphertext letter
// that the plaintext letter at alphabet index i maps to.
//
// The zero Key is not valid. Obtain keys from IdentityKey, ParseKey or
// RandomKey.
type Key [Size]byte

// IdentityKey returns the key that maps every letter to itself.
func IdentityKey() Key {
	var k Key
	copy(k[:], Alphabet)
	return k
}

// ParseKey builds a Key from a 26-letter key string. Case is ignored; the
// resulting key is always uppercase. On failure the error wraps ErrInvalidKey.
func ParseKey(candidate string) (Key, error) {
	var k Key
	if err := CheckKey(candidate); err != nil {
		return k, err
	}
	for i, r := range []rune(candidate) {
		idx, _, _ := letterIndex(r)
		k[i] = Alphabet[idx]
	}
	return k, nil
}

// MustParseKey is like ParseKey but panics on an invalid key string. It is
// intended for package-level constants and tests.
func MustParseKey(candidate string) Key {
	k, err := ParseKey(candidate)
	if err != nil {
		panic(err)
	}
	return k
}

// Valid reports whether k is a bijection on the alphabet.
func (k Key) Valid() bool {
	var seen [Size]bool
	for _, c := range k {
		if c < 'A' || c > 'Z' || seen[c-'A'] {
			return false
		}
		seen[c-'A'] = true
	}
	return true
}

// String returns the canonical 26-letter uppercase form of the key.
func (k Key) String() string {
	return string(k[:])
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, ErrInvalidKey
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The text is validated
// and k is left unchanged when it is not a key string.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Inverse returns the decryption permutation: Inverse()[j] is the plaintext
// letter whose ciphertext letter is Alphabet[j]. The inverse of an invalid
// key is the zero Key.
func (k Key) Inverse() Key {
	var inv Key
	if !k.Valid() {
		return inv
	}
	for i, c := range k {
		inv[c-'A'] = Alphabet[i]
	}
	return inv
}

// Map returns the ciphertext letter for a plaintext letter, preserving case.
// ok is false when letter is not an ASCII letter or k is invalid.
func (k Key) Map(letter rune) (rune, bool) {
	idx, upper, ok := letterIndex(letter)
	if !ok || !k.Valid() {
		return letter, false
	}
	return withCase(k[idx], upper), true
}

// IsIdentity reports whether k maps every letter to itself.
func (k Key) IsIdentity() bool {
	return k == IdentityKey()
}

// FixedPoints counts the letters that k maps to themselves.
func (k Key) FixedPoints() int {
	n := 0
	for i, c := range k {
		if c == Alphabet[i] {
			n++
		}
	}
	return n
}

// Fingerprint returns a short, stable identifier for the key: the first 8
// bytes of BLAKE2b-256 over the canonical key string, hex encoded. It lets
// logs and state files refer to a key without printing it.
func (k Key) Fingerprint() string {
	sum := blake2b.Sum256([]byte(k.String()))
	return hex.EncodeToString(sum[:8])
}

// Encrypt substitutes every ASCII letter of text through k, keeping its case.
// Every other byte is copied unchanged, including bytes that are not valid
// UTF-8, so the output has the same length as the input. An invalid key
// substitutes nothing and returns text as is.
func (k Key) Encrypt(text string) string {
	if !k.Valid() {
		return text
	}
	return substitute(text, k)
}

// Decrypt reverses Encrypt under the same key. An invalid key returns text
// as is.
func (k Key) Decrypt(text string) string {
	if !k.Valid() {
		return text
	}
	return substitute(text, k.Inverse())
}

// substitute works on bytes rather than runes: only ASCII letters change, and
// no byte of a multi-byte UTF-8 sequence falls in the ASCII range.
func substitute(text string, table Key) string {
	b := []byte(text)
	for i, c := range b {
		idx, upper, ok := letterIndex(rune(c))
		if !ok {
			continue
		}
		b[i] = byte(withCase(table[idx], upper))
	}
	return string(b)
}

// GoString makes %#v print keys readably in test failures.
func (k Key) GoString() string {
	return fmt.Sprintf("cipher.Key(%q)", k.String())
}
