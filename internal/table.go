package internal

import (
	"fmt"
	"io"
	"strings"

	"subriot/internal/cipher"
)

// WriteTable prints the substitution table for k: the plaintext alphabet,
// the ciphertext letter under each, and the decryption row mapping each
// ciphertext letter back to plaintext.
func WriteTable(w io.Writer, k cipher.Key) {
	spaced := func(s string) string {
		return strings.Join(strings.Split(s, ""), " ")
	}

	row := make([]rune, 0, cipher.Size)
	for _, plain := range cipher.Alphabet {
		c, _ := k.Map(plain)
		row = append(row, c)
	}

	fmt.Fprintf(w, "%s %s\n", Style(fmt.Sprintf("%-8s", "Plain:"), Bold, Blue), spaced(cipher.Alphabet))
	fmt.Fprintf(w, "%s %s\n", Style(fmt.Sprintf("%-8s", "Cipher:"), Bold, Blue), Style(spaced(string(row)), Cyan))
	fmt.Fprintf(w, "%s\n", strings.Repeat("─", 8+2*cipher.Size))
	fmt.Fprintf(w, "%s %s\n", Style(fmt.Sprintf("%-8s", "Cipher:"), Bold, Blue), spaced(cipher.Alphabet))
	fmt.Fprintf(w, "%s %s\n", Style(fmt.Sprintf("%-8s", "Plain:"), Bold, Blue), Style(spaced(k.Inverse().String()), Cyan))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Fixed points: %d\n", k.FixedPoints())
	fmt.Fprintf(w, "Fingerprint:  %s\n", k.Fingerprint())
}
