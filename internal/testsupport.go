package internal

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"subriot/internal/cipher"
)

// selfTestCharset mixes both letter cases with digits, punctuation,
// whitespace and a few non-ASCII runes that must pass through untouched.
var selfTestCharset = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789 .,;:!?'\"-\téßЖ漢")

// RunSelfTest generates `sets` random keys, encrypts a random text under each,
// prints key, plaintext and ciphertext, verifies the exact round-trip and
// returns the number of failed sets.
//
// Parameters:
// - w:       destination for the report
// - r:       random source for keys and texts (nil = freshly seeded source)
// - sets:    number of key/text pairs to check
// - textLen: length in runes of each random text
// - title:   heading to print once at the top (empty to skip)
func RunSelfTest(w io.Writer, r *rand.Rand, sets, textLen int, title string) int {
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	failed := 0

	if title != "" {
		fmt.Fprintln(w, Style(title, Bold, Blue))
	}

	for si := 0; si < sets; si++ {
		k := cipher.RandomKey(r)
		text := randomText(r, textLen)

		var result string
		enc, err := EncryptVerified(k, text)
		if err == nil {
			err = VerifyRoundTrip(k.Inverse(), text)
		}
		if err == nil {
			result = Style("PASSED", Bold, Green)
		} else {
			result = Style("FAILED", Bold, Red) + " — " + err.Error()
			failed++
		}

		// Only print "Set N:" when multiple sets are requested
		if sets > 1 {
			fmt.Fprintln(w, Style(fmt.Sprintf("Set %d:", si+1), Bold, Purple))
		}
		fmt.Fprintf(w, "  Key:    %s  %s\n", k, Style("("+k.Fingerprint()+")", Gray))
		fmt.Fprintf(w, "  Plain:  %s\n", text)
		fmt.Fprintf(w, "  Cipher: %s\n", enc)
		fmt.Fprintf(w, "  Result: %s\n", result)
	}

	// Summary (only when multiple sets)
	if sets > 1 {
		fmt.Fprintf(w, "%s %d, %s %d\n",
			Style("Total sets:", Bold), sets,
			Style("Failed:", Bold), failed)
	}

	return failed
}

func randomText(r *rand.Rand, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteRune(selfTestCharset[r.IntN(len(selfTestCharset))])
	}
	return b.String()
}
