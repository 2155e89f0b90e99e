package cipher

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomKey returns a uniformly random permutation of the alphabet drawn from
// r. Shuffle is an unbiased Fisher-Yates shuffle, so each of the 26!
// permutations is equally likely given a uniform source. A nil r uses a
// source backed by crypto/rand.
func RandomKey(r *rand.Rand) Key {
	if r == nil {
		r = rand.New(cryptoSource{})
	}
	k := IdentityKey()
	r.Shuffle(Size, func(i, j int) { k[i], k[j] = k[j], k[i] })
	return k
}

// SeededRand returns a deterministic generator for reproducible keys, e.g. in
// tests and the self-test harness.
func SeededRand(seed uint64) *rand.Rand {
	var s [32]byte
	binary.LittleEndian.PutUint64(s[:8], seed)
	return rand.New(rand.NewChaCha8(s))
}

// cryptoSource is a rand.Source reading from the operating system CSPRNG.
type cryptoSource struct{}

func (cryptoSource) Uint64() uint64 {
	var b [8]byte
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = crand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}
