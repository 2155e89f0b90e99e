package cipher

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
)

// Engine holds the active key and applies it to text.
//
// The active key is swapped wholesale on SetKey and RandomizeKey, so
// concurrent Encrypt and Decrypt calls always observe a complete bijection.
// An Engine must not be copied after first use.
//
// The zero Engine holds no key: Encrypt and Decrypt return ErrKeyNotReady
// until SetKey or RandomizeKey succeeds. NewEngine starts with the identity
// key.
type Engine struct {
	active atomic.Pointer[Key]

	mu     sync.Mutex // guards rng
	rng    *rand.Rand
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source used by RandomizeKey.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithLogger sets the logger for key changes. Keys are logged by fingerprint
// only.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithKey sets the initial key instead of the identity key. An invalid key is
// ignored.
func WithKey(k Key) Option {
	return func(e *Engine) {
		if k.Valid() {
			e.active.Store(&k)
		}
	}
}

// NewEngine returns an Engine whose active key is the identity key unless
// WithKey says otherwise.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	id := IdentityKey()
	e.active.Store(&id)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Key returns a snapshot of the active key. ok is false when no key has been
// set.
func (e *Engine) Key() (Key, bool) {
	p := e.active.Load()
	if p == nil {
		return Key{}, false
	}
	return *p, true
}

// SetKey validates candidate and, on success, makes it the active key. On
// failure the active key is left unchanged and the error wraps ErrInvalidKey.
func (e *Engine) SetKey(candidate string) (Key, error) {
	k, err := ParseKey(candidate)
	if err != nil {
		e.log().Debug("key rejected", slog.Any("error", err))
		return Key{}, err
	}
	e.swap(k, "set")
	return k, nil
}

// RandomizeKey replaces the active key with a uniformly random permutation
// and returns it.
func (e *Engine) RandomizeKey() Key {
	e.mu.Lock()
	k := RandomKey(e.rng)
	e.mu.Unlock()
	e.swap(k, "randomized")
	return k
}

// Encrypt substitutes text through the active key.
func (e *Engine) Encrypt(text string) (string, error) {
	k, ok := e.Key()
	if !ok {
		return "", ErrKeyNotReady
	}
	return k.Encrypt(text), nil
}

// Decrypt reverses Encrypt under the active key.
func (e *Engine) Decrypt(text string) (string, error) {
	k, ok := e.Key()
	if !ok {
		return "", ErrKeyNotReady
	}
	return k.Decrypt(text), nil
}

func (e *Engine) swap(k Key, how string) {
	e.active.Store(&k)
	e.log().Debug("key "+how, slog.String("fingerprint", k.Fingerprint()))
}

func (e *Engine) log() *slog.Logger {
	if e.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.logger
}
