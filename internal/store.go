package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"subriot/internal/cipher"
)

const (
	stateFileName = "state.json"
	stateVersion  = 1
)

// Store persists keys across sessions, one per named profile, in a single
// JSON file. Keys are written in canonical uppercase form alongside their
// fingerprint, which is checked on load.
type Store struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

type stateFile struct {
	Version  int                     `json:"version"`
	Profiles map[string]profileState `json:"profiles"`
}

type profileState struct {
	Key         cipher.Key `json:"key"`
	Fingerprint string     `json:"fingerprint"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// OpenStore returns a Store backed by dir/state.json. The directory is
// created on first Save.
func OpenStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, stateFileName), now: time.Now}
}

// Path returns the location of the state file.
func (s *Store) Path() string {
	return s.path
}

// Load returns the key stored under profile.
func (s *Store) Load(profile string) (cipher.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.read()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cipher.Key{}, fmt.Errorf("%w: %q", ErrProfileNotFound, profile)
		}
		return cipher.Key{}, err
	}
	ps, ok := st.Profiles[profile]
	if !ok {
		return cipher.Key{}, fmt.Errorf("%w: %q", ErrProfileNotFound, profile)
	}
	if !ps.Key.Valid() {
		return cipher.Key{}, fmt.Errorf("%w: profile %q holds no valid key", ErrStateCorrupt, profile)
	}
	if ps.Fingerprint != ps.Key.Fingerprint() {
		return cipher.Key{}, fmt.Errorf("%w: fingerprint mismatch for profile %q", ErrStateCorrupt, profile)
	}
	return ps.Key, nil
}

// Save stores k under profile, replacing any previous key.
func (s *Store) Save(profile string, k cipher.Key) error {
	if !k.Valid() {
		return cipher.ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.read()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	st.Profiles[profile] = profileState{
		Key:         k,
		Fingerprint: k.Fingerprint(),
		UpdatedAt:   s.now().UTC(),
	}
	return s.write(st)
}

// Delete removes profile. Deleting a missing profile returns
// ErrProfileNotFound.
func (s *Store) Delete(profile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.read()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %q", ErrProfileNotFound, profile)
		}
		return err
	}
	if _, ok := st.Profiles[profile]; !ok {
		return fmt.Errorf("%w: %q", ErrProfileNotFound, profile)
	}
	delete(st.Profiles, profile)
	return s.write(st)
}

// Profiles lists stored profile names in sorted order.
func (s *Store) Profiles() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.read()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(st.Profiles))
	for name := range st.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// read decodes the state file. A missing file yields an empty state together
// with an error wrapping fs.ErrNotExist.
func (s *Store) read() (stateFile, error) {
	st := stateFile{Version: stateVersion, Profiles: map[string]profileState{}}

	b, err := os.ReadFile(s.path)
	if err != nil {
		return st, fmt.Errorf("failed to read state file: %w", err)
	}
	if err := json.Unmarshal(b, &st); err != nil {
		return stateFile{Version: stateVersion, Profiles: map[string]profileState{}},
			fmt.Errorf("%w: %v", ErrStateCorrupt, err)
	}
	if st.Version != stateVersion {
		return st, fmt.Errorf("%w: unsupported version %d", ErrStateCorrupt, st.Version)
	}
	if st.Profiles == nil {
		st.Profiles = map[string]profileState{}
	}
	return st, nil
}

// write replaces the state file atomically via a temp file in the same
// directory.
func (s *Store) write(st stateFile) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(append(b, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
