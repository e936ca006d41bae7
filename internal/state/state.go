package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// FileState is what was recorded for a source after its last translation.
type FileState struct {
	MTime        int64     `json:"mtime"`
	Hash         string    `json:"hash"`
	Dest         string    `json:"dest"`
	Pair         string    `json:"pair"` // e.g. "en:ja"
	TranslatedAt time.Time `json:"translated_at"`
}

// State maps source paths to their last translation. It is safe for
// concurrent use by batch workers.
type State struct {
	mu    sync.Mutex
	Files map[string]*FileState `json:"files"`
}

// NewState creates a new empty state
func NewState() *State {
	return &State{
		Files: make(map[string]*FileState),
	}
}

// Load reads state from the state file
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, err
	}

	state := NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	if state.Files == nil {
		state.Files = make(map[string]*FileState)
	}

	return state, nil
}

// Save writes state to the state file
func (s *State) Save(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// ComputeHash computes SHA256 hash of a file
func ComputeHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}

// Pair formats a language pair for FileState.Pair.
func Pair(from, to string) string {
	return from + ":" + to
}

// NeedsTranslation reports whether source must be translated to dest for
// pair, and why. Unchanged content is detected with the hybrid mtime and
// hash check: mtime first, hash only when mtime moved.
func (s *State) NeedsTranslation(source, dest, pair string) (bool, string, error) {
	info, err := os.Stat(source)
	if err != nil {
		return false, "", err
	}

	s.mu.Lock()
	fs, exists := s.Files[source]
	var prev FileState
	if exists {
		prev = *fs
	}
	s.mu.Unlock()

	switch {
	case !exists:
		return true, "new file", nil
	case prev.Dest != dest:
		return true, "destination changed", nil
	case prev.Pair != pair:
		return true, "language pair changed", nil
	}

	if _, err := os.Stat(dest); err != nil {
		if os.IsNotExist(err) {
			return true, "destination missing", nil
		}
		return false, "", err
	}

	// Fast path: check mtime first
	if info.ModTime().Unix() == prev.MTime {
		return false, "unchanged", nil
	}

	hash, err := ComputeHash(source)
	if err != nil {
		return false, "", err
	}
	if hash != prev.Hash {
		return true, "content changed", nil
	}
	return false, "unchanged", nil
}

// Record stores the current hash and mtime of source after a successful
// translation into dest.
func (s *State) Record(source, dest, pair string) error {
	info, err := os.Stat(source)
	if err != nil {
		return err
	}

	hash, err := ComputeHash(source)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files[source] = &FileState{
		MTime:        info.ModTime().Unix(),
		Hash:         hash,
		Dest:         dest,
		Pair:         pair,
		TranslatedAt: time.Now().UTC(),
	}

	return nil
}

// Get returns a copy of the recorded state for source.
func (s *State) Get(source string) (FileState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fs, ok := s.Files[source]
	if !ok {
		return FileState{}, false
	}
	return *fs, true
}

// Sources returns the recorded source paths in lexical order.
func (s *State) Sources() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.Files))
	for src := range s.Files {
		out = append(out, src)
	}
	sort.Strings(out)
	return out
}
