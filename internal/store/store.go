// Package store persists reader state as JSON files under the user's state
// directory. Each slot is one file; a missing or corrupt file reads back as
// empty so a damaged store never blocks startup.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmelton/folio/internal/logging"
)

// Slot names one persisted state file.
type Slot string

const (
	SlotBooks     Slot = "books"
	SlotFavorites Slot = "favorites"
	SlotProgress  Slot = "progress"
	SlotSettings  Slot = "settings"
)

// Store reads and writes JSON slots in a single directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// Open creates the state directory if needed and returns a store over it.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// DefaultDir returns XDG_STATE_HOME/folio or ~/.local/state/folio.
func DefaultDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "folio")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "folio")
}

// Load reads a slot into v. It reports false, leaving v untouched, when the
// slot is absent or unreadable; corruption is logged, not returned.
func (s *Store) Load(slot Slot, v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(slot))
	if os.IsNotExist(err) {
		return false
	}
	if err != nil {
		logging.Warnf("store: reading %s: %v", slot, err)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		logging.Warnf("store: slot %s is corrupt, starting empty: %v", slot, err)
		return false
	}
	return true
}

// Save writes v to a slot, replacing any previous contents.
func (s *Store) Save(slot Slot, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(slot), data, 0644)
}

func (s *Store) path(slot Slot) string {
	return filepath.Join(s.dir, string(slot)+".json")
}
