// internal/state/slots.go
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/user/slotbot/internal/types"
)

// slotsFile is the on-disk format for a session's candidate slot set.
type slotsFile struct {
	SessionID types.SessionID `json:"session_id"`
	UpdatedAt time.Time       `json:"updated_at"`
	Slots     []time.Time     `json:"slots"`
}

// SlotStore persists the candidate slot set each session carries between
// turns, one JSON file per session at sessions/<sessionID>/slots.json.
// Put replaces the whole set: a fresh availability query always wins.
type SlotStore struct {
	root string
	mu   sync.Mutex
}

// NewSlotStore creates a new file-backed SlotStore rooted at the given directory.
func NewSlotStore(root string) *SlotStore {
	return &SlotStore{root: root}
}

func (s *SlotStore) slotsPath(sessionID types.SessionID) string {
	return filepath.Join(s.root, "sessions", string(sessionID), "slots.json")
}

// Put replaces the session's candidate slot set.
func (s *SlotStore) Put(_ context.Context, sessionID types.SessionID, slots []time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := json.MarshalIndent(&slotsFile{
		SessionID: sessionID,
		UpdatedAt: time.Now(),
		Slots:     slots,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal slots: %w", err)
	}

	dir := filepath.Dir(s.slotsPath(sessionID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	// Atomic write via temp file + rename
	target := s.slotsPath(sessionID)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("write temp slots: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp slots: %w", err)
	}
	return nil
}

// Get returns the session's current candidate slot set. A session with no
// stored set yields an empty slice, not an error.
func (s *SlotStore) Get(_ context.Context, sessionID types.SessionID) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.slotsPath(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read slots file: %w", err)
	}

	var file slotsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal slots: %w", err)
	}
	return file.Slots, nil
}
