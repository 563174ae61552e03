// internal/state/turns.go
package state

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/user/slotbot/internal/types"
)

// TurnStore is a JSONL-backed append-only transcript store.
// Turns are stored per-session in sessions/<sessionID>/turns.jsonl.
type TurnStore struct {
	root  string
	mu    sync.Mutex
	locks map[types.SessionID]*sync.Mutex
}

// NewTurnStore creates a new file-backed TurnStore rooted at the given directory.
func NewTurnStore(root string) *TurnStore {
	return &TurnStore{
		root:  root,
		locks: make(map[types.SessionID]*sync.Mutex),
	}
}

// getLock returns the per-session mutex, creating one if it doesn't exist.
func (s *TurnStore) getLock(sessionID types.SessionID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lock, ok := s.locks[sessionID]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	s.locks[sessionID] = lock
	return lock
}

func (s *TurnStore) turnsPath(sessionID types.SessionID) string {
	return filepath.Join(s.root, "sessions", string(sessionID), "turns.jsonl")
}

// count reads the turns file and counts lines. Caller must hold the session lock.
func (s *TurnStore) count(sessionID types.SessionID) (int64, error) {
	f, err := os.Open(s.turnsPath(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("open turns file: %w", err)
	}
	defer f.Close()

	var count int64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scan turns file: %w", err)
	}
	return count, nil
}

// Append adds a turn to the session's transcript with an auto-incremented sequence number.
func (s *TurnStore) Append(_ context.Context, turn *types.Turn) error {
	lock := s.getLock(turn.SessionID)
	lock.Lock()
	defer lock.Unlock()

	dir := filepath.Dir(s.turnsPath(turn.SessionID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	existing, err := s.count(turn.SessionID)
	if err != nil {
		return err
	}
	turn.Seq = existing + 1

	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}

	f, err := os.OpenFile(s.turnsPath(turn.SessionID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open turns file: %w", err)
	}
	defer f.Close()

	data = append(data, '\n')
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write turn: %w", err)
	}

	return nil
}

// Tail returns the last N turns for the given session.
func (s *TurnStore) Tail(_ context.Context, sessionID types.SessionID, limit int) ([]*types.Turn, error) {
	lock := s.getLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	f, err := os.Open(s.turnsPath(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open turns file: %w", err)
	}
	defer f.Close()

	var turns []*types.Turn
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var turn types.Turn
		if err := json.Unmarshal(scanner.Bytes(), &turn); err != nil {
			return nil, fmt.Errorf("unmarshal turn: %w", err)
		}
		turns = append(turns, &turn)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan turns file: %w", err)
	}

	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	return turns, nil
}

// Count returns the number of turns for the given session.
func (s *TurnStore) Count(_ context.Context, sessionID types.SessionID) (int64, error) {
	lock := s.getLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	return s.count(sessionID)
}
