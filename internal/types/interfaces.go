// internal/types/interfaces.go
package types

import (
	"context"
	"time"
)

type SessionStore interface {
	ResolveOrCreate(ctx context.Context, key SessionKey) (SessionID, error)
	Get(ctx context.Context, id SessionID) (*SessionIndex, error)
	List(ctx context.Context) ([]*SessionIndex, error)
	Update(ctx context.Context, session *SessionIndex) error
}

type TurnStore interface {
	Append(ctx context.Context, turn *Turn) error
	Tail(ctx context.Context, sessionID SessionID, limit int) ([]*Turn, error)
	Count(ctx context.Context, sessionID SessionID) (int64, error)
}

// SlotStore holds the candidate slot set suggested to a session by its most
// recent availability query. Put replaces the whole set; suggestions from
// earlier queries are never merged in.
type SlotStore interface {
	Put(ctx context.Context, sessionID SessionID, slots []time.Time) error
	Get(ctx context.Context, sessionID SessionID) ([]time.Time, error)
}
