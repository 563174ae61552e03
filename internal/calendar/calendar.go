// Package calendar provides the calendar facade: a Backend interface over
// the upstream calendar provider, an HTTP server exposing it, and a thin
// client the agent consumes it through.
package calendar

import (
	"context"
	"time"
)

// Event is a booked calendar entry.
type Event struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Link        string    `json:"link,omitempty"`
}

// Backend abstracts the upstream calendar provider.
type Backend interface {
	// ListEvents returns events overlapping [min, max), ordered by start time.
	// All-day entries carry no instant and are omitted.
	ListEvents(ctx context.Context, min, max time.Time) ([]Event, error)
	// InsertEvent creates an event and returns it with ID and link filled in.
	InsertEvent(ctx context.Context, ev Event) (Event, error)
	// DeleteEvent removes an event by ID.
	DeleteEvent(ctx context.Context, id string) error
	// ListUpcoming returns the next events from now, ordered by start time.
	ListUpcoming(ctx context.Context, limit int) ([]Event, error)
}
