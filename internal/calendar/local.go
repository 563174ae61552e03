// internal/calendar/local.go
package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/user/slotbot/internal/schedule"
)

// Local serves the facade operations in-process, straight off a Backend,
// for deployments where the agent and the calendar credentials share a
// host. It mirrors Client's surface.
type Local struct {
	backend Backend
}

// NewLocal wraps a backend as an in-process facade.
func NewLocal(backend Backend) *Local {
	return &Local{backend: backend}
}

// Availability returns free slots in [start, end) as UTC instants.
func (l *Local) Availability(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("start must be before end")
	}
	events, err := l.backend.ListEvents(ctx, start, end)
	if err != nil {
		return nil, err
	}
	busy := make([]schedule.Interval, 0, len(events))
	for _, ev := range events {
		busy = append(busy, schedule.Interval{Start: ev.Start, End: ev.End})
	}
	return schedule.GenerateSlots(start, end, busy), nil
}

// Book creates an event for [start, end) and returns a confirmation message.
func (l *Local) Book(ctx context.Context, start, end time.Time, summary, description string) (string, error) {
	if !start.Before(end) {
		return "", fmt.Errorf("start must be before end")
	}
	created, err := l.backend.InsertEvent(ctx, Event{
		Summary:     summary,
		Description: description,
		Start:       start,
		End:         end,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Event created: %s", created.Link), nil
}

// Upcoming returns the next events from now.
func (l *Local) Upcoming(ctx context.Context, limit int) ([]Event, error) {
	return l.backend.ListUpcoming(ctx, limit)
}

// Cancel deletes an event by ID.
func (l *Local) Cancel(ctx context.Context, id string) error {
	return l.backend.DeleteEvent(ctx, id)
}
