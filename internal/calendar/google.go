// internal/calendar/google.go
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleBackend implements Backend over the Google Calendar API. It expects
// a pre-authorized token file; the interactive OAuth consent flow is not
// handled here. Expired tokens refresh through the TokenSource.
type GoogleBackend struct {
	svc        *gcal.Service
	calendarID string
}

// NewGoogleBackend builds a Google Calendar backend from OAuth client
// credentials and a stored token file.
func NewGoogleBackend(ctx context.Context, credentialsFile, tokenFile, calendarID string) (*GoogleBackend, error) {
	if calendarID == "" {
		calendarID = "primary"
	}

	creds, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	conf, err := google.ConfigFromJSON(creds, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	tok, err := loadToken(tokenFile)
	if err != nil {
		return nil, err
	}

	svc, err := gcal.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return &GoogleBackend{svc: svc, calendarID: calendarID}, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return &tok, nil
}

// ListEvents returns timed events overlapping [min, max). All-day events
// have only a date and are skipped.
func (g *GoogleBackend) ListEvents(ctx context.Context, min, max time.Time) ([]Event, error) {
	res, err := g.svc.Events.List(g.calendarID).
		TimeMin(min.Format(time.RFC3339)).
		TimeMax(max.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return convertEvents(res.Items)
}

// InsertEvent creates an event on the calendar.
func (g *GoogleBackend) InsertEvent(ctx context.Context, ev Event) (Event, error) {
	created, err := g.svc.Events.Insert(g.calendarID, &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start: &gcal.EventDateTime{
			DateTime: ev.Start.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &gcal.EventDateTime{
			DateTime: ev.End.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
	}).Context(ctx).Do()
	if err != nil {
		return Event{}, fmt.Errorf("insert event: %w", err)
	}

	ev.ID = created.Id
	ev.Link = created.HtmlLink
	return ev, nil
}

// DeleteEvent removes an event by ID.
func (g *GoogleBackend) DeleteEvent(ctx context.Context, id string) error {
	if err := g.svc.Events.Delete(g.calendarID, id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// ListUpcoming returns the next events starting from now.
func (g *GoogleBackend) ListUpcoming(ctx context.Context, limit int) ([]Event, error) {
	res, err := g.svc.Events.List(g.calendarID).
		TimeMin(time.Now().UTC().Format(time.RFC3339)).
		MaxResults(int64(limit)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return convertEvents(res.Items)
}

func convertEvents(items []*gcal.Event) ([]Event, error) {
	events := make([]Event, 0, len(items))
	for _, item := range items {
		// All-day events carry Date instead of DateTime.
		if item.Start == nil || item.Start.DateTime == "" || item.End == nil || item.End.DateTime == "" {
			continue
		}
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return nil, fmt.Errorf("parse event start %q: %w", item.Start.DateTime, err)
		}
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			return nil, fmt.Errorf("parse event end %q: %w", item.End.DateTime, err)
		}
		events = append(events, Event{
			ID:      item.Id,
			Summary: item.Summary,
			Start:   start.UTC(),
			End:     end.UTC(),
			Link:    item.HtmlLink,
		})
	}
	return events, nil
}

var _ Backend = (*GoogleBackend)(nil)
