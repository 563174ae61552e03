// internal/calendar/client.go
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/user/slotbot/internal/schedule"
)

// Client is a thin HTTP consumer of the calendar facade. Requests are not
// retried and errors carry no partial results.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a facade client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("calendar API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// Availability returns free slots in [start, end) as UTC instants.
func (c *Client) Availability(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	q := url.Values{}
	q.Set("start", start.UTC().Format(time.RFC3339))
	q.Set("end", end.UTC().Format(time.RFC3339))

	var payload struct {
		AvailableSlots []string `json:"available_slots"`
	}
	if err := c.get(ctx, "/availability?"+q.Encode(), &payload); err != nil {
		return nil, err
	}

	slots := make([]time.Time, 0, len(payload.AvailableSlots))
	for _, s := range payload.AvailableSlots {
		t, err := schedule.ParseISO(s)
		if err != nil {
			return nil, fmt.Errorf("parse slot: %w", err)
		}
		slots = append(slots, t)
	}
	return slots, nil
}

// Book creates an event for [start, end) and returns the facade's
// confirmation message.
func (c *Client) Book(ctx context.Context, start, end time.Time, summary, description string) (string, error) {
	body, err := json.Marshal(bookRequest{
		StartTime:   start.UTC().Format(time.RFC3339),
		EndTime:     end.UTC().Format(time.RFC3339),
		Summary:     summary,
		Description: description,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/book", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var payload struct {
		Message string `json:"message"`
	}
	if err := c.do(req, &payload); err != nil {
		return "", err
	}
	return payload.Message, nil
}

// Upcoming returns the next events from now.
func (c *Client) Upcoming(ctx context.Context, limit int) ([]Event, error) {
	var payload struct {
		Events []Event `json:"events"`
	}
	if err := c.get(ctx, fmt.Sprintf("/upcoming-events?limit=%d", limit), &payload); err != nil {
		return nil, err
	}
	return payload.Events, nil
}

// Cancel deletes an event by ID.
func (c *Client) Cancel(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/cancel/"+url.PathEscape(id), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	var payload struct {
		Message string `json:"message"`
	}
	return c.do(req, &payload)
}
