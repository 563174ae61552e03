package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeBackend struct {
	events   []Event
	inserted []Event
	deleted  []string
	err      error
}

func (f *fakeBackend) ListEvents(ctx context.Context, min, max time.Time) ([]Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []Event
	for _, ev := range f.events {
		if ev.Start.Before(max) && ev.End.After(min) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeBackend) InsertEvent(ctx context.Context, ev Event) (Event, error) {
	if f.err != nil {
		return Event{}, f.err
	}
	ev.ID = "evt-1"
	ev.Link = "https://calendar.example/evt-1"
	f.inserted = append(f.inserted, ev)
	return ev, nil
}

func (f *fakeBackend) DeleteEvent(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) ListUpcoming(ctx context.Context, limit int) ([]Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.events) > limit {
		return f.events[:limit], nil
	}
	return f.events, nil
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakeBackend{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q", body["status"])
	}
}

func TestAvailability(t *testing.T) {
	// Busy 08:30-09:30 UTC blocks the 08:30 and 09:00 UTC slots.
	backend := &fakeBackend{events: []Event{{
		ID:    "busy",
		Start: time.Date(2025, 6, 26, 8, 30, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 26, 9, 30, 0, 0, time.UTC),
	}}}
	srv := httptest.NewServer(NewServer(backend))
	defer srv.Close()

	// 03:30-12:30 UTC is 09:00-18:00 IST, a full business day.
	resp, err := http.Get(srv.URL + "/availability?start=2025-06-26T03:30:00Z&end=2025-06-26T12:30:00Z")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		AvailableSlots []string `json:"available_slots"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.AvailableSlots) != 16 {
		t.Errorf("expected 16 free slots, got %d: %v", len(body.AvailableSlots), body.AvailableSlots)
	}
	for _, s := range body.AvailableSlots {
		if s == "2025-06-26T08:30:00Z" || s == "2025-06-26T09:00:00Z" {
			t.Errorf("busy slot %s offered", s)
		}
	}
}

func TestAvailabilityRejectsInvertedRange(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakeBackend{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/availability?start=2025-06-26T12:00:00Z&end=2025-06-26T09:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("inverted range status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/availability?start=2025-06-26T09:00:00Z&end=2025-06-26T09:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("equal range status = %d, want 400", resp.StatusCode)
	}
}

func TestAvailabilityToleratesDecodedPlus(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakeBackend{}))
	defer srv.Close()

	// An unescaped "+05:30" offset arrives as " 05:30" after URL decoding.
	resp, err := http.Get(srv.URL + "/availability?start=2025-06-26T09:00:00+05:30&end=2025-06-26T18:00:00+05:30")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestBook(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(NewServer(backend))
	defer srv.Close()

	body := `{"start_time":"2025-06-26T08:30:00Z","end_time":"2025-06-26T09:00:00Z","summary":"Meeting","description":"Booked via slotbot"}`
	resp, err := http.Post(srv.URL+"/book", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out["message"], "Event created: ") {
		t.Errorf("message = %q", out["message"])
	}
	if len(backend.inserted) != 1 || backend.inserted[0].Summary != "Meeting" {
		t.Errorf("inserted = %+v", backend.inserted)
	}
}

func TestBookRejectsBadRange(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakeBackend{}))
	defer srv.Close()

	body := `{"start_time":"2025-06-26T09:00:00Z","end_time":"2025-06-26T08:30:00Z","summary":"x","description":""}`
	resp, err := http.Post(srv.URL+"/book", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCancel(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(NewServer(backend))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/cancel/evt-9", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out["message"] != "Event cancelled" {
		t.Errorf("message = %q", out["message"])
	}
	if len(backend.deleted) != 1 || backend.deleted[0] != "evt-9" {
		t.Errorf("deleted = %v", backend.deleted)
	}
}

func TestBackendErrorSurfacesAs500(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakeBackend{err: errors.New("upstream down")}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/availability?start=2025-06-26T09:00:00Z&end=2025-06-26T10:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}
