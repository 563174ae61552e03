// internal/calendar/server.go
package calendar

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/user/slotbot/internal/schedule"
)

// Server exposes the calendar facade over HTTP. The agent normally talks
// to it in-process, but it also runs standalone so the booking pipeline
// and the calendar credentials can live on separate hosts.
type Server struct {
	backend Backend
	mux     *http.ServeMux
}

// NewServer creates a calendar facade server over the given backend.
func NewServer(backend Backend) *Server {
	s := &Server{
		backend: backend,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /availability", s.handleAvailability)
	s.mux.HandleFunc("POST /book", s.handleBook)
	s.mux.HandleFunc("GET /upcoming-events", s.handleUpcoming)
	s.mux.HandleFunc("DELETE /cancel/", s.handleCancel)
	return s
}

// ServeHTTP delegates to the internal mux, implementing http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	start, err := schedule.ParseISO(r.URL.Query().Get("start"))
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"invalid start: %s"}`, err), http.StatusBadRequest)
		return
	}
	end, err := schedule.ParseISO(r.URL.Query().Get("end"))
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"invalid end: %s"}`, err), http.StatusBadRequest)
		return
	}
	if !start.Before(end) {
		http.Error(w, `{"error":"start must be before end"}`, http.StatusBadRequest)
		return
	}

	events, err := s.backend.ListEvents(r.Context(), start, end)
	if err != nil {
		slog.Error("list events failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	busy := make([]schedule.Interval, 0, len(events))
	for _, ev := range events {
		busy = append(busy, schedule.Interval{Start: ev.Start, End: ev.End})
	}

	slots := schedule.GenerateSlots(start, end, busy)
	out := make([]string, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slot.UTC().Format(time.RFC3339))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"available_slots": out})
}

// bookRequest is the JSON body for POST /book.
type bookRequest struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	start, err := schedule.ParseISO(req.StartTime)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"invalid start_time: %s"}`, err), http.StatusBadRequest)
		return
	}
	end, err := schedule.ParseISO(req.EndTime)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"invalid end_time: %s"}`, err), http.StatusBadRequest)
		return
	}
	if !start.Before(end) {
		http.Error(w, `{"error":"start_time must be before end_time"}`, http.StatusBadRequest)
		return
	}

	created, err := s.backend.InsertEvent(r.Context(), Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       start,
		End:         end,
	})
	if err != nil {
		slog.Error("insert event failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": fmt.Sprintf("Event created: %s", created.Link),
	})
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}

	events, err := s.backend.ListUpcoming(r.Context(), limit)
	if err != nil {
		slog.Error("list upcoming failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []Event{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]Event{"events": events})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/cancel/")
	if id == "" {
		http.Error(w, `{"error":"event id required"}`, http.StatusBadRequest)
		return
	}

	if err := s.backend.DeleteEvent(r.Context(), id); err != nil {
		slog.Error("delete event failed", "event_id", id, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Event cancelled"})
}
