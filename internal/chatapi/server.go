// internal/chatapi/server.go
package chatapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/user/slotbot/internal/state"
	"github.com/user/slotbot/internal/types"
)

// ChatHandler processes a message within the given session and returns the
// assistant replies, in order.
type ChatHandler func(sessionKey, message string) ([]string, error)

// Server is the HTTP front end for web chat, named webhook tasks, and the
// debug API.
type Server struct {
	store    *state.TaskStore
	handler  ChatHandler
	sessions types.SessionStore
	turns    types.TurnStore
	mux      *http.ServeMux
}

// NewServer creates a chat API server with the given task store, handler
// callback, and stores.
func NewServer(store *state.TaskStore, handler ChatHandler, sessions types.SessionStore, turns types.TurnStore) *Server {
	s := &Server{
		store:    store,
		handler:  handler,
		sessions: sessions,
		turns:    turns,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /chat", s.handleChat)
	s.mux.HandleFunc("POST /webhook/", s.handleNamedTask)
	s.mux.HandleFunc("GET /api/sessions", s.handleAPISessions)
	s.mux.HandleFunc("GET /api/sessions/", s.handleAPISessionTurns)
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

// chatRequest is the JSON body for POST /chat.
type chatRequest struct {
	Message    string `json:"message"`
	SessionKey string `json:"session_key"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	if req.Message == "" || req.SessionKey == "" {
		http.Error(w, `{"error":"message and session_key are required"}`, http.StatusBadRequest)
		return
	}

	replies, err := s.handler(req.SessionKey, req.Message)
	if err != nil {
		slog.Error("chat handler failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"replies": replies})
}

// namedTaskRequest is the optional JSON body for POST /webhook/{name}.
type namedTaskRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleNamedTask(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/webhook/")
	if name == "" {
		http.Error(w, `{"error":"task name required"}`, http.StatusBadRequest)
		return
	}

	task, err := s.store.Get(name)
	if err != nil {
		http.Error(w, `{"error":"task not found"}`, http.StatusNotFound)
		return
	}

	if !task.Enabled {
		http.Error(w, `{"error":"task is disabled"}`, http.StatusForbidden)
		return
	}

	prompt := task.Prompt
	sessionKey := task.SessionKey

	// Allow body to override the prompt
	var body namedTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Prompt != "" {
		prompt = body.Prompt
	}

	replies, err := s.handler(sessionKey, prompt)
	if err != nil {
		slog.Error("webhook task handler failed", "task", name, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"replies": replies})
}

type sessionResponse struct {
	SessionID  string `json:"session_id"`
	SessionKey string `json:"session_key"`
	Status     string `json:"status"`
	LastIntent string `json:"last_intent,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	TurnCount  int64  `json:"turn_count"`
}

func (s *Server) handleAPISessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		slog.Error("list sessions failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})

	result := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		count, err := s.turns.Count(ctx, sess.SessionID)
		if err != nil {
			slog.Warn("count turns failed", "session_id", sess.SessionID, "error", err)
		}
		result = append(result, sessionResponse{
			SessionID:  string(sess.SessionID),
			SessionKey: string(sess.SessionKey),
			Status:     sess.Status,
			LastIntent: sess.LastIntent,
			CreatedAt:  sess.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			UpdatedAt:  sess.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
			TurnCount:  count,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *Server) handleAPISessionTurns(w http.ResponseWriter, r *http.Request) {
	// Path: /api/sessions/{id}/turns
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) < 2 || parts[1] != "turns" {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	sessionID := types.SessionID(parts[0])

	limit := 200
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}

	turns, err := s.turns.Tail(r.Context(), sessionID, limit)
	if err != nil {
		slog.Error("tail turns failed", "session_id", sessionID, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	if turns == nil {
		turns = []*types.Turn{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(turns)
}
