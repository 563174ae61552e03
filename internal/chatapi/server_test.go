// internal/chatapi/server_test.go
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/slotbot/internal/state"
	"github.com/user/slotbot/internal/types"
)

func newTestServer(t *testing.T, handler ChatHandler) (*Server, *state.SessionStore, *state.TurnStore, *state.TaskStore) {
	t.Helper()
	dir := t.TempDir()
	sessions := state.NewSessionStore(dir)
	turns := state.NewTurnStore(dir)
	tasks := state.NewTaskStore(filepath.Join(dir, "tasks.json"))
	return NewServer(tasks, handler, sessions, turns), sessions, turns, tasks
}

func TestHealth(t *testing.T) {
	srv, _, _, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %q", resp["status"])
	}
}

func TestChat(t *testing.T) {
	var gotKey, gotMsg string
	srv, _, _, _ := newTestServer(t, func(sessionKey, message string) ([]string, error) {
		gotKey = sessionKey
		gotMsg = message
		return []string{"Available slots in Asia/Kolkata: ...", "How about 10:00 AM?"}, nil
	})

	body, _ := json.Marshal(map[string]string{
		"message":     "check availability tomorrow",
		"session_key": "web:alice",
	})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotKey != "web:alice" {
		t.Errorf("expected session key web:alice, got %q", gotKey)
	}
	if gotMsg != "check availability tomorrow" {
		t.Errorf("unexpected message: %q", gotMsg)
	}
	var resp map[string][]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp["replies"]) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(resp["replies"]))
	}
	if resp["replies"][1] != "How about 10:00 AM?" {
		t.Errorf("unexpected second reply: %q", resp["replies"][1])
	}
}

func TestChatMissingFields(t *testing.T) {
	srv, _, _, _ := newTestServer(t, func(string, string) ([]string, error) {
		t.Fatal("handler should not be called")
		return nil, nil
	})

	body, _ := json.Marshal(map[string]string{"message": "hi"})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestNamedTask(t *testing.T) {
	var gotKey, gotMsg string
	srv, _, _, tasks := newTestServer(t, func(sessionKey, message string) ([]string, error) {
		gotKey = sessionKey
		gotMsg = message
		return []string{"done"}, nil
	})

	err := tasks.Add(&state.Task{
		Name:       "morning-digest",
		Prompt:     "check availability today",
		SessionKey: "telegram:42:42",
		Enabled:    true,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/webhook/morning-digest", bytes.NewReader(nil))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotKey != "telegram:42:42" {
		t.Errorf("unexpected session key: %q", gotKey)
	}
	if gotMsg != "check availability today" {
		t.Errorf("unexpected prompt: %q", gotMsg)
	}
}

func TestNamedTaskPromptOverride(t *testing.T) {
	var gotMsg string
	srv, _, _, tasks := newTestServer(t, func(_, message string) ([]string, error) {
		gotMsg = message
		return []string{"done"}, nil
	})

	if err := tasks.Add(&state.Task{Name: "digest", Prompt: "default prompt", SessionKey: "web:x", Enabled: true}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	body, _ := json.Marshal(map[string]string{"prompt": "check availability friday"})
	req := httptest.NewRequest(http.MethodPost, "/webhook/digest", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotMsg != "check availability friday" {
		t.Errorf("expected override prompt, got %q", gotMsg)
	}
}

func TestNamedTaskDisabled(t *testing.T) {
	srv, _, _, tasks := newTestServer(t, func(string, string) ([]string, error) {
		t.Fatal("handler should not be called")
		return nil, nil
	})

	if err := tasks.Add(&state.Task{Name: "paused", Prompt: "p", SessionKey: "web:x", Enabled: false}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/webhook/paused", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestNamedTaskNotFound(t *testing.T) {
	srv, _, _, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhook/nope", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestAPISessions(t *testing.T) {
	srv, sessions, turns, _ := newTestServer(t, nil)
	ctx := context.Background()

	id, err := sessions.ResolveOrCreate(ctx, "telegram:1:1")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	for i := 0; i < 3; i++ {
		turn := &types.Turn{
			ID:        types.NewTurnID(),
			SessionID: id,
			Role:      types.RoleUser,
			Text:      "hello",
			Source:    "telegram",
			At:        time.Now().UTC(),
		}
		if err := turns.Append(ctx, turn); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp []sessionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected 1 session, got %d", len(resp))
	}
	if resp[0].SessionKey != "telegram:1:1" {
		t.Errorf("unexpected session key: %q", resp[0].SessionKey)
	}
	if resp[0].TurnCount != 3 {
		t.Errorf("expected 3 turns, got %d", resp[0].TurnCount)
	}
}

func TestAPISessionTurns(t *testing.T) {
	srv, sessions, turns, _ := newTestServer(t, nil)
	ctx := context.Background()

	id, err := sessions.ResolveOrCreate(ctx, "web:bob")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	texts := []string{"book a meeting", "Available slots in Asia/Kolkata: ..."}
	roles := []types.Role{types.RoleUser, types.RoleAssistant}
	for i := range texts {
		turn := &types.Turn{
			ID:        types.NewTurnID(),
			SessionID: id,
			Role:      roles[i],
			Text:      texts[i],
			Source:    "web",
			At:        time.Now().UTC(),
		}
		if err := turns.Append(ctx, turn); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+string(id)+"/turns", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp []*types.Turn
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(resp))
	}
	if resp[0].Text != "book a meeting" {
		t.Errorf("unexpected first turn: %q", resp[0].Text)
	}
	if resp[1].Role != types.RoleAssistant {
		t.Errorf("unexpected second role: %q", resp[1].Role)
	}
}

func TestAPISessionTurnsBadPath(t *testing.T) {
	srv, _, _, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/abc/nope", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
