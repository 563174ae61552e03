package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/user/slotbot/pkg/llm"
)

// Compile-time check that Client satisfies the Provider interface.
var _ llm.Provider = (*Client)(nil)

func TestCompleteSuccess(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(chatResponse{
			Choices: []choice{{Message: responseMessage{Role: "assistant", Content: "book_appointment"}}},
			Usage:   responseUsage{PromptTokens: 42, CompletionTokens: 3, TotalTokens: 45},
		})
	}))
	defer srv.Close()

	client := New(&llm.Config{
		BaseURL:   srv.URL,
		APIKey:    "test-key",
		Model:     "test-model",
		MaxTokens: 100,
	})

	resp, err := client.Complete(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "classify intent"},
		{Role: llm.RoleUser, Content: "I want to book a call tomorrow"},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q, want bearer token", gotAuth)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if gotReq.MaxTokens != 100 {
		t.Errorf("max_tokens = %d", gotReq.MaxTokens)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("unexpected request messages: %+v", gotReq.Messages)
	}
	if resp.Content != "book_appointment" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 45 {
		t.Errorf("total tokens = %d", resp.Usage.TotalTokens)
	}
}

func TestCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limit exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := New(&llm.Config{BaseURL: srv.URL, APIKey: "k"})
	_, err := client.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should include status code: %v", err)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer srv.Close()

	client := New(&llm.Config{BaseURL: srv.URL, APIKey: "k"})
	_, err := client.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestDefaults(t *testing.T) {
	client := New(&llm.Config{APIKey: "k"})
	if client.config.BaseURL != DefaultBaseURL {
		t.Errorf("base url = %q", client.config.BaseURL)
	}
	if client.config.Model != DefaultModel {
		t.Errorf("model = %q", client.config.Model)
	}
}
