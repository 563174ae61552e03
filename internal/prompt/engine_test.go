package prompt

import (
	"strings"
	"testing"

	"github.com/user/slotbot/internal/types"
)

func TestNewEngine(t *testing.T) {
	e, err := New("gpt-4", 128000, 4096)
	if err != nil {
		t.Fatal(err)
	}
	if e == nil {
		t.Fatal("expected non-nil engine")
	}
}

func TestHistory(t *testing.T) {
	e, err := New("gpt-4", 128000, 4096)
	if err != nil {
		t.Fatal(err)
	}

	turns := []*types.Turn{
		{Role: types.RoleUser, Text: "book me a slot"},
		{Role: types.RoleAssistant, Text: "sure, when?"},
		{Role: types.RoleUser, Text: "tomorrow"},
	}
	got := e.History(turns)
	want := "book me a slot\nsure, when?\ntomorrow"
	if got != want {
		t.Errorf("History = %q, want %q", got, want)
	}

	if e.History(nil) != "" {
		t.Error("nil turns should render empty history")
	}
}

func TestHistoryTrimsOldestFirst(t *testing.T) {
	// Tiny budget so most turns get dropped.
	e, err := New("gpt-4", 200, 100)
	if err != nil {
		t.Fatal(err)
	}

	turns := make([]*types.Turn, 50)
	for i := range turns {
		turns[i] = &types.Turn{
			Seq:  int64(i + 1),
			Role: types.RoleUser,
			Text: "This is a message that takes up tokens in the context window budget.",
		}
	}
	turns[len(turns)-1].Text = "newest message"

	got := e.History(turns)

	lines := strings.Split(got, "\n")
	if len(lines) >= 50 {
		t.Fatalf("expected truncation, got %d lines for 50 turns", len(lines))
	}
	// The newest turn must survive trimming.
	if lines[len(lines)-1] != "newest message" {
		t.Errorf("newest turn was trimmed, last line = %q", lines[len(lines)-1])
	}
}

func TestTemplates(t *testing.T) {
	got := Intent("book a call", "hi\nhello!")
	for _, want := range []string{"book_appointment", "check_availability", "confirm_booking", "cancel", "unclear", "book a call", "single word"} {
		if !strings.Contains(got, want) {
			t.Errorf("intent prompt missing %q", want)
		}
	}

	got = Suggestion("anytime tomorrow", []string{"June 26, 2025, 2:00 PM", "June 26, 2025, 2:30 PM"}, "")
	if !strings.Contains(got, "June 26, 2025, 2:00 PM, June 26, 2025, 2:30 PM") {
		t.Errorf("suggestion prompt should join slots with commas:\n%s", got)
	}

	got = Confirmation("June 26, 2025, 2:00 PM", "yes book it", "history")
	if strings.Count(got, "June 26, 2025, 2:00 PM") < 2 {
		t.Error("confirmation prompt should repeat the slot in example and field")
	}
}
