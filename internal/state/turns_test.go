package state

import (
	"context"
	"fmt"
	"testing"

	"github.com/user/slotbot/internal/types"
)

func TestAppendAssignsSequence(t *testing.T) {
	store := NewTurnStore(t.TempDir())
	ctx := context.Background()
	sid := types.NewSessionID()

	for i := 0; i < 3; i++ {
		turn := &types.Turn{
			ID:        types.NewTurnID(),
			SessionID: sid,
			Role:      types.RoleUser,
			Text:      fmt.Sprintf("message %d", i),
		}
		if err := store.Append(ctx, turn); err != nil {
			t.Fatal(err)
		}
		if turn.Seq != int64(i+1) {
			t.Errorf("turn %d assigned seq %d", i, turn.Seq)
		}
	}

	count, err := store.Count(ctx, sid)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("Count = %d, want 3", count)
	}
}

func TestTailReturnsLastN(t *testing.T) {
	store := NewTurnStore(t.TempDir())
	ctx := context.Background()
	sid := types.NewSessionID()

	for i := 0; i < 10; i++ {
		role := types.RoleUser
		if i%2 == 1 {
			role = types.RoleAssistant
		}
		err := store.Append(ctx, &types.Turn{
			ID:        types.NewTurnID(),
			SessionID: sid,
			Role:      role,
			Text:      fmt.Sprintf("turn %d", i),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	turns, err := store.Tail(ctx, sid, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 4 {
		t.Fatalf("Tail = %d turns, want 4", len(turns))
	}
	if turns[0].Text != "turn 6" || turns[3].Text != "turn 9" {
		t.Errorf("wrong tail window: first=%q last=%q", turns[0].Text, turns[3].Text)
	}
}

func TestTailMissingSession(t *testing.T) {
	store := NewTurnStore(t.TempDir())

	turns, err := store.Tail(context.Background(), types.NewSessionID(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if turns != nil {
		t.Errorf("expected nil for missing session, got %d turns", len(turns))
	}
}
