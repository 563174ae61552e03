package state

import (
	"path/filepath"
	"testing"
)

func TestTaskStoreAddGetRemove(t *testing.T) {
	store := NewTaskStore(filepath.Join(t.TempDir(), "tasks.json"))

	task := &Task{
		Name:       "morning-digest",
		Prompt:     "What are my upcoming appointments?",
		Schedule:   "0 8 * * *",
		SessionKey: "telegram:1:1",
		Enabled:    true,
	}
	if err := store.Add(task); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(task); err == nil {
		t.Error("expected duplicate name to fail")
	}

	got, err := store.Get("morning-digest")
	if err != nil {
		t.Fatal(err)
	}
	if got.Schedule != "0 8 * * *" {
		t.Errorf("schedule = %q", got.Schedule)
	}

	if err := store.SetEnabled("morning-digest", false); err != nil {
		t.Fatal(err)
	}
	got, err = store.Get("morning-digest")
	if err != nil {
		t.Fatal(err)
	}
	if got.Enabled {
		t.Error("task should be disabled")
	}

	if err := store.Remove("morning-digest"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get("morning-digest"); err == nil {
		t.Error("expected error after removal")
	}
}

func TestTaskStoreEmptyFile(t *testing.T) {
	store := NewTaskStore(filepath.Join(t.TempDir(), "tasks.json"))

	tasks, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected empty list, got %d", len(tasks))
	}

	if err := store.Remove("nope"); err == nil {
		t.Error("expected error removing from empty store")
	}
}
