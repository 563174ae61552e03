package delivery

import "testing"

func TestDeliverMatchesPrefix(t *testing.T) {
	reg := NewRegistry()

	var gotKey, gotMsg string
	reg.Register("telegram:", func(sessionKey, message string) error {
		gotKey = sessionKey
		gotMsg = message
		return nil
	})

	if err := reg.Deliver("telegram:42:42", "digest ready"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "telegram:42:42" {
		t.Errorf("unexpected session key: %q", gotKey)
	}
	if gotMsg != "digest ready" {
		t.Errorf("unexpected message: %q", gotMsg)
	}
}

func TestDeliverNoHandler(t *testing.T) {
	reg := NewRegistry()
	reg.Register("telegram:", func(string, string) error { return nil })

	if err := reg.Deliver("web:alice", "hello"); err == nil {
		t.Error("expected error for unregistered prefix")
	}
}
