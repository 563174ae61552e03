// internal/types/models.go
package types

import (
	"time"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in a session's transcript. Turns are append-only;
// Seq is assigned by the store. Failed marks assistant turns that replaced a
// normal reply because something went wrong upstream.
type Turn struct {
	ID        TurnID    `json:"id"`
	SessionID SessionID `json:"session_id"`
	RunID     RunID     `json:"run_id,omitempty"`
	Seq       int64     `json:"seq"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Failed    bool      `json:"failed,omitempty"`
	Source    string    `json:"source"`
	At        time.Time `json:"at"`
}

type SessionIndex struct {
	SessionID   SessionID  `json:"session_id"`
	SessionKey  SessionKey `json:"session_key"`
	Status      string     `json:"status"`
	LastIntent  string     `json:"last_intent,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastRunID   RunID      `json:"last_run_id,omitempty"`
	LastTurnSeq int64      `json:"last_turn_seq"`
}

// InboundMessage is a user message arriving from a chat front end.
type InboundMessage struct {
	Source     string     `json:"source"`
	SessionKey SessionKey `json:"session_key"`
	UserID     string     `json:"user_id"`
	Text       string     `json:"text"`
}
