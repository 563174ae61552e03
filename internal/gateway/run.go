package gateway

import (
	"context"
	"time"

	"github.com/user/slotbot/internal/types"
)

// RunStatus represents the lifecycle state of a Run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run tracks a single execution of an inbound message against a session.
// OnComplete is invoked once per reply turn the pipeline produces.
type Run struct {
	ID         types.RunID
	SessionID  types.SessionID
	Message    *types.InboundMessage
	Status     RunStatus
	CreatedAt  time.Time
	StartedAt  *time.Time
	EndedAt    *time.Time
	Error      error
	Ctx        context.Context
	OnComplete func(reply string)
}

// NewRun creates a Run in the Queued state for the given session and message.
func NewRun(sessionID types.SessionID, msg *types.InboundMessage) *Run {
	return &Run{
		ID:        types.NewRunID(),
		SessionID: sessionID,
		Message:   msg,
		Status:    RunStatusQueued,
		CreatedAt: time.Now(),
	}
}
