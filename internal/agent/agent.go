// Package agent implements the conversation orchestrator: one linear pass
// per incoming message from intent classification through the handler that
// produces the reply turns.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/user/slotbot/internal/calendar"
	"github.com/user/slotbot/internal/intent"
	"github.com/user/slotbot/internal/match"
	"github.com/user/slotbot/internal/prompt"
	"github.com/user/slotbot/internal/schedule"
	"github.com/user/slotbot/internal/types"
	"github.com/user/slotbot/pkg/llm"
)

// BookingSummary and BookingDescription fill the calendar event created
// for a confirmed booking.
const (
	BookingSummary     = "Meeting"
	BookingDescription = "Booked via slotbot"
)

// historyLimit bounds how many transcript turns a run loads.
const historyLimit = 20

// CalendarService is the slice of the calendar facade the orchestrator
// consumes. Both the HTTP client and the in-process facade satisfy it.
type CalendarService interface {
	Availability(ctx context.Context, start, end time.Time) ([]time.Time, error)
	Book(ctx context.Context, start, end time.Time, summary, description string) (string, error)
	Upcoming(ctx context.Context, limit int) ([]calendar.Event, error)
	Cancel(ctx context.Context, id string) error
}

// Orchestrator sequences a single message through classify, dispatch, and
// the chosen handler. All collaborators arrive via the constructor; there
// is no ambient state.
type Orchestrator struct {
	sessions   types.SessionStore
	turns      types.TurnStore
	slots      types.SlotStore
	provider   llm.Provider
	classifier *intent.Classifier
	engine     *prompt.Engine
	cal        CalendarService
	logger     *slog.Logger
	now        func() time.Time
}

// New creates an orchestrator.
func New(
	sessions types.SessionStore,
	turns types.TurnStore,
	slots types.SlotStore,
	provider llm.Provider,
	engine *prompt.Engine,
	cal CalendarService,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		sessions:   sessions,
		turns:      turns,
		slots:      slots,
		provider:   provider,
		classifier: intent.NewClassifier(provider, logger),
		engine:     engine,
		cal:        cal,
		logger:     logger,
		now:        time.Now,
	}
}

// ProcessMessage runs one full pass for an inbound message and returns the
// assistant turns produced. Failures never escape: every failure path
// appends an assistant turn and the session keeps accepting input.
func (o *Orchestrator) ProcessMessage(ctx context.Context, runID types.RunID, msg *types.InboundMessage) ([]*types.Turn, error) {
	sessionID, err := o.sessions.ResolveOrCreate(ctx, msg.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	userTurn := &types.Turn{
		ID:        types.NewTurnID(),
		SessionID: sessionID,
		RunID:     runID,
		Role:      types.RoleUser,
		Text:      msg.Text,
		Source:    msg.Source,
		At:        o.now(),
	}
	if err := o.turns.Append(ctx, userTurn); err != nil {
		return nil, fmt.Errorf("append user turn: %w", err)
	}

	replies, failed := o.reply(ctx, sessionID, msg.Text)

	out := make([]*types.Turn, 0, len(replies))
	for _, text := range replies {
		turn := &types.Turn{
			ID:        types.NewTurnID(),
			SessionID: sessionID,
			RunID:     runID,
			Role:      types.RoleAssistant,
			Text:      text,
			Failed:    failed,
			Source:    "agent",
			At:        o.now(),
		}
		if err := o.turns.Append(ctx, turn); err != nil {
			return nil, fmt.Errorf("append assistant turn: %w", err)
		}
		out = append(out, turn)
	}

	if sess, err := o.sessions.Get(ctx, sessionID); err == nil {
		sess.LastRunID = runID
		if len(out) > 0 {
			sess.LastTurnSeq = out[len(out)-1].Seq
		}
		if err := o.sessions.Update(ctx, sess); err != nil {
			o.logger.Warn("update session failed", "session_id", sessionID, "error", err)
		}
	}

	return out, nil
}

// reply classifies and dispatches. The bool reports whether the replies
// came from a failure path.
func (o *Orchestrator) reply(ctx context.Context, sessionID types.SessionID, text string) ([]string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))

	// Greeting short-circuit: no model call, runs before classification.
	if greeting, ok := o.greet(normalized); ok {
		return []string{greeting}, false
	}

	history := o.history(ctx, sessionID)
	in := o.classifier.Classify(ctx, normalized, history)
	o.recordIntent(ctx, sessionID, in)

	var (
		replies []string
		err     error
	)
	switch intent.RouteFor(in) {
	case intent.RouteAvailability:
		replies, err = o.availability(ctx, sessionID, normalized, history)
	case intent.RouteBooking:
		replies, err = o.booking(ctx, sessionID, normalized, history)
	case intent.RouteCancellation:
		replies, err = o.cancellation(ctx, sessionID, normalized)
	default:
		replies, err = o.suggestion(ctx, sessionID, normalized, history)
	}

	if err != nil {
		if f, ok := err.(*Failure); ok {
			if f.Kind == UpstreamUnavailable {
				o.logger.Error("handler failed", "intent", string(in), "kind", f.Kind.String(), "error", f.Err)
			}
			return []string{f.UserText}, f.Kind == UpstreamUnavailable || f.Kind == ParseFailure
		}
		o.logger.Error("handler failed", "intent", string(in), "error", err)
		return []string{"Sorry, something went wrong processing your message. Please try again."}, true
	}
	return replies, false
}

// greet intercepts messages that are nothing but a greeting. A greeting
// followed by real content ("hi, show me slots friday") flows to the
// router instead.
func (o *Orchestrator) greet(text string) (string, bool) {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z')
	})
	if len(words) == 0 {
		return "", false
	}

	if len(words) == 2 && words[0] == "good" && words[1] == "morning" {
		if o.now().In(schedule.DisplayZone()).Hour() < 12 {
			return "Good morning!", true
		}
		return "", false
	}

	hasGreeting := false
	for _, word := range words {
		switch word {
		case "hi", "hello", "hey":
			hasGreeting = true
		case "there":
			// filler, as in "hi there"
		default:
			return "", false
		}
	}
	if hasGreeting {
		return "Hi!", true
	}
	return "", false
}

// availability fetches free slots for the parsed (or default) range,
// replaces the session's candidate set, and chains into suggestion.
func (o *Orchestrator) availability(ctx context.Context, sessionID types.SessionID, text, history string) ([]string, error) {
	start, end, ok, err := schedule.ParseDateRange(text, o.now())
	if err != nil {
		o.logger.Warn("date parse failed, using default range", "error", err)
	}
	if err != nil || !ok {
		start, end = schedule.DefaultRange(o.now())
	}

	slots, err := o.cal.Availability(ctx, start, end)
	if err != nil {
		return nil, upstream(err)
	}

	if err := o.slots.Put(ctx, sessionID, slots); err != nil {
		return nil, fmt.Errorf("store slots: %w", err)
	}

	if len(slots) == 0 {
		return nil, emptyResult("No available slots found. Please try a different time or date.")
	}

	formatted := formatSlots(slots, match.PresentationCap)
	availabilityMsg := "Available slots in Asia/Kolkata: " + strings.Join(formatted, ", ")

	suggested, err := o.suggestion(ctx, sessionID, text, history)
	if err != nil {
		if f, ok := err.(*Failure); ok {
			// The availability listing still goes out; the failure text
			// replaces only the suggestion turn.
			return []string{availabilityMsg, f.UserText}, nil
		}
		return nil, err
	}
	return append([]string{availabilityMsg}, suggested...), nil
}

// suggestion narrows the stored candidate set against the message and asks
// the model to phrase the offer.
func (o *Orchestrator) suggestion(ctx context.Context, sessionID types.SessionID, text, history string) ([]string, error) {
	slots, err := o.slots.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}
	if len(slots) == 0 {
		return nil, emptyResult("No available slots found. Please try a different time or date.")
	}

	candidates := match.Suggest(slots, text)
	if len(candidates) == 0 {
		return nil, emptyResult("No matching slots found. Would you like to see other time ranges?")
	}

	formatted := formatSlots(candidates, match.PresentationCap)
	resp, err := o.provider.Complete(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: prompt.Suggestion(text, formatted, history)},
	})
	if err != nil {
		return nil, upstream(err)
	}
	return []string{strings.TrimSpace(resp.Content)}, nil
}

// booking resolves the selected slot, confirms it through the model, and
// books it on the calendar.
func (o *Orchestrator) booking(ctx context.Context, sessionID types.SessionID, text, history string) ([]string, error) {
	slots, err := o.slots.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}

	slot, ok := match.SelectSlot(slots, text, match.ModeBooking)
	if !ok {
		return nil, emptyResult("No available slots to confirm. Please check availability first.")
	}

	resp, err := o.provider.Complete(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: prompt.Confirmation(schedule.FormatSlot(slot), text, history)},
	})
	if err != nil {
		return nil, upstream(err)
	}

	msg, err := o.cal.Book(ctx, slot, slot.Add(schedule.SlotDuration), BookingSummary, BookingDescription)
	if err != nil {
		return nil, upstream(err)
	}

	return []string{strings.TrimSpace(resp.Content), "Booking confirmed: " + msg}, nil
}

// cancellation lists upcoming events and cancels the one the user picked.
// With no pick it re-prompts with the enumerated list; it never defaults.
func (o *Orchestrator) cancellation(ctx context.Context, sessionID types.SessionID, text string) ([]string, error) {
	events, err := o.cal.Upcoming(ctx, 10)
	if err != nil {
		return nil, upstream(err)
	}
	if len(events) == 0 {
		return nil, emptyResult("No upcoming bookings found.")
	}

	lines := make([]string, len(events))
	for i, ev := range events {
		lines[i] = fmt.Sprintf("%d. %s at %s", i+1, ev.Summary, schedule.FormatSlot(ev.Start))
	}
	list := strings.Join(lines, "\n")

	idx, ok := match.SelectIndex(text, len(events))
	if !ok {
		if !strings.Contains(text, "select") {
			return nil, ambiguous("Please select an event to cancel:\n" + list)
		}
		return nil, ambiguous("Please specify the event number to cancel:\n" + list)
	}

	target := events[idx]
	if err := o.cal.Cancel(ctx, target.ID); err != nil {
		return nil, upstream(err)
	}

	return []string{fmt.Sprintf("Cancelled booking: %s at %s", target.Summary, schedule.FormatSlot(target.Start))}, nil
}

// history renders the budget-trimmed transcript, excluding the turn just
// appended for the current message.
func (o *Orchestrator) history(ctx context.Context, sessionID types.SessionID) string {
	tail, err := o.turns.Tail(ctx, sessionID, historyLimit)
	if err != nil {
		o.logger.Warn("load transcript failed", "session_id", sessionID, "error", err)
		return ""
	}
	if len(tail) > 0 {
		tail = tail[:len(tail)-1]
	}
	return o.engine.History(tail)
}

func (o *Orchestrator) recordIntent(ctx context.Context, sessionID types.SessionID, in intent.Intent) {
	sess, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		return
	}
	sess.LastIntent = string(in)
	if err := o.sessions.Update(ctx, sess); err != nil {
		o.logger.Warn("record intent failed", "session_id", sessionID, "error", err)
	}
}

func formatSlots(slots []time.Time, limit int) []string {
	if len(slots) > limit {
		slots = slots[:limit]
	}
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = schedule.FormatSlot(s)
	}
	return out
}
