package agent

import "fmt"

// FailureKind is the closed set of ways a handler can fail. Handlers
// return a *Failure instead of free-form errors; only the orchestrator's
// outermost boundary converts one into a user-facing turn.
type FailureKind int

const (
	// ParseFailure means free-form text could not be understood. Date
	// parsing recovers with a default range, so this rarely surfaces.
	ParseFailure FailureKind = iota
	// UpstreamUnavailable means the calendar or the model could not be
	// reached or returned an error.
	UpstreamUnavailable
	// EmptyResult means the operation succeeded but there is nothing to
	// act on: no free slots, no upcoming bookings.
	EmptyResult
	// AmbiguousSelection means the user must pick an option before the
	// side effect can run.
	AmbiguousSelection
)

func (k FailureKind) String() string {
	switch k {
	case ParseFailure:
		return "parse_failure"
	case UpstreamUnavailable:
		return "upstream_unavailable"
	case EmptyResult:
		return "empty_result"
	case AmbiguousSelection:
		return "ambiguous_selection"
	default:
		return "unknown"
	}
}

// Failure is a handler error carrying its kind and the exact text to show
// the user.
type Failure struct {
	Kind     FailureKind
	UserText string
	Err      error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	}
	return f.Kind.String()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// upstream wraps an upstream error with the standard apology.
func upstream(err error) *Failure {
	return &Failure{
		Kind:     UpstreamUnavailable,
		UserText: "Sorry, something went wrong processing your message. Please try again.",
		Err:      err,
	}
}

// emptyResult reports a specific nothing-to-act-on message.
func emptyResult(userText string) *Failure {
	return &Failure{Kind: EmptyResult, UserText: userText}
}

// ambiguous asks the user to pick before proceeding.
func ambiguous(userText string) *Failure {
	return &Failure{Kind: AmbiguousSelection, UserText: userText}
}
