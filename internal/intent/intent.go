package intent

import "strings"

// Intent is the closed set of conversation intents the pipeline routes on.
type Intent string

const (
	BookAppointment   Intent = "book_appointment"
	CheckAvailability Intent = "check_availability"
	ConfirmBooking    Intent = "confirm_booking"
	Cancel            Intent = "cancel"
	Unclear           Intent = "unclear"
)

// Normalize maps raw classifier output onto the closed set. Anything
// outside the set, including empty or multi-word output, becomes Unclear.
func Normalize(raw string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case BookAppointment:
		return BookAppointment
	case CheckAvailability:
		return CheckAvailability
	case ConfirmBooking:
		return ConfirmBooking
	case Cancel:
		return Cancel
	default:
		return Unclear
	}
}

// Route names the handler an intent dispatches to.
type Route int

const (
	// RouteAvailability checks the calendar and chains into suggestions.
	RouteAvailability Route = iota
	// RouteBooking confirms a slot and books it.
	RouteBooking
	// RouteCancellation lists upcoming events and cancels one.
	RouteCancellation
	// RouteSuggestion suggests from the current candidate set.
	RouteSuggestion
)

// RouteFor returns the handler for an intent. The mapping is fixed:
// booking requests and availability checks both go through the
// availability handler first so suggestions always reflect a fresh
// calendar query.
func RouteFor(in Intent) Route {
	switch in {
	case BookAppointment, CheckAvailability:
		return RouteAvailability
	case ConfirmBooking:
		return RouteBooking
	case Cancel:
		return RouteCancellation
	default:
		return RouteSuggestion
	}
}
