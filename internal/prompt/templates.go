package prompt

import (
	"fmt"
	"strings"
)

// The templates below drive each stage of the booking pipeline. Wording
// matters: the classifier template demands a single-word answer, and the
// suggestion template restates the time-preference rules so the model's
// phrasing stays consistent with the deterministic slot filtering.

const intentTemplate = `You are a conversational AI agent for booking appointments in India. Based on the user's message, identify their intent and return only the intent keyword. Possible intents are:
- book_appointment
- check_availability
- confirm_booking
- cancel
- unclear

User message: %s
Current conversation: %s

Respond with a single word: the identified intent.`

const suggestionTemplate = `You are a conversational AI agent for booking appointments in India. Suggest up to 5 available time slots in Asia/Kolkata time zone, formatted as human-readable dates/times (e.g., "June 26, 2025, 2:00 PM"). If the user specifies specific times (e.g., "4 PM", "12 PM", "7 PM") or requests 'any slot', 'anytime', 'whole day', or 'all day', prioritize checking those times first and then provide all available slots for the day between 9 AM and 6 PM if no exact match is found. Avoid repeating previous suggestions.

User message: %s
Available slots (Asia/Kolkata): %s
Current conversation: %s

Respond with a natural language message suggesting up to 5 time slots or asking for clarification if needed.`

const confirmationTemplate = `You are a conversational AI agent in India. Confirm the booking details in Asia/Kolkata time zone, formatted as human-readable (e.g., "June 26, 2025, 2:00 PM").

Example output:
"Your appointment is confirmed for %[1]s (Asia/Kolkata). Thank you for booking!"

Selected slot: %[1]s
User message: %[2]s
Current conversation: %[3]s

Respond with a confirmation message including the booking details.`

// Intent renders the single-word classification prompt.
func Intent(message, history string) string {
	return fmt.Sprintf(intentTemplate, message, history)
}

// Suggestion renders the slot-suggestion prompt over formatted slot strings.
func Suggestion(message string, slots []string, history string) string {
	return fmt.Sprintf(suggestionTemplate, message, strings.Join(slots, ", "), history)
}

// Confirmation renders the booking-confirmation prompt for a chosen slot.
func Confirmation(slot, message, history string) string {
	return fmt.Sprintf(confirmationTemplate, slot, message, history)
}
