// Package schedule implements the date/time expression parsing, slot
// arithmetic, and formatting used by the booking pipeline. Instants are
// carried in UTC; anything user-facing is rendered in the display zone.
package schedule

import "time"

// Business hours bound slot generation: slots start at or after
// BusinessStartHour and strictly before BusinessEndHour, display-zone local.
const (
	BusinessStartHour = 9
	BusinessEndHour   = 18
)

// SlotDuration is the fixed length of a bookable slot.
const SlotDuration = 30 * time.Minute

// displayZone is Asia/Kolkata. The tzdata lookup can fail on stripped-down
// hosts, so fall back to the fixed +05:30 offset, which is equivalent
// (India has no DST).
var displayZone = loadDisplayZone()

func loadDisplayZone() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}

// DisplayZone returns the fixed zone used for all user-facing rendering.
func DisplayZone() *time.Location {
	return displayZone
}

// FormatSlot renders an instant for users, e.g. "June 26, 2025, 2:00 PM".
func FormatSlot(t time.Time) string {
	return t.In(displayZone).Format("January 2, 2006, 3:04 PM")
}

// InBusinessHours reports whether the instant's display-zone hour falls
// inside business hours.
func InBusinessHours(t time.Time) bool {
	h := t.In(displayZone).Hour()
	return h >= BusinessStartHour && h < BusinessEndHour
}
