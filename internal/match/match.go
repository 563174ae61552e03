// Package match narrows and resolves candidate slots against free-form
// user text: suggestion mode ranks what to show, selection mode picks the
// one slot (or event) a booking or cancellation refers to.
package match

import (
	"strconv"
	"strings"
	"time"

	"github.com/user/slotbot/internal/schedule"
)

// PresentationCap bounds how many slots are surfaced to the user at once.
// It is a presentation policy only; everything in the candidate set stays
// matchable and bookable.
const PresentationCap = 5

// Suggest returns the slots to present for the given text, in candidate
// order. Hour mentions ("4pm", "12:30 pm") build a priority subset that
// replaces the full set when non-empty. With no mention, a generic
// "anytime" request falls back to business-hour slots; otherwise the full
// set is returned unmodified. Callers apply PresentationCap when rendering.
func Suggest(slots []time.Time, text string) []time.Time {
	hours := schedule.MentionedHours(text)
	if len(hours) > 0 {
		var priority []time.Time
		for _, slot := range slots {
			local := slot.In(schedule.DisplayZone())
			for _, h := range hours {
				if local.Hour() == h {
					priority = append(priority, slot)
					break
				}
			}
		}
		if len(priority) > 0 {
			return priority
		}
	}
	if schedule.WantsAnyTime(text) {
		return schedule.BusinessHourSlots(slots)
	}
	return slots
}

// Mode selects the fallback behavior when no index or time resolves.
type Mode int

const (
	// ModeBooking defaults to the first candidate. A message with no
	// numeric or time content therefore books whatever slot happens to be
	// first; kept intentionally, pending product review.
	ModeBooking Mode = iota
	// ModeCancel refuses to guess; the caller re-prompts instead.
	ModeCancel
)

// SelectSlot resolves a single slot from text against an ordered candidate
// list. Resolution order: 1-based index mention, then a fuzzy time-of-day
// match (hour exact, minute within 15), then the mode's fallback. ok is
// false when nothing resolves and the mode does not default.
func SelectSlot(slots []time.Time, text string, mode Mode) (time.Time, bool) {
	if len(slots) == 0 {
		return time.Time{}, false
	}

	if i, ok := SelectIndex(text, len(slots)); ok {
		return slots[i], true
	}

	if ct, ok := schedule.ParseClockTime(text); ok {
		for _, slot := range slots {
			local := slot.In(schedule.DisplayZone())
			if local.Hour() == ct.Hour && absInt(local.Minute()-ct.Minute) <= 15 {
				return slot, true
			}
		}
	}

	if mode == ModeBooking {
		return slots[0], true
	}
	return time.Time{}, false
}

// SelectIndex finds a 1-based index reference in the text: a bare number,
// "slot N", or "first" for index 1. Returns the 0-based index.
func SelectIndex(text string, n int) (int, bool) {
	text = strings.ToLower(text)
	for i := 1; i <= n; i++ {
		num := strconv.Itoa(i)
		if strings.Contains(text, num) || strings.Contains(text, "slot "+num) {
			return i - 1, true
		}
		if i == 1 && strings.Contains(text, "first") {
			return 0, true
		}
	}
	return 0, false
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
