package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dayKeywords are scanned in this order; the first substring hit wins.
// Weekday names resolve to the next occurrence at or after today (today
// itself counts).
var dayKeywords = []string{
	"today", "tomorrow",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

var weekdayIndex = map[string]int{
	"monday": 0, "tuesday": 1, "wednesday": 2, "thursday": 3,
	"friday": 4, "saturday": 5, "sunday": 6,
}

var explicitDateRe = regexp.MustCompile(
	`(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2}),\s*(\d{4})`)

var monthIndex = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// anySlotKeywords broaden a request to the whole business day.
var anySlotKeywords = []string{"any slot", "any time", "whole day", "all day"}

// ParseDateRange extracts a half-open [start, end) range from free-form
// text. ok is false when the text names no date at all; the caller supplies
// its own default in that case. An explicit "June 26, 2025"-style date
// overwrites any weekday/today/tomorrow hit earlier in the text; that
// last-applied-wins precedence is deliberate.
//
// A malformed explicit date (day out of range for the month) is an error,
// never a panic; callers recover by falling back to their default range.
func ParseDateRange(text string, now time.Time) (start, end time.Time, ok bool, err error) {
	text = strings.ToLower(text)
	today := now.UTC().Truncate(24 * time.Hour)

	for _, kw := range dayKeywords {
		if !strings.Contains(text, kw) {
			continue
		}
		switch kw {
		case "today":
			start = today
		case "tomorrow":
			start = today.AddDate(0, 0, 1)
		default:
			// Go's Sunday=0 weekday mapped onto Monday=0.
			cur := (int(now.UTC().Weekday()) + 6) % 7
			ahead := (weekdayIndex[kw] - cur + 7) % 7
			start = today.AddDate(0, 0, ahead)
		}
		end = start.AddDate(0, 0, 1)
		ok = true
		break
	}

	if m := explicitDateRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		month := monthIndex[m[1]]
		d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		if d.Day() != day || d.Month() != month {
			return time.Time{}, time.Time{}, false,
				fmt.Errorf("invalid day of month: %s %d, %d", m[1], day, year)
		}
		start = d
		end = start.AddDate(0, 0, 1)
		ok = true
	}

	if ok && strings.Contains(text, "afternoon") {
		start, end = narrowTo(start, 12, 18)
	} else if containsAny(text, anySlotKeywords) {
		base := start
		if !ok {
			base = today.AddDate(0, 0, 1)
			ok = true
		}
		start, end = narrowTo(base, BusinessStartHour, BusinessEndHour)
	}

	return start, end, ok, nil
}

// DefaultRange is the fallback when no date is named: tomorrow through
// seven days out.
func DefaultRange(now time.Time) (time.Time, time.Time) {
	start := now.UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	return start, start.AddDate(0, 0, 7)
}

// narrowTo narrows a date's range to [fromHour, toHour) in the display
// zone on that date.
func narrowTo(date time.Time, fromHour, toHour int) (time.Time, time.Time) {
	local := date.In(displayZone)
	y, m, d := local.Date()
	start := time.Date(y, m, d, fromHour, 0, 0, 0, displayZone)
	end := time.Date(y, m, d, toHour, 0, 0, 0, displayZone)
	return start.UTC(), end.UTC()
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
