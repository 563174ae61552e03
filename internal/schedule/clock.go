package schedule

import (
	"regexp"
	"strconv"
	"strings"
)

var meridianRe = regexp.MustCompile(`(\d{1,2})(?::(\d{2}))?\s*(am|pm)`)
var clock24Re = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)

// genericTimeKeywords mark a request for anything available rather than a
// particular hour. The matcher's list differs slightly from the date
// parser's ("anytime" without a space shows up here).
var genericTimeKeywords = []string{"anytime", "any time", "any slot", "whole day", "all day"}

// MentionedHours extracts every "4pm" / "12:30 am" style mention from the
// text, converted to 24-hour clock. The scan is greedy: one message can
// name several hours.
func MentionedHours(text string) []int {
	var hours []int
	for _, m := range meridianRe.FindAllStringSubmatch(strings.ToLower(text), -1) {
		hour, _ := strconv.Atoi(m[1])
		hours = append(hours, to24Hour(hour, m[3]))
	}
	return hours
}

// ClockTime is a parsed wall-clock time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime pulls a single time-of-day out of free text, preferring an
// am/pm mention and falling back to a bare 24-hour "15:30" form. ok is
// false when the text names no recognizable time.
func ParseClockTime(text string) (ClockTime, bool) {
	text = strings.ToLower(text)
	if m := meridianRe.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		return ClockTime{Hour: to24Hour(hour, m[3]), Minute: minute}, true
	}
	if m := clock24Re.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 24 && minute < 60 {
			return ClockTime{Hour: hour, Minute: minute}, true
		}
	}
	return ClockTime{}, false
}

// WantsAnyTime reports whether the text asks for any available slot.
func WantsAnyTime(text string) bool {
	return containsAny(strings.ToLower(text), genericTimeKeywords)
}

func to24Hour(hour int, meridian string) int {
	if meridian == "pm" && hour != 12 {
		return hour + 12
	}
	if meridian == "am" && hour == 12 {
		return 0
	}
	return hour
}
