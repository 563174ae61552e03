package schedule

import "time"

// Interval is a half-open [Start, End) span of busy calendar time.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the interval intersects [start, end) at all;
// any partial overlap counts.
func (iv Interval) Overlaps(start, end time.Time) bool {
	return iv.Start.Before(end) && iv.End.After(start)
}

// GenerateSlots walks [start, end) at a fixed 30-minute stride beginning
// exactly at start and keeps every instant that falls inside business hours
// and intersects no busy interval. No realignment to a half-hour grid is
// performed; by caller convention start is already grid-aligned. Output is
// ascending and stable.
func GenerateSlots(start, end time.Time, busy []Interval) []time.Time {
	var slots []time.Time
	for cur := start; cur.Before(end); cur = cur.Add(SlotDuration) {
		if !InBusinessHours(cur) {
			continue
		}
		slotEnd := cur.Add(SlotDuration)
		free := true
		for _, iv := range busy {
			if iv.Overlaps(cur, slotEnd) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, cur)
		}
	}
	return slots
}

// BusinessHourSlots filters a slot list down to business hours.
func BusinessHourSlots(slots []time.Time) []time.Time {
	var out []time.Time
	for _, s := range slots {
		if InBusinessHours(s) {
			out = append(out, s)
		}
	}
	return out
}
