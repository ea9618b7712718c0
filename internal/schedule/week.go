package schedule

import "time"

// DaysPerWeek is the width of the weekly browsing window.
const DaysPerWeek = 7

// WeekStart returns the most recent date on or before date that falls on
// first.
func WeekStart(date time.Time, first time.Weekday) time.Time {
	back := (int(date.Weekday()) - int(first) + DaysPerWeek) % DaysPerWeek
	y, m, d := date.Date()
	return time.Date(y, m, d-back, 0, 0, 0, 0, date.Location())
}

// WeekDates returns the seven consecutive YYYY-MM-DD dates starting at start.
func WeekDates(start time.Time) []string {
	y, m, d := start.Date()
	out := make([]string, DaysPerWeek)
	for i := range out {
		out[i] = time.Date(y, m, d+i, 0, 0, 0, 0, start.Location()).Format(DateLayout)
	}
	return out
}
