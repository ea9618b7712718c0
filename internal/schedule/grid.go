// Package schedule holds the pure time arithmetic of the booking engine:
// the half-hour slot grid, interval overlap, and date/timestamp parsing.
package schedule

import (
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/room-booking/internal/model"
)

// SlotMinutes is the fixed length of a bookable slot.
const SlotMinutes = 30

// DateLayout is the calendar date format used for every date key.
const DateLayout = "2006-01-02"

// Labels returns the "HH:MM" start label of every half-hour in [open, close).
func Labels(openHour, closeHour int) []string {
	out := make([]string, 0, 2*(closeHour-openHour))
	for h := openHour; h < closeHour; h++ {
		out = append(out, fmt.Sprintf("%02d:00", h), fmt.Sprintf("%02d:30", h))
	}
	return out
}

// Hours returns the opening and closing instants of date in loc. A
// closeHour of 24 is midnight of the following day.
func Hours(openHour, closeHour int, date time.Time, loc *time.Location) (open, close time.Time) {
	y, m, d := date.Date()
	return time.Date(y, m, d, openHour, 0, 0, 0, loc), time.Date(y, m, d, closeHour, 0, 0, 0, loc)
}

// Grid returns the ordered free slots of date between openHour and closeHour,
// one per half hour. Both boundaries of every slot are built from the wall
// clock in loc, so a day that crosses a DST transition still gets correct
// offsets per slot. closeHour may be 24, in which case the last slot ends at
// midnight of the following day.
func Grid(openHour, closeHour int, date time.Time, loc *time.Location) []model.Slot {
	y, m, d := date.Date()
	slots := make([]model.Slot, 0, 2*(closeHour-openHour))
	for i, label := range Labels(openHour, closeHour) {
		minute := openHour*60 + i*SlotMinutes
		start := time.Date(y, m, d, 0, minute, 0, 0, loc)
		end := time.Date(y, m, d, 0, minute+SlotMinutes, 0, 0, loc)
		slots = append(slots, model.Slot{
			Time:   label,
			Start:  start,
			End:    end,
			Status: model.SlotFree,
		})
	}
	return slots
}

// ValidHours reports whether the operating hours can produce a grid.
func ValidHours(openHour, closeHour int) bool {
	return openHour >= 0 && closeHour <= 24 && closeHour > openHour
}
