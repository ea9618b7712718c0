package schedule

import "time"

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share an instant.
// Touching intervals (aEnd == bStart) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
