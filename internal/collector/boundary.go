package collector

import "time"

// NextBoundary computes the next clock-aligned boundary after now: the
// smallest multiple of the interval past the hour (00, 15, 30, 45 for
// a 15 minute interval) strictly greater than the current minute. A
// computed minute of 60 or more rolls over to the top of the next hour.
// Alignment to UTC wall-clock marks keeps file boundaries identical
// across independent stations regardless of process start time.
func NextBoundary(now time.Time, every time.Duration) time.Time {
	now = now.UTC()

	minutes := int(every / time.Minute)
	if minutes < 1 {
		minutes = 1
	}

	next := ((now.Minute() / minutes) + 1) * minutes

	top := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, time.UTC)
	if next >= 60 {
		return top.Add(time.Hour)
	}

	return top.Add(time.Duration(next) * time.Minute)
}
