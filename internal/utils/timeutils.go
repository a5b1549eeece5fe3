package utils

import "time"

// SpanSeconds converts a pair of timestamps into a second count,
// tolerating swapped arguments. The result is never negative.
func SpanSeconds(start, end time.Time) float64 {
	if end.Before(start) {
		start, end = end, start
	}
	return end.Sub(start).Seconds()
}
