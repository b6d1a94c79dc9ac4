package shopee

import "time"

// DateWindow is one sub-interval of a split date range.
type DateWindow struct {
	From time.Time
	To   time.Time
}

// SplitDateRange splits [from, to] into consecutive windows of at most
// maxDays days: ordered, contiguous, non-overlapping, covering the whole
// range. When the range fits in a single window its end is pushed to
// 23:59:59 past to, so same-day and short ranges stay inclusive.
func SplitDateRange(from, to time.Time, maxDays int) []DateWindow {
	span := to.Sub(from)
	chunk := time.Duration(maxDays) * 24 * time.Hour

	if span <= chunk {
		return []DateWindow{{
			From: from,
			To:   to.Add(23*time.Hour + 59*time.Minute + 59*time.Second),
		}}
	}

	full := int(span / chunk)
	remainder := span - time.Duration(full)*chunk

	windows := make([]DateWindow, 0, full+1)
	for range full {
		end := from.Add(chunk)
		windows = append(windows, DateWindow{From: from, To: end})
		from = end
	}
	if remainder > 0 {
		windows = append(windows, DateWindow{From: from, To: from.Add(remainder)})
	}
	return windows
}
