// Package interval partitions long time ranges into the bounded windows the
// Wattwatchers API mandates for a single time-series request.
package interval

import (
	"github.com/rayve/wattwatchers-client/pkg/rest"
)

// Interval is a [Start, End] timestamp range in epoch seconds. It is the unit
// of a single time-series request; End is the inclusive upper bound passed to
// the provider as toTs.
type Interval struct {
	Start int64
	End   int64
}

// Granularity is the sampling resolution of a time-series query. The wire
// values are the ones the API accepts for its granularity parameter.
type Granularity string

const (
	FiveMinutes    Granularity = "5m"
	FifteenMinutes Granularity = "15m"
	ThirtyMinutes  Granularity = "30m"
	Hour           Granularity = "hour"
	Day            Granularity = "day"
	Week           Granularity = "week"
	Month          Granularity = "month"
)

const daySeconds = int64(24 * 3600)

// MaxWindowSeconds returns the longest range a single request may cover at
// this granularity. An unrecognized granularity gets the most conservative
// bound.
func (g Granularity) MaxWindowSeconds() int64 {
	switch g {
	case FiveMinutes:
		return 7 * daySeconds
	case FifteenMinutes:
		return 14 * daySeconds
	case ThirtyMinutes:
		return 31 * daySeconds
	case Hour:
		return 90 * daySeconds
	case Day:
		return 3 * 365 * daySeconds // about 3 years
	case Week:
		return 5 * 365 * daySeconds // about 5 years
	case Month:
		return 10 * 365 * daySeconds // about 10 years
	default:
		return 7 * daySeconds
	}
}

// Split partitions [start, end] into contiguous, non-overlapping windows of
// at most maxWindowSeconds, in ascending order. The windows cover the range
// exactly once; all have the full window length except possibly the last.
// A degenerate range (start == end) yields no windows.
func Split(start, end, maxWindowSeconds int64) ([]Interval, error) {
	if maxWindowSeconds <= 0 {
		return nil, rest.NewCallerError("window length must be positive (got %d)", maxWindowSeconds)
	}

	if start > end {
		return nil, rest.NewCallerError("range start %d is after range end %d", start, end)
	}

	var windows []Interval
	for cursor := start; cursor < end; cursor += maxWindowSeconds {
		windows = append(windows, Interval{
			Start: cursor,
			End:   min(cursor+maxWindowSeconds, end),
		})
	}

	return windows, nil
}
