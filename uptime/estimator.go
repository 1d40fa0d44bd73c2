// Package uptime estimates how long a store was active inside a business window
// from sparse status observations.
//
// The state between two observations is the state of the earlier one. Only
// observations inside [window.Start, window.End] are considered: there is no
// seeding from observations before the window, so uptime starts accruing at the
// first active observation in the window. A run that is still open when the
// scan ends is credited up to min(now, window.End).
package uptime

import (
	"sort"
	"time"

	"storemonitor/businesshours"
	"storemonitor/models"
)

// Result holds the minutes of a window; the two always sum to the window length
type Result struct {
	UptimeMinutes   float64
	DowntimeMinutes float64
}

func (r Result) Add(o Result) Result {
	return Result{
		UptimeMinutes:   r.UptimeMinutes + o.UptimeMinutes,
		DowntimeMinutes: r.DowntimeMinutes + o.DowntimeMinutes,
	}
}

// Estimate scans observations sorted by timestamp and returns the minutes the
// store was up and down inside window.
func Estimate(observations []models.Observation, window businesshours.Window, now time.Time) Result {
	total := window.Duration()
	if total == 0 {
		return Result{}
	}
	observations = sorted(observations)

	var (
		up       time.Duration
		runStart time.Time
		open     bool
	)
	for _, o := range observations {
		if o.Timestamp.Before(window.Start) {
			continue
		}
		if o.Timestamp.After(window.End) {
			break
		}
		switch o.Status {
		case models.StatusActive:
			if !open {
				runStart = o.Timestamp
				open = true
			}
		case models.StatusInactive:
			if open {
				up += o.Timestamp.Sub(runStart)
				open = false
			}
		}
	}

	if open {
		closeAt := window.End
		if now.Before(closeAt) {
			closeAt = now
		}
		if d := closeAt.Sub(runStart); d > 0 {
			up += d
		}
	}
	if up > total {
		up = total
	}

	upMinutes := up.Minutes()
	return Result{
		UptimeMinutes:   upMinutes,
		DowntimeMinutes: total.Minutes() - upMinutes,
	}
}

// EstimateAll sums Estimate over several windows
func EstimateAll(observations []models.Observation, windows []businesshours.Window, now time.Time) Result {
	observations = sorted(observations)
	var r Result
	for _, w := range windows {
		r = r.Add(Estimate(observations, w, now))
	}
	return r
}

func sorted(observations []models.Observation) []models.Observation {
	less := func(i, j int) bool { return observations[i].Timestamp.Before(observations[j].Timestamp) }
	if sort.SliceIsSorted(observations, less) {
		return observations
	}
	out := make([]models.Observation, len(observations))
	copy(out, observations)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}
