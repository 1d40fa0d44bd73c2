package businesshours

import (
	"strings"
	"time"

	"storemonitor/models"
	"storemonitor/timezone"
)

// DefaultTimezone applies to stores without a timezone record
const DefaultTimezone = "America/Chicago"

const (
	LastHour = time.Hour
	LastDay  = 24 * time.Hour
	LastWeek = 7 * 24 * time.Hour
)

// daysBack bounds how far before "now" a rule occurrence is looked for
const daysBack = 7

// ResolveTimezone picks the zone of a store, falling back to DefaultTimezone
func ResolveTimezone(tz *models.StoreTimezone) string {
	if tz == nil || strings.TrimSpace(tz.TimezoneStr) == "" {
		return DefaultTimezone
	}
	return strings.TrimSpace(tz.TimezoneStr)
}

// Window is a half-open UTC interval [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Duration() time.Duration {
	if w.IsEmpty() {
		return 0
	}
	return w.End.Sub(w.Start)
}

func (w Window) Minutes() float64 {
	return w.Duration().Minutes()
}

func (w Window) IsEmpty() bool {
	return !w.End.After(w.Start)
}

// Clip intersects the window with [from, to]
func (w Window) Clip(from, to time.Time) Window {
	start, end := w.Start, w.End
	if from.After(start) {
		start = from
	}
	if to.Before(end) {
		end = to
	}
	if end.Before(start) {
		end = start
	}
	return Window{Start: start, End: end}
}

// ResolveDay converts one rule occurrence starting on localDate into UTC.
// A rule whose end is not after its start closes on the following day.
func ResolveDay(rule models.BusinessHourRule, tzID string, localDate time.Time) (Window, error) {
	endDate := localDate
	if rule.Overnight() {
		endDate = localDate.AddDate(0, 0, 1)
	}
	start, err := timezone.ToUTC(timezone.Combine(localDate, rule.StartTimeLocal), tzID)
	if err != nil {
		return Window{}, err
	}
	end, err := timezone.ToUTC(timezone.Combine(endDate, rule.EndTimeLocal), tzID)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: start, End: end}, nil
}

// RuleWindows holds the resolved occurrences of a single rule
type RuleWindows struct {
	Rule models.BusinessHourRule
	// Current is the latest occurrence that has started at the reference instant.
	Current Window
	// Occurrences are the current occurrence and those of the preceding week, newest first.
	Occurrences []Window
}

// Anchor is the instant lookback ranges end at
func (rw RuleWindows) Anchor() time.Time {
	return rw.Current.End
}

// Lookback returns the parts of the occurrences inside [Anchor-d, Anchor]
func (rw RuleWindows) Lookback(d time.Duration) []Window {
	to := rw.Anchor()
	from := to.Add(-d)
	var out []Window
	for _, w := range rw.Occurrences {
		clipped := w.Clip(from, to)
		if !clipped.IsEmpty() {
			out = append(out, clipped)
		}
	}
	return out
}

// Resolve computes the windows of every rule for the day cycle containing now.
// Rules that never apply (bad day of week) yield nothing.
func Resolve(rules []models.BusinessHourRule, tzID string, now time.Time) ([]RuleWindows, error) {
	today, err := timezone.LocalDate(now, tzID)
	if err != nil {
		return nil, err
	}

	var out []RuleWindows
	for _, rule := range rules {
		rw, ok, err := resolveRule(rule, tzID, today, now)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rw)
		}
	}
	return out, nil
}

func resolveRule(rule models.BusinessHourRule, tzID string, today, now time.Time) (RuleWindows, bool, error) {
	for back := 0; back <= daysBack; back++ {
		date := today.AddDate(0, 0, -back)
		if !rule.AppliesOn(date.Weekday()) {
			continue
		}
		current, err := ResolveDay(rule, tzID, date)
		if err != nil {
			return RuleWindows{}, false, err
		}
		if current.Start.After(now) {
			continue
		}

		occurrences := []Window{current}
		for prev := 1; prev <= daysBack; prev++ {
			d := date.AddDate(0, 0, -prev)
			if !rule.AppliesOn(d.Weekday()) {
				continue
			}
			w, err := ResolveDay(rule, tzID, d)
			if err != nil {
				return RuleWindows{}, false, err
			}
			occurrences = append(occurrences, w)
		}
		return RuleWindows{Rule: rule, Current: current, Occurrences: occurrences}, true, nil
	}
	return RuleWindows{}, false, nil
}
