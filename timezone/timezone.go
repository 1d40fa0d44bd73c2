// Package timezone turns store-local wall clocks into UTC instants.
//
// Wall clocks are carried as time.Time values whose location is ignored: only
// the calendar and clock fields are read. Ambiguous and nonexistent wall
// clocks around DST transitions are resolved with the zone's standard-time
// offset:
//   - in a fold (clocks set back) the standard-time reading wins, which is the
//     later of the two instants;
//   - in a gap (clocks set forward) the wall clock is read with the standard
//     offset in effect before the transition, so it lands after it.
package timezone

import (
	"errors"
	"fmt"
	"sync"
	"time"
	_ "time/tzdata"

	"storemonitor/models"
)

var ErrInvalidTimezone = errors.New("invalid timezone")

var locations sync.Map

// Load returns the location for an IANA zone name
func Load(tzID string) (*time.Location, error) {
	if cached, ok := locations.Load(tzID); ok {
		return cached.(*time.Location), nil
	}
	loc, err := time.LoadLocation(tzID)
	if err != nil || tzID == "" || tzID == "Local" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, tzID)
	}
	locations.Store(tzID, loc)
	return loc, nil
}

// Combine joins a reference date and a time of day into a wall clock.
// Only the calendar fields of referenceDate are used.
func Combine(referenceDate time.Time, tod models.TimeOfDay) time.Time {
	return time.Date(referenceDate.Year(), referenceDate.Month(), referenceDate.Day(),
		tod.Hour, tod.Minute, tod.Second, 0, time.UTC)
}

// LocalDate returns the calendar date of an instant in the given zone, as a
// wall clock at midnight. An empty tzID means UTC.
func LocalDate(instant time.Time, tzID string) (time.Time, error) {
	local := instant.UTC()
	if tzID != "" {
		loc, err := Load(tzID)
		if err != nil {
			return time.Time{}, err
		}
		local = instant.In(loc)
	}
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ToUTC interprets the wall clock fields of local in the zone tzID.
// An empty tzID treats the wall clock as already being UTC.
func ToUTC(local time.Time, tzID string) (time.Time, error) {
	floating := time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), time.UTC)
	if tzID == "" {
		return floating, nil
	}
	loc, err := Load(tzID)
	if err != nil {
		return time.Time{}, err
	}
	return resolve(floating, loc), nil
}

func resolve(floating time.Time, loc *time.Location) time.Time {
	before := floating.Add(-24 * time.Hour).In(loc)
	after := floating.Add(24 * time.Hour).In(loc)
	_, offBefore := before.Zone()
	_, offAfter := after.Zone()

	offsets := []int{offBefore}
	if offAfter != offBefore {
		offsets = append(offsets, offAfter)
	}

	var valid []time.Time
	for _, off := range offsets {
		candidate := floating.Add(-time.Duration(off) * time.Second)
		if _, got := candidate.In(loc).Zone(); got == off {
			valid = append(valid, candidate)
		}
	}

	switch len(valid) {
	case 1:
		return valid[0]
	case 2:
		for _, c := range valid {
			if !c.In(loc).IsDST() {
				return c
			}
		}
		if valid[1].After(valid[0]) {
			return valid[1]
		}
		return valid[0]
	}

	// gap
	std := offBefore
	if before.IsDST() && !after.IsDST() {
		std = offAfter
	}
	return floating.Add(-time.Duration(std) * time.Second)
}
