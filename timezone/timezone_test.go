package timezone

import (
	"errors"
	"testing"
	"time"

	"storemonitor/models"
)

func wall(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestToUTC(t *testing.T) {
	testCases := []struct {
		name   string
		local  time.Time
		tz     string
		expect time.Time
	}{
		{
			name:   "No timezone is identity",
			local:  wall(2024, time.June, 1, 9, 0),
			tz:     "",
			expect: wall(2024, time.June, 1, 9, 0),
		}, {
			name:   "Chicago summer",
			local:  wall(2024, time.June, 1, 9, 0),
			tz:     "America/Chicago",
			expect: wall(2024, time.June, 1, 14, 0),
		}, {
			name:   "Chicago winter",
			local:  wall(2024, time.January, 15, 9, 0),
			tz:     "America/Chicago",
			expect: wall(2024, time.January, 15, 15, 0),
		}, {
			name:   "Fold resolves to standard time",
			local:  wall(2024, time.November, 3, 1, 30),
			tz:     "America/Chicago",
			expect: wall(2024, time.November, 3, 7, 30),
		}, {
			name:   "Gap read with standard offset",
			local:  wall(2024, time.March, 10, 2, 30),
			tz:     "America/Chicago",
			expect: wall(2024, time.March, 10, 8, 30),
		}, {
			name:   "Positive offset zone",
			local:  wall(2024, time.June, 1, 0, 30),
			tz:     "Asia/Kolkata",
			expect: wall(2024, time.May, 31, 19, 0),
		}, {
			name:   "Southern hemisphere fold",
			local:  wall(2024, time.April, 7, 2, 30),
			tz:     "Australia/Sydney",
			expect: wall(2024, time.April, 6, 16, 30),
		},
	}

	for _, testCase := range testCases {
		got, err := ToUTC(testCase.local, testCase.tz)
		if err != nil {
			t.Errorf("%s: unexpected error %v", testCase.name, err)
			continue
		}
		if !got.Equal(testCase.expect) {
			t.Errorf("%s: expected %v, got %v", testCase.name, testCase.expect, got)
		}
		if got.Location() != time.UTC {
			t.Errorf("%s: expected UTC location, got %v", testCase.name, got.Location())
		}
	}
}

func TestToUTCIgnoresInputLocation(t *testing.T) {
	ny, err := Load("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	local := time.Date(2024, time.June, 1, 9, 0, 0, 0, ny)
	got, err := ToUTC(local, "")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(wall(2024, time.June, 1, 9, 0)) {
		t.Errorf("expected wall clock fields to be kept, got %v", got)
	}
}

func TestToUTCInvalidTimezone(t *testing.T) {
	for _, tz := range []string{"Mars/Olympus_Mons", "Local", "not a zone"} {
		_, err := ToUTC(wall(2024, time.June, 1, 9, 0), tz)
		if !errors.Is(err, ErrInvalidTimezone) {
			t.Errorf("%q: expected ErrInvalidTimezone, got %v", tz, err)
		}
	}
}

func TestCombine(t *testing.T) {
	ref := time.Date(2024, time.June, 1, 23, 59, 0, 0, time.FixedZone("x", 3600))
	got := Combine(ref, models.TimeOfDay{Hour: 9, Minute: 15, Second: 30})
	expect := time.Date(2024, time.June, 1, 9, 15, 30, 0, time.UTC)
	if !got.Equal(expect) {
		t.Errorf("expected %v, got %v", expect, got)
	}
}

func TestLocalDate(t *testing.T) {
	// 03:00 UTC on June 2nd is still June 1st in Chicago.
	instant := wall(2024, time.June, 2, 3, 0)
	got, err := LocalDate(instant, "America/Chicago")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(wall(2024, time.June, 1, 0, 0)) {
		t.Errorf("expected June 1st, got %v", got)
	}

	got, err = LocalDate(instant, "")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(wall(2024, time.June, 2, 0, 0)) {
		t.Errorf("expected June 2nd, got %v", got)
	}

	if _, err := LocalDate(instant, "Nowhere/City"); !errors.Is(err, ErrInvalidTimezone) {
		t.Errorf("expected ErrInvalidTimezone, got %v", err)
	}
}
