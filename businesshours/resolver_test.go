package businesshours

import (
	"errors"
	"testing"
	"time"

	"storemonitor/models"
	"storemonitor/timezone"
)

func utc(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func rule(start, end string, day *int) models.BusinessHourRule {
	s, err := models.ParseTimeOfDay(start)
	if err != nil {
		panic(err)
	}
	e, err := models.ParseTimeOfDay(end)
	if err != nil {
		panic(err)
	}
	return models.BusinessHourRule{StoreID: "S1", DayOfWeek: day, StartTimeLocal: s, EndTimeLocal: e}
}

func totalMinutes(ws []Window) float64 {
	total := 0.0
	for _, w := range ws {
		total += w.Minutes()
	}
	return total
}

func TestResolveTimezone(t *testing.T) {
	if got := ResolveTimezone(nil); got != DefaultTimezone {
		t.Errorf("expected default for missing record, got %q", got)
	}
	if got := ResolveTimezone(&models.StoreTimezone{StoreID: "S1", TimezoneStr: " "}); got != DefaultTimezone {
		t.Errorf("expected default for blank zone, got %q", got)
	}
	if got := ResolveTimezone(&models.StoreTimezone{StoreID: "S1", TimezoneStr: "Asia/Beirut"}); got != "Asia/Beirut" {
		t.Errorf("expected stored zone, got %q", got)
	}
}

func TestResolveDay(t *testing.T) {
	testCases := []struct {
		name   string
		rule   models.BusinessHourRule
		tz     string
		date   time.Time
		expect Window
	}{
		{
			name:   "Daytime in Chicago",
			rule:   rule("09:00", "17:00", nil),
			tz:     "America/Chicago",
			date:   utc(2024, time.June, 1, 0, 0),
			expect: Window{Start: utc(2024, time.June, 1, 14, 0), End: utc(2024, time.June, 1, 22, 0)},
		}, {
			name:   "Overnight spans into next day",
			rule:   rule("22:00", "02:00", nil),
			tz:     "America/Chicago",
			date:   utc(2024, time.June, 1, 0, 0),
			expect: Window{Start: utc(2024, time.June, 2, 3, 0), End: utc(2024, time.June, 2, 7, 0)},
		}, {
			name:   "Equal start and end is a full day",
			rule:   rule("00:00", "00:00", nil),
			tz:     "",
			date:   utc(2024, time.June, 1, 0, 0),
			expect: Window{Start: utc(2024, time.June, 1, 0, 0), End: utc(2024, time.June, 2, 0, 0)},
		}, {
			name:   "No timezone keeps wall clock",
			rule:   rule("09:00", "17:00", nil),
			tz:     "",
			date:   utc(2024, time.June, 1, 0, 0),
			expect: Window{Start: utc(2024, time.June, 1, 9, 0), End: utc(2024, time.June, 1, 17, 0)},
		},
	}

	for _, testCase := range testCases {
		got, err := ResolveDay(testCase.rule, testCase.tz, testCase.date)
		if err != nil {
			t.Errorf("%s: unexpected error %v", testCase.name, err)
			continue
		}
		if !got.Start.Equal(testCase.expect.Start) || !got.End.Equal(testCase.expect.End) {
			t.Errorf("%s: expected %v, got %v", testCase.name, testCase.expect, got)
		}
	}
}

func TestOvernightDuration(t *testing.T) {
	r := rule("22:00", "02:00", nil)
	w, err := ResolveDay(r, "", utc(2024, time.June, 1, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	expect := r.EndTimeLocal.SinceMidnight() + 24*time.Hour - r.StartTimeLocal.SinceMidnight()
	if w.Duration() != expect {
		t.Errorf("expected %v, got %v", expect, w.Duration())
	}
}

func TestResolveEveryDay(t *testing.T) {
	now := utc(2024, time.June, 5, 20, 0) // 15:00 CDT
	got, err := Resolve([]models.BusinessHourRule{rule("09:00", "17:00", nil)}, "America/Chicago", now)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 rule window, got %d", len(got))
	}
	rw := got[0]
	if !rw.Current.Start.Equal(utc(2024, time.June, 5, 14, 0)) || !rw.Anchor().Equal(utc(2024, time.June, 5, 22, 0)) {
		t.Errorf("unexpected current window %v", rw.Current)
	}
	if len(rw.Occurrences) != daysBack+1 {
		t.Errorf("expected %d occurrences, got %d", daysBack+1, len(rw.Occurrences))
	}
	if m := totalMinutes(rw.Lookback(LastHour)); m != 60 {
		t.Errorf("expected 60 minutes in last hour, got %v", m)
	}
	if m := totalMinutes(rw.Lookback(LastDay)); m != 480 {
		t.Errorf("expected 480 minutes in last day, got %v", m)
	}
	if m := totalMinutes(rw.Lookback(LastWeek)); m != 7*480 {
		t.Errorf("expected %d minutes in last week, got %v", 7*480, m)
	}
}

func TestResolveBeforeOpening(t *testing.T) {
	now := utc(2024, time.June, 5, 13, 0) // 08:00 CDT
	got, err := Resolve([]models.BusinessHourRule{rule("09:00", "17:00", nil)}, "America/Chicago", now)
	if err != nil {
		t.Fatal(err)
	}
	if !got[0].Current.Start.Equal(utc(2024, time.June, 4, 14, 0)) {
		t.Errorf("expected previous day's window, got %v", got[0].Current)
	}
}

func TestResolveOvernightCurrentCycle(t *testing.T) {
	now := utc(2024, time.June, 5, 6, 0) // 01:00 CDT
	got, err := Resolve([]models.BusinessHourRule{rule("22:00", "02:00", nil)}, "America/Chicago", now)
	if err != nil {
		t.Fatal(err)
	}
	expect := Window{Start: utc(2024, time.June, 5, 3, 0), End: utc(2024, time.June, 5, 7, 0)}
	if !got[0].Current.Start.Equal(expect.Start) || !got[0].Current.End.Equal(expect.End) {
		t.Errorf("expected %v, got %v", expect, got[0].Current)
	}
}

func TestResolveDayOfWeek(t *testing.T) {
	wednesday := 2
	now := utc(2024, time.June, 6, 15, 0) // Thursday
	got, err := Resolve([]models.BusinessHourRule{rule("09:00", "17:00", &wednesday)}, "America/Chicago", now)
	if err != nil {
		t.Fatal(err)
	}
	rw := got[0]
	if !rw.Current.Start.Equal(utc(2024, time.June, 5, 14, 0)) {
		t.Errorf("expected Wednesday window, got %v", rw.Current)
	}
	if len(rw.Occurrences) != 2 {
		t.Errorf("expected 2 occurrences, got %d", len(rw.Occurrences))
	}
	if m := totalMinutes(rw.Lookback(LastWeek)); m != 480 {
		t.Errorf("expected 480 minutes in last week, got %v", m)
	}
}

func TestResolveSkipsImpossibleDay(t *testing.T) {
	bad := 9
	got, err := Resolve([]models.BusinessHourRule{rule("09:00", "17:00", &bad)}, "", utc(2024, time.June, 6, 15, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no windows, got %v", got)
	}
}

func TestResolveInvalidTimezone(t *testing.T) {
	_, err := Resolve([]models.BusinessHourRule{rule("09:00", "17:00", nil)}, "Bogus/Zone", utc(2024, time.June, 6, 15, 0))
	if !errors.Is(err, timezone.ErrInvalidTimezone) {
		t.Errorf("expected ErrInvalidTimezone, got %v", err)
	}
}

func TestClip(t *testing.T) {
	w := Window{Start: utc(2024, time.June, 1, 9, 0), End: utc(2024, time.June, 1, 17, 0)}
	if c := w.Clip(utc(2024, time.June, 1, 16, 0), utc(2024, time.June, 1, 18, 0)); c.Minutes() != 60 {
		t.Errorf("expected 60 minutes, got %v", c.Minutes())
	}
	if c := w.Clip(utc(2024, time.June, 2, 0, 0), utc(2024, time.June, 2, 1, 0)); !c.IsEmpty() {
		t.Errorf("expected empty window, got %v", c)
	}
}
