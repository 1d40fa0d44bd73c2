package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// ObservationStatus is the polled state of a store
type ObservationStatus string

const (
	StatusActive   ObservationStatus = "active"
	StatusInactive ObservationStatus = "inactive"
)

// ParseObservationStatus accepts the two known statuses, case-insensitively
func ParseObservationStatus(s string) (ObservationStatus, error) {
	switch ObservationStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusActive:
		return StatusActive, nil
	case StatusInactive:
		return StatusInactive, nil
	}
	return "", fmt.Errorf("unknown observation status %q", s)
}

// Observation is a single point-in-time poll of a store
type Observation struct {
	StoreID   string            `json:"store_id" db:"store_id"`
	Timestamp time.Time         `json:"timestamp_utc" db:"timestamp_utc"`
	Status    ObservationStatus `json:"status" db:"status"`
}

// StoreTimezone maps a store to its IANA zone name
type StoreTimezone struct {
	StoreID     string `json:"store_id" db:"store_id"`
	TimezoneStr string `json:"timezone_str" db:"timezone_str"`
}

// BusinessHourRule is one opening interval of a store in its local time.
// DayOfWeek uses 0=Monday..6=Sunday; nil applies the rule every day.
type BusinessHourRule struct {
	StoreID        string    `json:"store_id" db:"store_id"`
	DayOfWeek      *int      `json:"day,omitempty" db:"day"`
	StartTimeLocal TimeOfDay `json:"start_time_local" db:"start_time_local"`
	EndTimeLocal   TimeOfDay `json:"end_time_local" db:"end_time_local"`
}

// AppliesOn reports whether the rule is in effect on the given weekday
func (r BusinessHourRule) AppliesOn(day time.Weekday) bool {
	if r.DayOfWeek == nil {
		return true
	}
	return *r.DayOfWeek == MondayFirst(day)
}

// Overnight reports whether the window ends on the next calendar day
func (r BusinessHourRule) Overnight() bool {
	return !r.StartTimeLocal.Before(r.EndTimeLocal)
}

// MondayFirst converts a time.Weekday to the 0=Monday numbering used by rules
func MondayFirst(day time.Weekday) int {
	return (int(day) + 6) % 7
}

// TimeOfDay is a wall-clock time without a date
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

var timeOfDayLayouts = []string{"15:04:05", "15:04", "15:04:05.999999"}

// ParseTimeOfDay parses HH:MM or HH:MM:SS
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeOfDayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
}

// SinceMidnight returns the offset of the time of day from 00:00:00
func (t TimeOfDay) SinceMidnight() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute + time.Duration(t.Second)*time.Second
}

func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.SinceMidnight() < o.SinceMidnight()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Scan reads a MySQL TIME column
func (t *TimeOfDay) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	case time.Time:
		*t = TimeOfDay{Hour: v.Hour(), Minute: v.Minute(), Second: v.Second()}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value writes the time of day as a MySQL TIME literal
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}
