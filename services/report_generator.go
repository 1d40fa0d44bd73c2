package services

import (
	"context"
	"fmt"
	"time"

	"storemonitor/businesshours"
	"storemonitor/models"
	"storemonitor/uptime"

	"github.com/apex/log"
)

// ObservationStore reads ingested status polls
type ObservationStore interface {
	ListStoreIDs(ctx context.Context) ([]string, error)
	ListObservations(ctx context.Context, storeID string) ([]models.Observation, error)
}

// BusinessHoursStore reads the opening hours of a store
type BusinessHoursStore interface {
	ListBusinessHours(ctx context.Context, storeID string) ([]models.BusinessHourRule, error)
}

// TimezoneStore reads the zone of a store; a nil record means none was ingested
type TimezoneStore interface {
	GetTimezone(ctx context.Context, storeID string) (*models.StoreTimezone, error)
}

// Generator computes the rows of a report at a reference instant
type Generator interface {
	Generate(ctx context.Context, now time.Time) ([]models.ReportRow, error)
}

// ReportGenerator estimates uptime and downtime of every store.
//
// Each business hour rule of a store is estimated on its own and the minutes
// of all rules are summed, so overlapping rules count the overlap twice.
// Stores without rules are left out of the report.
type ReportGenerator struct {
	observations ObservationStore
	hours        BusinessHoursStore
	timezones    TimezoneStore
}

func NewReportGenerator(observations ObservationStore, hours BusinessHoursStore, timezones TimezoneStore) *ReportGenerator {
	return &ReportGenerator{
		observations: observations,
		hours:        hours,
		timezones:    timezones,
	}
}

// Generate returns one row per store with business hours. Any store error,
// an invalid timezone included, aborts the whole run.
func (g *ReportGenerator) Generate(ctx context.Context, now time.Time) ([]models.ReportRow, error) {
	storeIDs, err := g.observations.ListStoreIDs(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(storeIDs))
	rows := make([]models.ReportRow, 0, len(storeIDs))
	for _, storeID := range storeIDs {
		if seen[storeID] {
			continue
		}
		seen[storeID] = true

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, ok, err := g.StoreRow(ctx, storeID, now)
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", storeID, err)
		}
		if !ok {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// StoreRow computes the row of a single store. ok is false when the store has
// no business hours to report on.
func (g *ReportGenerator) StoreRow(ctx context.Context, storeID string, now time.Time) (models.ReportRow, bool, error) {
	rules, err := g.hours.ListBusinessHours(ctx, storeID)
	if err != nil {
		return models.ReportRow{}, false, err
	}
	if len(rules) == 0 {
		log.WithField("store_id", storeID).Debug("No business hours, skipping store")
		return models.ReportRow{}, false, nil
	}

	tz, err := g.timezones.GetTimezone(ctx, storeID)
	if err != nil {
		return models.ReportRow{}, false, err
	}
	tzID := businesshours.ResolveTimezone(tz)

	windows, err := businesshours.Resolve(rules, tzID, now)
	if err != nil {
		return models.ReportRow{}, false, err
	}
	if len(windows) == 0 {
		log.WithField("store_id", storeID).Debug("No business window in the last week, skipping store")
		return models.ReportRow{}, false, nil
	}

	observations, err := g.observations.ListObservations(ctx, storeID)
	if err != nil {
		return models.ReportRow{}, false, err
	}

	var hour, day, week uptime.Result
	for _, rw := range windows {
		hour = hour.Add(uptime.EstimateAll(observations, rw.Lookback(businesshours.LastHour), now))
		day = day.Add(uptime.EstimateAll(observations, rw.Lookback(businesshours.LastDay), now))
		week = week.Add(uptime.EstimateAll(observations, rw.Lookback(businesshours.LastWeek), now))
	}

	return models.ReportRow{
		StoreID:          storeID,
		UptimeLastHour:   hour.UptimeMinutes,
		UptimeLastDay:    day.UptimeMinutes,
		UptimeLastWeek:   week.UptimeMinutes,
		DowntimeLastHour: hour.DowntimeMinutes,
		DowntimeLastDay:  day.DowntimeMinutes,
		DowntimeLastWeek: week.DowntimeMinutes,
	}, true, nil
}
