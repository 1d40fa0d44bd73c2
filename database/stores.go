package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storemonitor/models"
)

// ListStoreIDs returns every store that has at least one observation
func (d *Database) ListStoreIDs(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT DISTINCT store_id
		FROM store_activity
		ORDER BY store_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list store ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan store id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListObservations returns the observations of a store, oldest first
func (d *Database) ListObservations(ctx context.Context, storeID string) ([]models.Observation, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT store_id, timestamp_utc, status
		FROM store_activity
		WHERE store_id = ?
		ORDER BY timestamp_utc
	`, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list observations of %s: %w", storeID, err)
	}
	defer rows.Close()

	var observations []models.Observation
	for rows.Next() {
		var (
			o      models.Observation
			status string
		)
		if err := rows.Scan(&o.StoreID, &o.Timestamp, &status); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		if o.Status, err = models.ParseObservationStatus(status); err != nil {
			return nil, err
		}
		o.Timestamp = o.Timestamp.UTC()
		observations = append(observations, o)
	}
	return observations, rows.Err()
}

// ListBusinessHours returns the business hour rules of a store
func (d *Database) ListBusinessHours(ctx context.Context, storeID string) ([]models.BusinessHourRule, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT store_id, day, start_time_local, end_time_local
		FROM store_business_hours
		WHERE store_id = ?
		ORDER BY id
	`, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list business hours of %s: %w", storeID, err)
	}
	defer rows.Close()

	var rules []models.BusinessHourRule
	for rows.Next() {
		var (
			r   models.BusinessHourRule
			day sql.NullInt64
		)
		if err := rows.Scan(&r.StoreID, &day, &r.StartTimeLocal, &r.EndTimeLocal); err != nil {
			return nil, fmt.Errorf("failed to scan business hours: %w", err)
		}
		if day.Valid {
			dow := int(day.Int64)
			r.DayOfWeek = &dow
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// GetTimezone returns the timezone record of a store, or nil when there is none
func (d *Database) GetTimezone(ctx context.Context, storeID string) (*models.StoreTimezone, error) {
	var tz models.StoreTimezone
	err := d.db.QueryRowContext(ctx, `
		SELECT store_id, timezone_str
		FROM store_timezone
		WHERE store_id = ?
	`, storeID).Scan(&tz.StoreID, &tz.TimezoneStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get timezone of %s: %w", storeID, err)
	}
	return &tz, nil
}
