package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"storemonitor/models"

	"github.com/apex/log"
)

// insertBatchSize bounds the number of rows of one multi-row INSERT
const insertBatchSize = 500

// InsertObservations appends observations in a single transaction
func (d *Database) InsertObservations(ctx context.Context, observations []models.Observation) (int, error) {
	return insertBatches(ctx, d.db, "store_activity",
		"INSERT INTO store_activity (store_id, timestamp_utc, status) VALUES ", "(?, ?, ?)", "",
		len(observations), func(i int) []interface{} {
			o := observations[i]
			return []interface{}{o.StoreID, o.Timestamp.UTC(), string(o.Status)}
		})
}

// InsertBusinessHours appends business hour rules in a single transaction
func (d *Database) InsertBusinessHours(ctx context.Context, rules []models.BusinessHourRule) (int, error) {
	return insertBatches(ctx, d.db, "store_business_hours",
		"INSERT INTO store_business_hours (store_id, day, start_time_local, end_time_local) VALUES ", "(?, ?, ?, ?)", "",
		len(rules), func(i int) []interface{} {
			r := rules[i]
			var day interface{}
			if r.DayOfWeek != nil {
				day = *r.DayOfWeek
			}
			return []interface{}{r.StoreID, day, r.StartTimeLocal.String(), r.EndTimeLocal.String()}
		})
}

// UpsertTimezones stores timezones, replacing the zone of stores already known
func (d *Database) UpsertTimezones(ctx context.Context, timezones []models.StoreTimezone) (int, error) {
	return insertBatches(ctx, d.db, "store_timezone",
		"INSERT INTO store_timezone (store_id, timezone_str) VALUES ", "(?, ?)",
		" ON DUPLICATE KEY UPDATE timezone_str = VALUES(timezone_str)",
		len(timezones), func(i int) []interface{} {
			tz := timezones[i]
			return []interface{}{tz.StoreID, tz.TimezoneStr}
		})
}

func insertBatches(ctx context.Context, db *sql.DB, table, prefix, placeholder, suffix string, n int, args func(i int) []interface{}) (int, error) {
	if n == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin %s load: %w", table, err)
	}
	defer tx.Rollback()

	written := 0
	for start := 0; start < n; start += insertBatchSize {
		end := start + insertBatchSize
		if end > n {
			end = n
		}

		placeholders := make([]string, 0, end-start)
		values := make([]interface{}, 0, (end-start)*strings.Count(placeholder, "?"))
		for i := start; i < end; i++ {
			placeholders = append(placeholders, placeholder)
			values = append(values, args(i)...)
		}

		query := prefix + strings.Join(placeholders, ", ") + suffix
		if _, err := tx.ExecContext(ctx, query, values...); err != nil {
			return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
		}
		written += end - start
		log.Debugf("Inserted %d/%d rows into %s", written, n, table)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit %s load: %w", table, err)
	}
	return written, nil
}
