// Package ingest bulk loads the CSV exports of store polls, business hours and
// timezones. Each source is parsed and written in its own transaction, and the
// sources are loaded concurrently since they touch disjoint tables.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"storemonitor/metrics"
	"storemonitor/models"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"
)

// Sink stores parsed rows
type Sink interface {
	InsertObservations(ctx context.Context, observations []models.Observation) (int, error)
	InsertBusinessHours(ctx context.Context, rules []models.BusinessHourRule) (int, error)
	UpsertTimezones(ctx context.Context, timezones []models.StoreTimezone) (int, error)
}

// Sources are the CSV files to load; empty paths are skipped
type Sources struct {
	Observations  string
	BusinessHours string
	Timezones     string
}

// Summary counts the rows written per source
type Summary struct {
	Observations  int
	BusinessHours int
	Timezones     int
}

type Loader struct {
	sink Sink
}

func NewLoader(sink Sink) *Loader {
	return &Loader{sink: sink}
}

// Load loads every source concurrently. A failing source does not stop the
// others; the first error is returned once all of them are done.
func (l *Loader) Load(ctx context.Context, sources Sources) (Summary, error) {
	var (
		summary Summary
		g       errgroup.Group
	)

	if sources.Observations != "" {
		g.Go(func() error {
			n, err := loadFile(sources.Observations, "store_activity", func(r io.Reader) (int, error) {
				rows, err := ReadObservations(r)
				if err != nil {
					return 0, err
				}
				return l.sink.InsertObservations(ctx, rows)
			})
			summary.Observations = n
			return err
		})
	}
	if sources.BusinessHours != "" {
		g.Go(func() error {
			n, err := loadFile(sources.BusinessHours, "store_business_hours", func(r io.Reader) (int, error) {
				rows, err := ReadBusinessHours(r)
				if err != nil {
					return 0, err
				}
				return l.sink.InsertBusinessHours(ctx, rows)
			})
			summary.BusinessHours = n
			return err
		})
	}
	if sources.Timezones != "" {
		g.Go(func() error {
			n, err := loadFile(sources.Timezones, "store_timezone", func(r io.Reader) (int, error) {
				rows, err := ReadTimezones(r)
				if err != nil {
					return 0, err
				}
				return l.sink.UpsertTimezones(ctx, rows)
			})
			summary.Timezones = n
			return err
		})
	}

	err := g.Wait()
	return summary, err
}

func loadFile(path, table string, load func(io.Reader) (int, error)) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		log.Errorf("Error loading data from %s: %v", path, err)
		return 0, err
	}
	defer f.Close()

	n, err := load(f)
	if err != nil {
		log.Errorf("Error loading data from %s: %v", path, err)
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	metrics.IngestedRowsTotal.WithLabelValues(table).Add(float64(n))
	log.Infof("Data from %s loaded successfully, %d rows into %s", path, n, table)
	return n, nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999 MST",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// ReadObservations parses store_id,status,timestamp_utc rows in any column order
func ReadObservations(r io.Reader) ([]models.Observation, error) {
	var out []models.Observation
	err := readCSV(r, []string{"store_id", "status", "timestamp_utc"}, func(row map[string]string) error {
		status, err := models.ParseObservationStatus(row["status"])
		if err != nil {
			return err
		}
		ts, err := parseTimestamp(row["timestamp_utc"])
		if err != nil {
			return err
		}
		out = append(out, models.Observation{StoreID: row["store_id"], Timestamp: ts, Status: status})
		return nil
	})
	return out, err
}

// ReadBusinessHours parses store_id,day,start_time_local,end_time_local rows.
// The day column may also be named dayOfWeek; an empty day means every day.
func ReadBusinessHours(r io.Reader) ([]models.BusinessHourRule, error) {
	var out []models.BusinessHourRule
	err := readCSV(r, []string{"store_id", "start_time_local", "end_time_local"}, func(row map[string]string) error {
		rule := models.BusinessHourRule{StoreID: row["store_id"]}

		day := row["day"]
		if day == "" {
			day = row["dayofweek"]
		}
		if day = strings.TrimSpace(day); day != "" {
			dow, err := strconv.Atoi(day)
			if err != nil || dow < 0 || dow > 6 {
				return fmt.Errorf("invalid day of week %q", day)
			}
			rule.DayOfWeek = &dow
		}

		var err error
		if rule.StartTimeLocal, err = models.ParseTimeOfDay(row["start_time_local"]); err != nil {
			return err
		}
		if rule.EndTimeLocal, err = models.ParseTimeOfDay(row["end_time_local"]); err != nil {
			return err
		}
		out = append(out, rule)
		return nil
	})
	return out, err
}

// ReadTimezones parses store_id,timezone_str rows
func ReadTimezones(r io.Reader) ([]models.StoreTimezone, error) {
	var out []models.StoreTimezone
	err := readCSV(r, []string{"store_id", "timezone_str"}, func(row map[string]string) error {
		out = append(out, models.StoreTimezone{StoreID: row["store_id"], TimezoneStr: row["timezone_str"]})
		return nil
	})
	return out, err
}

// readCSV calls fn for each record keyed by lowercased header name
func readCSV(r io.Reader, required []string, fn func(row map[string]string) error) error {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty file")
		}
		return err
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	for _, col := range required {
		if !contains(header, col) {
			return fmt.Errorf("missing column %q", col)
		}
	}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			}
		}
		if row["store_id"] == "" {
			return fmt.Errorf("line %d: missing store_id", line)
		}
		if err := fn(row); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
