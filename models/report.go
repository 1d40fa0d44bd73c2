package models

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// ReportStatus is the lifecycle state of a report run
type ReportStatus string

const (
	ReportRunning  ReportStatus = "Running"
	ReportComplete ReportStatus = "Complete"
	ReportFailed   ReportStatus = "Failed"
)

// Terminal reports whether no further transition is allowed
func (s ReportStatus) Terminal() bool {
	return s == ReportComplete || s == ReportFailed
}

// Report is a single generation run and its result snapshot
type Report struct {
	ID          string       `json:"report_id" db:"id"`
	Status      ReportStatus `json:"status" db:"status"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty" db:"completed_at"`
	Data        []ReportRow  `json:"data,omitempty" db:"data"`
}

// ReportRow holds the minutes of one store
type ReportRow struct {
	StoreID          string  `json:"store_id"`
	UptimeLastHour   float64 `json:"uptime_last_hour"`
	UptimeLastDay    float64 `json:"uptime_last_day"`
	UptimeLastWeek   float64 `json:"uptime_last_week"`
	DowntimeLastHour float64 `json:"downtime_last_hour"`
	DowntimeLastDay  float64 `json:"downtime_last_day"`
	DowntimeLastWeek float64 `json:"downtime_last_week"`
}

// ReportCSVHeader is the fixed column order of the exported report
var ReportCSVHeader = []string{
	"store_id",
	"uptime_last_hour",
	"uptime_last_day",
	"uptime_last_week",
	"downtime_last_hour",
	"downtime_last_day",
	"downtime_last_week",
}

// TriggerReportResponse is returned by POST /trigger_report
type TriggerReportResponse struct {
	ReportID string `json:"report_id"`
}

// ReportStatusResponse is returned by GET /get_report while the report has no CSV
type ReportStatusResponse struct {
	ReportID string       `json:"report_id"`
	Status   ReportStatus `json:"status"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

func minutes(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// WriteReportCSV writes the header and one line per row
func WriteReportCSV(w io.Writer, rows []ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ReportCSVHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.StoreID,
			minutes(r.UptimeLastHour),
			minutes(r.UptimeLastDay),
			minutes(r.UptimeLastWeek),
			minutes(r.DowntimeLastHour),
			minutes(r.DowntimeLastDay),
			minutes(r.DowntimeLastWeek),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
