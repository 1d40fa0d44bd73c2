package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storemonitor/common"
	"storemonitor/models"
)

var (
	// ErrReportNotRunning is returned when a report already reached a terminal status
	ErrReportNotRunning = errors.New("report is not running")
	// ErrNotTerminal is returned when a report is asked to transition to Running
	ErrNotTerminal = errors.New("report status is not terminal")
)

// CreateReport stores a new report in the Running status
func (d *Database) CreateReport(ctx context.Context, id string, createdAt time.Time) (*models.Report, error) {
	createdAt = createdAt.UTC()
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO user_reports (id, status, created_at)
		VALUES (?, ?, ?)
	`, id, models.ReportRunning, createdAt)
	common.LogResult(fmt.Sprintf("Create report %s", id), res, err, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create report %s: %w", id, err)
	}
	return &models.Report{ID: id, Status: models.ReportRunning, CreatedAt: createdAt}, nil
}

// GetReport returns a report, or nil when it does not exist
func (d *Database) GetReport(ctx context.Context, id string) (*models.Report, error) {
	var (
		r           models.Report
		status      string
		completedAt sql.NullTime
		data        []byte
	)
	err := d.db.QueryRowContext(ctx, `
		SELECT id, status, created_at, completed_at, data
		FROM user_reports
		WHERE id = ?
	`, id).Scan(&r.ID, &status, &r.CreatedAt, &completedAt, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report %s: %w", id, err)
	}

	r.Status = models.ReportStatus(status)
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		r.CompletedAt = &t
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &r.Data); err != nil {
			return nil, fmt.Errorf("failed to decode report %s data: %w", id, err)
		}
	}
	return &r, nil
}

// UpdateReport moves a Running report to a terminal status.
// Rows are only stored for Complete reports.
func (d *Database) UpdateReport(ctx context.Context, id string, status models.ReportStatus, rows []models.ReportRow, completedAt time.Time) error {
	if !status.Terminal() {
		return fmt.Errorf("%w: %s", ErrNotTerminal, status)
	}

	var data interface{}
	if status == models.ReportComplete {
		if rows == nil {
			rows = []models.ReportRow{}
		}
		encoded, err := json.Marshal(rows)
		if err != nil {
			return fmt.Errorf("failed to encode report %s data: %w", id, err)
		}
		data = encoded
	}

	res, err := d.db.ExecContext(ctx, `
		UPDATE user_reports
		SET status = ?, data = ?, completed_at = ?
		WHERE id = ? AND status = ?
	`, status, data, completedAt.UTC(), id, models.ReportRunning)
	affected := common.LogResult(fmt.Sprintf("Update report %s to %s", id, status), res, err, false)
	if err != nil {
		return fmt.Errorf("failed to update report %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrReportNotRunning, id)
	}
	return nil
}
