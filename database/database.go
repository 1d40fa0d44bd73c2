package database

import (
	"context"
	"database/sql"
	"fmt"

	"storemonitor/common"
	"storemonitor/config"

	"github.com/apex/log"
)

// Database handles all database operations
type Database struct {
	db *sql.DB
}

// NewDatabase creates a new database connection
func NewDatabase(cfg *config.Config) (*Database, error) {
	db, err := common.DBConnect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Database{db: db}, nil
}

// New wraps an already opened pool
func New(db *sql.DB) *Database {
	return &Database{db: db}
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// Ping checks the database is reachable
func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

var schema = []struct {
	table string
	query string
}{
	{"store_activity", `
		CREATE TABLE IF NOT EXISTS store_activity (
			id BIGINT NOT NULL AUTO_INCREMENT,
			store_id VARCHAR(64) NOT NULL,
			timestamp_utc DATETIME(6) NOT NULL,
			status ENUM('active', 'inactive') NOT NULL,
			PRIMARY KEY (id),
			INDEX store_ts_index (store_id, timestamp_utc)
		)`},
	{"store_business_hours", `
		CREATE TABLE IF NOT EXISTS store_business_hours (
			id BIGINT NOT NULL AUTO_INCREMENT,
			store_id VARCHAR(64) NOT NULL,
			day TINYINT NULL,
			start_time_local TIME NOT NULL,
			end_time_local TIME NOT NULL,
			PRIMARY KEY (id),
			INDEX store_id_index (store_id)
		)`},
	{"store_timezone", `
		CREATE TABLE IF NOT EXISTS store_timezone (
			store_id VARCHAR(64) NOT NULL,
			timezone_str VARCHAR(64) NOT NULL,
			PRIMARY KEY (store_id)
		)`},
	{"user_reports", `
		CREATE TABLE IF NOT EXISTS user_reports (
			id VARCHAR(36) NOT NULL,
			status ENUM('Running', 'Complete', 'Failed') NOT NULL DEFAULT 'Running',
			created_at DATETIME(6) NOT NULL,
			completed_at DATETIME(6) NULL,
			data JSON NULL,
			PRIMARY KEY (id),
			INDEX status_index (status)
		)`},
}

// EnsureTables creates the tables if they don't exist
func (d *Database) EnsureTables(ctx context.Context) error {
	for _, s := range schema {
		if _, err := d.db.ExecContext(ctx, s.query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", s.table, err)
		}
		log.Infof("Table %s ensured", s.table)
	}
	return nil
}
