package common

import (
	"database/sql"
	"strings"

	"github.com/apex/log"
)

// SetLogLevel applies a level name such as "debug" or "warn", keeping info on bad input
func SetLogLevel(level string) {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		log.Warnf("Unknown log level %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// LogResult logs a failed statement or an unexpected number of affected rows.
// It returns the affected row count, or -1 when it is unknown.
func LogResult(msgPrefix string, r sql.Result, e error, e1 bool) int64 {
	if e != nil {
		log.Errorf("%s: query failed: %v", msgPrefix, e)
		return -1
	}
	rows, err := r.RowsAffected()
	if err != nil {
		log.Errorf("%s: failed to get status of db op: %v", msgPrefix, err)
		return -1
	}
	if e1 && rows != 1 {
		log.Warnf("%s: expected to affect 1 row, affected %d", msgPrefix, rows)
	}
	return rows
}
