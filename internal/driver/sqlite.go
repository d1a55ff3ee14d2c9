package driver

import (
	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteDriver opens a SQLite database file. The DSN accepts the
// go-sqlite3 URI parameters, e.g. "file:data.db?_busy_timeout=5000".
func NewSQLiteDriver(dsn string) *SQLDriver {
	return &SQLDriver{
		name:        "sqlite3",
		driverName:  "sqlite3",
		dsn:         dsn,
		quote:       doubleQuote,
		placeholder: questionMark,
	}
}
