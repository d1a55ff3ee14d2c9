package driver

import (
	_ "github.com/go-sql-driver/mysql"
)

// NewMySQLDriver connects lazily using a go-sql-driver DSN. Add
// parseTime=true to the DSN so DATETIME columns scan as time.Time.
func NewMySQLDriver(dsn string) *SQLDriver {
	return &SQLDriver{
		name:        "mysql",
		driverName:  "mysql",
		dsn:         dsn,
		quote:       func(ident string) string { return "`" + ident + "`" },
		placeholder: questionMark,
	}
}
