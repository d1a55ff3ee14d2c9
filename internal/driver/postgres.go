package driver

import (
	"strconv"

	_ "github.com/lib/pq"
)

func NewPostgresDriver(dsn string) *SQLDriver {
	return &SQLDriver{
		name:        "postgres",
		driverName:  "postgres",
		dsn:         dsn,
		quote:       doubleQuote,
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	}
}
