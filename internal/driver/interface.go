package driver

import (
	"context"
	"database/sql"
)

// Record is one model row keyed by field name.
type Record map[string]any

// Selection names the rows an admin action was invoked on.
type Selection struct {
	// Source is the table or collection, optionally qualified as schema.name.
	Source string
	// Key is the primary key column the IDs refer to.
	Key string
	// IDs are the selected primary key values as sent by the admin UI.
	IDs []string
}

// Driver abstracts the database holding the exported models.
type Driver interface {
	// Name returns the driver name (e.g., "mysql", "postgres").
	Name() string

	// Ping verifies the connection to the database.
	Ping(ctx context.Context) error

	// Fetch loads the selected rows ordered by key. Unknown IDs are ignored.
	Fetch(ctx context.Context, sel Selection) ([]Record, error)

	// Close closes the database connection.
	Close() error
}

// RowStreamer iterates over query results. *sql.Rows satisfies it.
type RowStreamer interface {
	// Columns returns the column names. Safe to call after Query returns.
	Columns() ([]string, error)

	// ColumnTypes returns column information such as database type name.
	ColumnTypes() ([]*sql.ColumnType, error)

	// Next advances to the next row. Returns false when there are no more rows or an error occurs.
	Next() bool

	// Scan copies the columns in the current row into the values pointed at by dest.
	Scan(dest ...any) error

	// Err returns the error, if any, that was encountered during iteration.
	Err() error

	// Close closes the streamer and frees resources.
	Close() error
}
