package driver

import (
	"context"
	"database/sql"
	"strings"
	"sync"
)

// SQLDriver is a lazily connected database/sql pool. The dialect functions
// cover the differences between MySQL, PostgreSQL and SQLite.
type SQLDriver struct {
	name       string
	driverName string
	dsn        string

	quote       func(ident string) string
	placeholder func(n int) string

	mu sync.Mutex
	db *sql.DB
}

func (d *SQLDriver) Name() string {
	return d.name
}

// DB returns the connection pool, opening it on first use.
func (d *SQLDriver) DB() (*sql.DB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		db, err := sql.Open(d.driverName, d.dsn)
		if err != nil {
			return nil, err
		}
		d.db = db
	}
	return d.db, nil
}

func (d *SQLDriver) Ping(ctx context.Context) error {
	db, err := d.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Query runs a statement built by this package and streams the result.
func (d *SQLDriver) Query(ctx context.Context, query string, args ...any) (RowStreamer, error) {
	db, err := d.DB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *SQLDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db != nil {
		err := d.db.Close()
		d.db = nil
		return err
	}
	return nil
}

// quoteName quotes each part of a possibly qualified name.
func (d *SQLDriver) quoteName(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = d.quote(p)
	}
	return strings.Join(parts, ".")
}

func questionMark(int) string { return "?" }

func doubleQuote(ident string) string { return `"` + ident + `"` }
