package driver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pdf-exporter/internal/security"
)

// New returns the driver registered under name.
func New(name, dsn string) (Driver, error) {
	switch name {
	case "mysql":
		return NewMySQLDriver(dsn), nil
	case "postgres", "postgresql":
		return NewPostgresDriver(dsn), nil
	case "sqlite3", "sqlite":
		return NewSQLiteDriver(dsn), nil
	case "mongo", "mongodb":
		return NewMongoDriver(dsn), nil
	}
	return nil, fmt.Errorf("unsupported driver %q", name)
}

func validateSelection(sel Selection) error {
	if err := security.ValidateIdentifier(sel.Source); err != nil {
		return err
	}
	return security.ValidateIdentifier(sel.Key)
}

// Fetch loads the selected rows inside a read-only transaction so every row
// comes from the same snapshot.
func (d *SQLDriver) Fetch(ctx context.Context, sel Selection) ([]Record, error) {
	if err := validateSelection(sel); err != nil {
		return nil, err
	}
	if len(sel.IDs) == 0 {
		return nil, nil
	}

	db, err := d.DB()
	if err != nil {
		return nil, err
	}

	marks := make([]string, len(sel.IDs))
	args := make([]any, len(sel.IDs))
	for i, id := range sel.IDs {
		marks[i] = d.placeholder(i + 1)
		args[i] = id
	}
	key := d.quoteName(sel.Key)
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s IN (%s) ORDER BY %s",
		d.quoteName(sel.Source), key, strings.Join(marks, ", "), key)

	tx, err := db.BeginTx(ctx, &sql.TxOptions{
		ReadOnly:  d.name != "sqlite3",
		Isolation: d.isolation(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(ctx, rows)
	if err != nil {
		return nil, err
	}
	_ = tx.Commit()
	return records, nil
}

func (d *SQLDriver) isolation() sql.IsolationLevel {
	if d.name == "sqlite3" {
		return sql.LevelDefault
	}
	return sql.LevelRepeatableRead
}

// scanRecords reads any result shape into Records. Byte slices from text
// columns are converted to strings.
func scanRecords(ctx context.Context, rows RowStreamer) ([]Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	values := make([]any, len(columns))
	scanArgs := make([]any, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	var records []Record
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("row scan failed: %w", err)
		}

		rec := make(Record, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				rec[col] = string(b)
			} else {
				rec[col] = values[i]
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return records, nil
}
