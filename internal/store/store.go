// Package store persists admin users and PDF export settings in the admin
// database (SQLite, MySQL or PostgreSQL).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("record not found")

type Store struct {
	db      *sql.DB
	dialect string
}

// Open connects to the admin database. driverName is one of "sqlite3",
// "mysql" or "postgres".
func Open(ctx context.Context, driverName, dsn string) (*Store, error) {
	switch driverName {
	case "sqlite3", "mysql", "postgres":
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driverName)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if driverName == "sqlite3" {
		// One writer at a time; avoids SQLITE_BUSY under concurrent saves.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}
	return &Store{db: db, dialect: driverName}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders for the PostgreSQL driver.
func (s *Store) rebind(query string) string {
	if s.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) idColumn() string {
	switch s.dialect {
	case "mysql":
		return "BIGINT AUTO_INCREMENT PRIMARY KEY"
	case "postgres":
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// InitSchema creates the tables if they do not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	id := s.idColumn()
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id ` + id + `,
			username VARCHAR(150) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			is_staff BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS export_pdf_settings (
			id ` + id + `,
			title VARCHAR(100) NOT NULL,
			active BOOLEAN NOT NULL DEFAULT FALSE,
			header_font_size INTEGER NOT NULL,
			body_font_size INTEGER NOT NULL,
			page_margin_mm DOUBLE PRECISION NOT NULL,
			items_per_page INTEGER NOT NULL,
			header_background_color VARCHAR(7) NOT NULL,
			grid_line_color VARCHAR(7) NOT NULL,
			grid_line_width DOUBLE PRECISION NOT NULL,
			font_name VARCHAR(100) NOT NULL,
			logo VARCHAR(255) NOT NULL DEFAULT '',
			show_header BOOLEAN NOT NULL,
			show_logo BOOLEAN NOT NULL,
			show_export_time BOOLEAN NOT NULL,
			show_page_numbers BOOLEAN NOT NULL,
			max_chars_per_line INTEGER NOT NULL,
			rtl_support BOOLEAN NOT NULL,
			page_size VARCHAR(10) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	slog.Debug("Store schema ready", "dialect", s.dialect)
	return nil
}
