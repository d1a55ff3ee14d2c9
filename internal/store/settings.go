package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pdf-exporter/internal/settings"
)

const settingsColumns = `id, title, active, header_font_size, body_font_size, page_margin_mm, items_per_page,
	header_background_color, grid_line_color, grid_line_width, font_name, logo,
	show_header, show_logo, show_export_time, show_page_numbers, max_chars_per_line,
	rtl_support, page_size, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSettings(row scanner) (*settings.ExportConfiguration, error) {
	var c settings.ExportConfiguration
	var pageSize string
	err := row.Scan(&c.ID, &c.Title, &c.Active, &c.HeaderFontSize, &c.BodyFontSize, &c.PageMarginMM, &c.ItemsPerPage,
		&c.HeaderBackgroundColor, &c.GridLineColor, &c.GridLineWidth, &c.FontName, &c.Logo,
		&c.ShowHeader, &c.ShowLogo, &c.ShowExportTime, &c.ShowPageNumbers, &c.MaxCharsPerLine,
		&c.RTLSupport, &pageSize, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.PageSize = settings.PageSize(pageSize)
	return &c, nil
}

// SaveSettings validates and stores cfg, inserting when cfg.ID is zero.
// Saving an active record deactivates every other record in the same
// transaction.
func (s *Store) SaveSettings(ctx context.Context, cfg *settings.ExportConfiguration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Truncate(time.Second)
	if cfg.Active {
		if _, err := tx.ExecContext(ctx, s.rebind("UPDATE export_pdf_settings SET active = ? WHERE id <> ?"), false, cfg.ID); err != nil {
			return fmt.Errorf("deactivate settings: %w", err)
		}
	}

	args := []any{cfg.Title, cfg.Active, cfg.HeaderFontSize, cfg.BodyFontSize, cfg.PageMarginMM, cfg.ItemsPerPage,
		cfg.HeaderBackgroundColor, cfg.GridLineColor, cfg.GridLineWidth, cfg.FontName, cfg.Logo,
		cfg.ShowHeader, cfg.ShowLogo, cfg.ShowExportTime, cfg.ShowPageNumbers, cfg.MaxCharsPerLine,
		cfg.RTLSupport, string(cfg.PageSize)}

	if cfg.ID == 0 {
		query := `INSERT INTO export_pdf_settings (title, active, header_font_size, body_font_size, page_margin_mm,
			items_per_page, header_background_color, grid_line_color, grid_line_width, font_name, logo,
			show_header, show_logo, show_export_time, show_page_numbers, max_chars_per_line, rtl_support,
			page_size, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		id, err := s.insert(ctx, tx, query, append(args, now, now)...)
		if err != nil {
			return fmt.Errorf("insert settings: %w", err)
		}
		cfg.ID = id
		cfg.CreatedAt = now
	} else {
		query := `UPDATE export_pdf_settings SET title = ?, active = ?, header_font_size = ?, body_font_size = ?,
			page_margin_mm = ?, items_per_page = ?, header_background_color = ?, grid_line_color = ?,
			grid_line_width = ?, font_name = ?, logo = ?, show_header = ?, show_logo = ?, show_export_time = ?,
			show_page_numbers = ?, max_chars_per_line = ?, rtl_support = ?, page_size = ?, updated_at = ?
			WHERE id = ?`
		res, err := tx.ExecContext(ctx, s.rebind(query), append(args, now, cfg.ID)...)
		if err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("settings %d: %w", cfg.ID, ErrNotFound)
		}
	}
	cfg.UpdatedAt = now

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) insert(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	if s.dialect == "postgres" {
		var id int64
		err := tx.QueryRowContext(ctx, s.rebind(query)+" RETURNING id", args...).Scan(&id)
		return id, err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetSettings(ctx context.Context, id int64) (*settings.ExportConfiguration, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+settingsColumns+" FROM export_pdf_settings WHERE id = ?"), id)
	cfg, err := scanSettings(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settings %d: %w", id, ErrNotFound)
	}
	return cfg, err
}

func (s *Store) ListSettings(ctx context.Context) ([]*settings.ExportConfiguration, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+settingsColumns+" FROM export_pdf_settings ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*settings.ExportConfiguration
	for rows.Next() {
		cfg, err := scanSettings(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

// Active implements settings.Provider. It returns nil unless exactly one
// record is active.
func (s *Store) Active(ctx context.Context) (*settings.ExportConfiguration, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT "+settingsColumns+" FROM export_pdf_settings WHERE active = ? ORDER BY id LIMIT 2"), true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []*settings.ExportConfiguration
	for rows.Next() {
		cfg, err := scanSettings(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(found) != 1 {
		return nil, nil
	}
	return found[0], nil
}
