package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"pdf-exporter/internal/config"
	"pdf-exporter/internal/driver"
	"pdf-exporter/internal/settings"
	"pdf-exporter/internal/store"
)

type book struct {
	title     string
	author    string
	language  string
	published time.Time
}

var demoBooks = []book{
	{"Dune", "Frank Herbert", "en", time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)},
	{"Emma", "Jane Austen", "en", time.Date(1815, 12, 23, 0, 0, 0, 0, time.UTC)},
	{"الخبز الحافي", "محمد شكري", "ar", time.Date(1973, 1, 1, 0, 0, 0, 0, time.UTC)},
	{"موسم الهجرة إلى الشمال", "الطيب صالح", "ar", time.Date(1966, 1, 1, 0, 0, 0, 0, time.UTC)},
	{"One Hundred Years of Solitude", "Gabriel García Márquez", "es", time.Date(1967, 5, 30, 0, 0, 0, 0, time.UTC)},
}

func main() {
	username := flag.String("user", "admin", "Staff username to create")
	password := flag.String("password", "admin", "Staff password")
	copies := flag.Int("copies", 10, "How many times the demo books are inserted")
	flag.Parse()

	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	cfg := config.Load()
	ctx := context.Background()

	if err := seedAdmin(ctx, cfg, *username, *password); err != nil {
		slog.Error("Admin seeding failed", "error", err)
		os.Exit(1)
	}
	if err := seedBooks(ctx, cfg, *copies); err != nil {
		slog.Error("Data seeding failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema and data prep complete.")
}

func seedAdmin(ctx context.Context, cfg *config.Config, username, password string) error {
	st, err := store.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.InitSchema(ctx); err != nil {
		return err
	}

	if err := st.CreateUser(ctx, username, password, true); err != nil {
		slog.Warn("Staff user not created", "user", username, "error", err)
	} else {
		slog.Info("Staff user created", "user", username)
	}

	active, err := st.Active(ctx)
	if err != nil {
		return err
	}
	if active != nil {
		slog.Info("Active export settings already present", "title", active.Title)
		return nil
	}
	defaults := settings.New("Default")
	defaults.Active = true
	if err := st.SaveSettings(ctx, defaults); err != nil {
		return err
	}
	slog.Info("Export settings created", "id", defaults.ID)
	return nil
}

func seedBooks(ctx context.Context, cfg *config.Config, copies int) error {
	var sd *driver.SQLDriver
	switch cfg.DataDriver {
	case "sqlite3", "sqlite":
		sd = driver.NewSQLiteDriver(cfg.DataDSN)
	case "mysql":
		sd = driver.NewMySQLDriver(cfg.DataDSN)
	case "postgres", "postgresql":
		sd = driver.NewPostgresDriver(cfg.DataDSN)
	default:
		return fmt.Errorf("seeding is not supported for %q", cfg.DataDriver)
	}
	defer sd.Close()

	db, err := sd.DB()
	if err != nil {
		return err
	}

	// Wait for DB to be ready
	for i := 0; i < 30; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		slog.Info("Waiting for database...", "attempt", i+1)
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS books (
			id INTEGER PRIMARY KEY,
			title VARCHAR(255),
			author VARCHAR(255),
			language VARCHAR(8),
			published DATE
		)
	`)
	if err != nil {
		return err
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM books").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		slog.Info("Books already seeded", "count", count)
		return nil
	}

	vals := []any{}
	placeholders := []string{}
	id := 0
	for c := 0; c < copies; c++ {
		for _, b := range demoBooks {
			id++
			n := len(vals)
			marks := make([]string, 5)
			for k := range marks {
				marks[k] = placeholder(cfg.DataDriver, n+k+1)
			}
			placeholders = append(placeholders, "("+strings.Join(marks, ", ")+")")
			vals = append(vals, id, b.title, b.author, b.language, b.published.Format("2006-01-02"))
		}
	}
	stmt := "INSERT INTO books (id, title, author, language, published) VALUES " + strings.Join(placeholders, ",")
	if _, err := db.ExecContext(ctx, stmt, vals...); err != nil {
		return err
	}
	slog.Info("Book seeding complete", "rows", id)
	return nil
}

func placeholder(driverName string, n int) string {
	if strings.HasPrefix(driverName, "postgres") {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
