package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"pdf-exporter/internal/config"
	"pdf-exporter/internal/fonts"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	fontURL := flag.String("font-url", "", "URL to download an additional font from (.ttf or .zip)")
	fontName := flag.String("font-name", "", `Name for the font file (e.g. "CustomFont.ttf")`)
	dir := flag.String("fonts-dir", cfg.FontsDir, "Directory fonts are installed into")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	list := []fonts.Font{{Name: fonts.DefaultName, URL: fonts.DefaultURL}}
	if *fontURL != "" {
		custom := fonts.Custom(*fontURL, *fontName)
		slog.Info("Adding custom font", "font", custom.Name, "url", custom.URL)
		list = append(list, custom)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	inst := &fonts.Installer{Dir: *dir, Concurrency: 2}
	results, err := inst.Install(ctx, list)
	if err != nil {
		slog.Error("Font setup failed", "error", err)
		os.Exit(1)
	}

	for _, r := range results {
		switch r.Status {
		case fonts.StatusFailed:
			fmt.Printf("FAILED     %s: %v (download %s manually into %s)\n", r.Font.Name, r.Err, r.Font.URL, *dir)
		case fonts.StatusExists:
			fmt.Printf("EXISTS     %s at %s\n", r.Font.Name, r.Path)
		default:
			fmt.Printf("INSTALLED  %s at %s\n", r.Font.Name, r.Path)
		}
	}
	fmt.Printf("Font setup complete. Fonts directory: %s\n", *dir)
}
