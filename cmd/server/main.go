package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pdf-exporter/internal/admin"
	"pdf-exporter/internal/api"
	"pdf-exporter/internal/config"
	"pdf-exporter/internal/driver"
	"pdf-exporter/internal/render"
	"pdf-exporter/internal/storage"
	"pdf-exporter/internal/store"
)

var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "Show version")
	flag.Parse()
	if *showVersion {
		fmt.Printf("pdf-exporter %s\n", version)
		os.Exit(0)
	}

	_ = godotenv.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	slog.Info("Starting PDF exporter", "env", cfg.AppEnv, "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// 1. Admin database
	st, err := store.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.InitSchema(ctx); err != nil {
		return err
	}
	slog.Info("Database connected & schema initialized", "driver", cfg.DBDriver)

	// 2. Model data source
	data, err := driver.New(cfg.DataDriver, cfg.DataDSN)
	if err != nil {
		return err
	}
	defer data.Close()
	if err := data.Ping(ctx); err != nil {
		return fmt.Errorf("data source: %w", err)
	}

	// 3. Media storage
	media, err := newMedia(ctx, cfg)
	if err != nil {
		return err
	}

	// 4. Exporter and model registry
	exp := &admin.Exporter{
		Settings: st,
		Renderer: &render.Renderer{
			Fonts: render.NewFontRegistry(cfg.FontsDir),
			Media: media,
		},
	}
	if cfg.ArchiveExports {
		exp.Archive = media
	}

	site := admin.NewSite(data, exp)
	models, err := admin.LoadModelsFile(cfg.ModelsFile)
	if err != nil {
		return fmt.Errorf("load models: %w", err)
	}
	for _, m := range models {
		if err := site.Register(m); err != nil {
			return err
		}
	}
	slog.Info("Models registered", "count", len(models), "file", cfg.ModelsFile)

	if cfg.APISecret == "" && cfg.JWTSecret == "" {
		slog.Warn("API_SECRET and JWT_SECRET are empty, admin endpoints are open")
	}

	// 5. HTTP
	handler := api.NewHandler(site, st, st, api.Options{
		Env:            cfg.AppEnv,
		AllowedOrigins: cfg.AllowedOrigins,
		APISecret:      cfg.APISecret,
		JWTSecret:      cfg.JWTSecret,
		TokenTTL:       cfg.TokenTTL,
		ExportTimeout:  cfg.ExportTimeout,
		MaxConcurrent:  cfg.MaxConcurrentExports,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newMedia(ctx context.Context, cfg *config.Config) (storage.Provider, error) {
	switch cfg.MediaStorage {
	case "local":
		return storage.NewLocalProvider(cfg.MediaRoot), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, errors.New("S3_BUCKET is required for s3 media storage")
		}
		client, err := storage.NewS3Client(ctx, storage.S3Options{
			Region:          cfg.AWSRegion,
			Endpoint:        cfg.S3Endpoint,
			PathStyle:       cfg.S3PathStyle,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return storage.NewS3Provider(client, cfg.S3Bucket), nil
	}
	return nil, fmt.Errorf("unsupported media storage %q", cfg.MediaStorage)
}
