package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// AppEnv is the running environment (development/production).
	AppEnv string
	// ServerPort is the HTTP port to listen on.
	ServerPort string

	// DBDriver and DBDSN locate the admin database holding users and export settings.
	DBDriver string
	DBDSN    string
	// DataDriver and DataDSN locate the database the exported models are read from.
	DataDriver string
	DataDSN    string
	// ModelsFile is the YAML file listing exportable models.
	ModelsFile string

	// FontsDir holds TrueType fonts referenced by export settings.
	FontsDir string

	// MediaStorage selects where logos are read and exports archived: "local" or "s3".
	MediaStorage string
	// MediaRoot is the directory for local media.
	MediaRoot string
	// AWSRegion is the AWS region for S3 media.
	AWSRegion string
	// S3Bucket is the media bucket name.
	S3Bucket string
	// S3Endpoint is an optional custom endpoint (for non-AWS S3 providers like MinIO/Contabo).
	S3Endpoint string
	// S3PathStyle enables path-style addressing (required for some S3 providers).
	S3PathStyle bool
	// Static credentials; the default AWS chain is used when empty.
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	// ArchiveExports stores a copy of every generated document under exports/.
	ArchiveExports bool
	// MaxConcurrentExports bounds renders running at the same time.
	MaxConcurrentExports int64
	// ExportTimeout is the maximum duration of one export request.
	ExportTimeout time.Duration

	// APISecret is the shared secret for HMAC-SHA256 request signing.
	APISecret string
	// JWTSecret signs staff session tokens.
	JWTSecret string
	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration
	// AllowedOrigins is a list of CORS allowed domains.
	AllowedOrigins []string
}

func Load() *Config {
	return &Config{
		AppEnv:               getEnv("APP_ENV", "development"),
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		DBDriver:             getEnv("DB_DRIVER", "sqlite3"),
		DBDSN:                getEnv("DB_DSN", "./admin.db"),
		DataDriver:           getEnv("DATA_DRIVER", "sqlite3"),
		DataDSN:              getEnv("DATA_DSN", "./admin.db"),
		ModelsFile:           getEnv("MODELS_FILE", "./models.yaml"),
		FontsDir:             getEnv("FONTS_DIR", "./static/assets/fonts"),
		MediaStorage:         getEnv("MEDIA_STORAGE", "local"),
		MediaRoot:            getEnv("MEDIA_ROOT", "./media"),
		AWSRegion:            getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:             getEnv("S3_BUCKET", ""),
		S3Endpoint:           getEnv("S3_ENDPOINT", ""),
		S3PathStyle:          getEnvBool("S3_PATH_STYLE", false),
		AWSAccessKeyID:       getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		ArchiveExports:       getEnvBool("ARCHIVE_EXPORTS", false),
		MaxConcurrentExports: int64(getEnvInt("MAX_CONCURRENT_EXPORTS", 4)),
		ExportTimeout:        getEnvDuration("EXPORT_TIMEOUT", 2*time.Minute),
		APISecret:            getEnv("API_SECRET", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		TokenTTL:             getEnvDuration("TOKEN_TTL", 12*time.Hour),
		AllowedOrigins:       getEnvSlice("ALLOWED_ORIGINS", []string{"*"}),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvSlice splits a comma separated value, dropping empty entries.
func getEnvSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
