// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"

	NotifierHTTP     = "http"
	NotifierRabbitMQ = "rabbitmq"
	NotifierNone     = "none"
)

type Config struct {
	Port            string
	StorageLocation string
	MaxUploadBytes  int64

	MetadataBackend string
	Mongo           MongoConfig
	Postgres        PostgresConfig
	SQLitePath      string

	Notifier           string
	AnalysisServiceURL string
	AnalysisTimeout    time.Duration
	RabbitMQ           RabbitMQConfig
	NotifyWorkers      int
	NotifyQueueSize    int

	LogLevel string
	LogJSON  bool
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RabbitMQConfig struct {
	Host  string
	Port  string
	User  string
	Pass  string
	Queue string
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return FromLookup(os.Getenv)
}

// FromLookup builds a Config from getenv, applying defaults for empty values.
func FromLookup(getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	var errs []error
	intVar := func(key string, def int64) int64 {
		raw := env(key, "")
		if raw == "" {
			return def
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return n
	}
	boolVar := func(key string, def bool) bool {
		raw := env(key, "")
		if raw == "" {
			return def
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return b
	}
	durationVar := func(key string, def time.Duration) time.Duration {
		raw := env(key, "")
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return d
	}

	cfg := Config{
		Port:            env("PORT", "5001"),
		StorageLocation: env("VIDEO_STORAGE_LOCATION", "./uploads"),
		MaxUploadBytes:  intVar("MAX_UPLOAD_BYTES", 500<<20),

		MetadataBackend: strings.ToLower(env("METADATA_BACKEND", BackendMongo)),
		Mongo: MongoConfig{
			URI:        env("MONGO_URI", "mongodb://localhost:27017"),
			Database:   env("MONGO_DATABASE", "fluent"),
			Collection: env("MONGO_COLLECTION", "videos"),
		},
		Postgres: PostgresConfig{
			Host:     env("DB_HOST", "db"),
			Port:     env("DB_PORT", "5432"),
			User:     env("DB_USER", "user"),
			Password: env("DB_PASS", "password"),
			Name:     env("DB_NAME", "video_gateway"),
		},
		SQLitePath: env("SQLITE_PATH", "./videos.db"),

		Notifier:           strings.ToLower(env("ANALYSIS_NOTIFIER", NotifierHTTP)),
		AnalysisServiceURL: env("VIDEO_ANALYSIS_SERVICE_URL", ""),
		AnalysisTimeout:    durationVar("ANALYSIS_TIMEOUT", 30*time.Second),
		RabbitMQ: RabbitMQConfig{
			Host:  env("RABBITMQ_HOST", "rabbitmq"),
			Port:  env("RABBITMQ_PORT", "5672"),
			User:  env("RABBITMQ_USER", "guest"),
			Pass:  env("RABBITMQ_PASS", "guest"),
			Queue: env("ANALYSIS_QUEUE", "video_analysis_queue"),
		},
		NotifyWorkers:   int(intVar("NOTIFY_WORKERS", 2)),
		NotifyQueueSize: int(intVar("NOTIFY_QUEUE_SIZE", 64)),

		LogLevel: strings.ToLower(env("LOG_LEVEL", "info")),
		LogJSON:  boolVar("LOG_JSON", false),
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be caught while parsing.
func (c Config) Validate() error {
	var errs []error
	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("PORT: invalid port %q", c.Port))
	}
	if c.StorageLocation == "" {
		errs = append(errs, errors.New("VIDEO_STORAGE_LOCATION: must not be empty"))
	}
	if c.MaxUploadBytes < 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES: must not be negative"))
	}
	switch c.MetadataBackend {
	case BackendMongo, BackendPostgres, BackendSQLite, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("METADATA_BACKEND: unknown backend %q", c.MetadataBackend))
	}
	switch c.Notifier {
	case NotifierHTTP, NotifierRabbitMQ, NotifierNone:
	default:
		errs = append(errs, fmt.Errorf("ANALYSIS_NOTIFIER: unknown notifier %q", c.Notifier))
	}
	if c.NotifyWorkers < 1 {
		errs = append(errs, errors.New("NOTIFY_WORKERS: must be at least 1"))
	}
	if c.NotifyQueueSize < 0 {
		errs = append(errs, errors.New("NOTIFY_QUEUE_SIZE: must not be negative"))
	}
	if c.AnalysisTimeout < 0 {
		errs = append(errs, errors.New("ANALYSIS_TIMEOUT: must not be negative"))
	}
	return errors.Join(errs...)
}
