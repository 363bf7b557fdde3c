package configs

import (
	"auction-normalizer-service/internal/core/domain"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Host names that only resolve inside the compose network.
var dockerOnlyHosts = map[string]bool{"postgres": true, "db": true, "base": true}

type DBconfig struct {
	URL         string
	MaxConns    int
	AutoMigrate bool
}

// PipelineConfig holds the knobs of one normalization pass.
type PipelineConfig struct {
	BacklogLimit      int
	SelectionPolicy   domain.SelectionPolicy
	DetailSourceTag   string
	ConflictKey       domain.ConflictKeyStrategy
	MergePolicy       domain.MergePolicy
	SchemaVersion     int
	RequireCoreFields bool
	StrictMode        bool
	RulesFile         string
	MaxDocumentBytes  int64
}

// RabbitMQConfig is optional; an empty URL disables run reports.
type RabbitMQConfig struct {
	URL string
}

type MetricsConfig struct {
	PushgatewayURL string
}

type StdoutLogConfig struct {
	Level string
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

type AppConfig struct {
	AppName      string
	Database     DBconfig
	Pipeline     PipelineConfig
	RabbitMQ     RabbitMQConfig
	Metrics      MetricsConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig reads the configuration from the environment, after loading the
// optional .env file.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
		}
		log.Printf("Info: no .env file found (path: %v), using the process environment.\n", envPath)
	}

	cfg := &AppConfig{}
	cfg.AppName = getEnvAsString("APP_NAME", "auction-normalizer-service")

	cfg.Database.URL, err = resolveDatabaseURL()
	if err != nil {
		return nil, err
	}
	cfg.Database.MaxConns = getEnvAsInt("DB_MAX_CONNS", 4)
	cfg.Database.AutoMigrate = getEnvAsBool("AUTO_MIGRATE", false)

	if cfg.Pipeline, err = loadPipelineConfig(); err != nil {
		return nil, err
	}

	cfg.RabbitMQ.URL = getEnvAsString("RABBITMQ_URL", "")
	cfg.Metrics.PushgatewayURL = getEnvAsString("PUSHGATEWAY_URL", "")

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "info")

	return cfg, nil
}

func loadPipelineConfig() (PipelineConfig, error) {
	p := PipelineConfig{
		BacklogLimit:      getEnvAsInt("BACKLOG_LIMIT", 20),
		DetailSourceTag:   getEnvAsString("DETAIL_SOURCE_TAG", "BOE_DETAIL"),
		SchemaVersion:     getEnvAsInt("SCHEMA_VERSION", 1),
		RequireCoreFields: getEnvAsBool("REQUIRE_CORE_FIELDS", false),
		StrictMode:        getEnvAsBool("STRICT_MODE", false),
		RulesFile:         getEnvAsString("EXTRACTION_RULES_FILE", ""),
		MaxDocumentBytes:  int64(getEnvAsInt("MAX_DOCUMENT_BYTES", 20<<20)),
	}
	if p.BacklogLimit <= 0 {
		return p, fmt.Errorf("BACKLOG_LIMIT must be positive, got %d", p.BacklogLimit)
	}
	if p.SchemaVersion <= 0 {
		return p, fmt.Errorf("SCHEMA_VERSION must be positive, got %d", p.SchemaVersion)
	}

	var err error
	if p.SelectionPolicy, err = domain.ParseSelectionPolicy(getEnvAsString("SELECTION_POLICY", "heuristic")); err != nil {
		return p, fmt.Errorf("invalid SELECTION_POLICY: %w", err)
	}
	if p.ConflictKey, err = domain.ParseConflictKeyStrategy(getEnvAsString("CONFLICT_KEY", "identifier")); err != nil {
		return p, fmt.Errorf("invalid CONFLICT_KEY: %w", err)
	}
	if p.MergePolicy, err = domain.ParseMergePolicy(getEnvAsString("MERGE_POLICY", "overwrite")); err != nil {
		return p, fmt.Errorf("invalid MERGE_POLICY: %w", err)
	}
	return p, nil
}

// resolveDatabaseURL prefers DATABASE_URL and falls back to the libpq PG* variables.
// A password is required either way.
func resolveDatabaseURL() (string, error) {
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		if pass, ok := u.User.Password(); !ok || strings.TrimSpace(pass) == "" {
			return "", fmt.Errorf("postgres password is missing or invalid, check DATABASE_URL")
		}
		if host := u.Hostname(); dockerOnlyHosts[host] && os.Getenv("DOCKER_ENV") == "" {
			log.Printf("Warning: postgres host %q is not resolvable locally, falling back to localhost\n", host)
			if p := u.Port(); p != "" {
				u.Host = net.JoinHostPort("localhost", p)
			} else {
				u.Host = "localhost"
			}
		}
		return u.String(), nil
	}

	pass := os.Getenv("PGPASSWORD")
	if strings.TrimSpace(pass) == "" {
		return "", fmt.Errorf("postgres password is missing or invalid, check PGPASSWORD")
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(getEnvAsString("PGUSER", "postgres"), pass),
		Host:   net.JoinHostPort(getEnvAsString("PGHOST", "localhost"), getEnvAsString("PGPORT", "5432")),
		Path:   "/" + getEnvAsString("PGDATABASE", "postgres"),
	}
	return u.String(), nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt logs and falls back to the default when the value is not an int.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}
