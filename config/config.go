package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Upstream UpstreamConfig
	Firebase FirebaseConfig
	Wizard   WizardConfig
	App      AppConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

// DatabaseConfig holds two views of the same database: DSN for the pgx pool
// and the discrete fields for the lib/pq draft store.
type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	ConnectTimeout time.Duration
	PingTimeout    time.Duration
}

type RedisConfig struct {
	URL string
}

type UpstreamConfig struct {
	AIBaseURL      string
	ProjectsAPIURL string
	AITimeout      time.Duration
	SubmitTimeout  time.Duration
	AIRateLimit    float64
	AIRateBurst    int
}

type FirebaseConfig struct {
	CredentialsPath string
	// Optional trusts X-User-Id headers instead of verifying ID tokens.
	Optional bool
}

type WizardConfig struct {
	DraftBackend       string
	DraftTTL           time.Duration
	DraftRetention     time.Duration
	JumpPolicy         string
	SessionIdleTimeout time.Duration
	TaxonomyPath       string
	NotificationLimit  int
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

const (
	DraftBackendRedis    = "redis"
	DraftBackendPostgres = "postgres"
	DraftBackendMemory   = "memory"
)

func (a AppConfig) IsProduction() bool { return a.Environment == "production" }

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	var r reader
	cfg := &Config{
		Server: ServerConfig{
			Port:        r.getEnv("PORT", "8080"),
			CORSOrigins: r.getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			DSN:      r.getEnv("DB_DSN", ""),
			Host:     r.getEnv("DB_HOST", "localhost"),
			Port:     r.getEnvAsInt("DB_PORT", 5432),
			User:     r.getEnv("DB_USER", "postgres"),
			Password: r.getEnv("DB_PASSWORD", ""),
			Name:     r.getEnv("DB_NAME", "innovation_wizard"),
			SSLMode:  r.getEnv("DB_SSLMODE", "disable"),

			ConnectTimeout: r.getEnvAsDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
			PingTimeout:    r.getEnvAsDuration("DB_PING_TIMEOUT", 2*time.Second),
		},
		Redis: RedisConfig{
			URL: r.getEnv("REDIS_URL", ""),
		},
		Upstream: UpstreamConfig{
			AIBaseURL:      r.getEnv("AI_BASE_URL", ""),
			ProjectsAPIURL: r.getEnv("PROJECTS_API_URL", ""),
			AITimeout:      r.getEnvAsDuration("AI_TIMEOUT", 60*time.Second),
			SubmitTimeout:  r.getEnvAsDuration("SUBMIT_TIMEOUT", 30*time.Second),
			AIRateLimit:    r.getEnvAsFloat("AI_RATE_LIMIT", 5),
			AIRateBurst:    r.getEnvAsInt("AI_RATE_BURST", 10),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: r.getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			Optional:        r.getEnvAsBool("AUTH_OPTIONAL", false),
		},
		Wizard: WizardConfig{
			DraftBackend:       strings.ToLower(r.getEnv("DRAFT_BACKEND", DraftBackendRedis)),
			DraftTTL:           r.getEnvAsDuration("DRAFT_TTL", 7*24*time.Hour),
			DraftRetention:     r.getEnvAsDuration("DRAFT_RETENTION", 30*24*time.Hour),
			JumpPolicy:         r.getEnv("JUMP_POLICY", "reachable"),
			SessionIdleTimeout: r.getEnvAsDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour),
			TaxonomyPath:       r.getEnv("TAXONOMY_PATH", ""),
			NotificationLimit:  r.getEnvAsInt("NOTIFICATION_LIMIT", 20),
		},
		App: AppConfig{
			Environment: r.getEnv("APP_ENV", "development"),
			LogLevel:    r.getEnv("LOG_LEVEL", "info"),
			Version:     r.getEnv("APP_VERSION", "1.0.0"),
		},
	}
	if err := errors.Join(r.errs...); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks what every binary needs: the draft backend and its connection.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}

	switch c.Wizard.DraftBackend {
	case DraftBackendRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when DRAFT_BACKEND=redis"))
		}
	case DraftBackendPostgres:
		if c.Database.Host == "" {
			errs = append(errs, errors.New("DB_HOST is required when DRAFT_BACKEND=postgres"))
		}
	case DraftBackendMemory:
	default:
		errs = append(errs, fmt.Errorf("DRAFT_BACKEND must be redis, postgres or memory, got %q", c.Wizard.DraftBackend))
	}

	if c.Database.ConnectTimeout <= 0 || c.Database.PingTimeout <= 0 {
		errs = append(errs, errors.New("DB_CONNECT_TIMEOUT and DB_PING_TIMEOUT must be positive"))
	}
	if c.Wizard.SessionIdleTimeout <= 0 {
		errs = append(errs, errors.New("SESSION_IDLE_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// ValidateAPI adds the checks of the HTTP server: upstream URLs and auth.
func (c *Config) ValidateAPI() error {
	errs := []error{c.Validate()}
	errs = append(errs,
		checkURL("AI_BASE_URL", c.Upstream.AIBaseURL),
		checkURL("PROJECTS_API_URL", c.Upstream.ProjectsAPIURL),
	)

	switch {
	case c.App.IsProduction() && c.Firebase.Optional:
		errs = append(errs, errors.New("AUTH_OPTIONAL must not be set in production"))
	case !c.Firebase.Optional && c.Firebase.CredentialsPath == "":
		errs = append(errs, errors.New("FIREBASE_CREDENTIALS_PATH is required unless AUTH_OPTIONAL=true"))
	}
	return errors.Join(errs...)
}

func checkURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", key, raw)
	}
	return nil
}

// reader collects malformed values instead of silently using defaults.
type reader struct {
	errs []error
}

func (r *reader) getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func (r *reader) getEnvAsInt(key string, defaultValue int) int {
	valueStr := r.getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid integer %q", key, valueStr))
		return defaultValue
	}
	return value
}

func (r *reader) getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := r.getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid boolean %q", key, valueStr))
		return defaultValue
	}
	return value
}

func (r *reader) getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := r.getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid number %q", key, valueStr))
		return defaultValue
	}
	return value
}

func (r *reader) getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := r.getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid duration %q", key, valueStr))
		return defaultValue
	}
	return value
}

func (r *reader) getEnvAsList(key string, defaultValue []string) []string {
	valueStr := r.getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
