package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	ServiceName     string
	LogLevel        string
	LogFormat       string
	ListLimitMax    int
	IDNode          int64
	DB              DBConfig
}

// DBConfig describes how to reach the customer store.
type DBConfig struct {
	Name           string
	Host           string
	Port           string
	User           string
	Password       string
	Schema         string
	SSLMode        string
	MaxConns       int32
	AcquireTimeout time.Duration
	ConnectRetries int
}

var (
	// ErrMissingRequired is wrapped by Load when a required variable is unset.
	ErrMissingRequired = errors.New("missing required environment variables")
	// ErrInvalidValue is wrapped by Load when a numeric variable does not parse.
	ErrInvalidValue = errors.New("invalid environment variables")
)

var requiredDBKeys = []string{"DB_DATABASE", "DB_HOSTNAME", "DB_PORT", "DB_UID", "DB_PWD", "DB_SCHEMA"}

// Load reads an optional .env file, then builds Config from the environment.
// Every database setting is required; Load reports all missing keys at once.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() (Config, error) {
	var missing []string
	for _, key := range requiredDBKeys {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}

	var invalid []string
	intVar := func(key string, def int) int {
		n, err := envInt(key, def)
		if err != nil {
			invalid = append(invalid, key)
		}
		return n
	}
	durationVar := func(key string, def time.Duration) time.Duration {
		d, err := envDuration(key, def)
		if err != nil {
			invalid = append(invalid, key)
		}
		return d
	}

	cfg := Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8888"),
		ShutdownTimeout: durationVar("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		CORSOrigins:     envList("CORS_ORIGINS", []string{"*"}),
		ServiceName:     envOrDefault("SERVICE_NAME", "quotation-crm"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ListLimitMax:    intVar("LIST_LIMIT_MAX", 1000),
		IDNode:          int64(intVar("ID_NODE", 1)),
		DB: DBConfig{
			Name:           strings.TrimSpace(os.Getenv("DB_DATABASE")),
			Host:           strings.TrimSpace(os.Getenv("DB_HOSTNAME")),
			Port:           strings.TrimSpace(os.Getenv("DB_PORT")),
			User:           strings.TrimSpace(os.Getenv("DB_UID")),
			Password:       os.Getenv("DB_PWD"),
			Schema:         strings.TrimSpace(os.Getenv("DB_SCHEMA")),
			SSLMode:        envOrDefault("DB_SSLMODE", "disable"),
			MaxConns:       int32(intVar("DB_MAX_CONNS", 5)),
			AcquireTimeout: durationVar("DB_ACQUIRE_TIMEOUT_SECONDS", 5*time.Second),
			ConnectRetries: intVar("DB_CONNECT_RETRIES", 1),
		},
	}
	if _, err := strconv.Atoi(cfg.DB.Port); err != nil {
		invalid = append(invalid, "DB_PORT")
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidValue, strings.Join(invalid, ", "))
	}
	return cfg, nil
}

// ConnString renders a postgres URL. The password and every other component are escaped by net/url.
func (c DBConfig) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.Name,
	}
	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt returns def when key is unset and an error when it is set but not an integer.
func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// envDuration reads a whole number of seconds.
func envDuration(key string, def time.Duration) (time.Duration, error) {
	seconds, err := envInt(key, int(def/time.Second))
	if err != nil {
		return def, err
	}
	return time.Duration(seconds) * time.Second, nil
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
