package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port string

	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	SecretKey       string
	Accounts        bool
	StrictOwnership bool
	SessionTTL      time.Duration
	SecureCookies   bool

	LogLevel string
}

// Load reads the configuration from the environment. Postgres settings may be
// given as a single DATABASE_URL or as the individual user/password/host/port/dbname
// variables.
func Load() (Config, error) {
	cfg := Config{
		Port:       getenv("PORT", "8080"),
		SQLitePath: getenv("SQLITE_PATH", "task.db"),
		SecretKey:  env("SECRET_KEY"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Accounts, err = boolEnv("NOTES_ACCOUNTS", true); err != nil {
		return Config{}, err
	}
	if cfg.StrictOwnership, err = boolEnv("NOTES_STRICT_OWNERSHIP", false); err != nil {
		return Config{}, err
	}
	if cfg.SecureCookies, err = boolEnv("SECURE_COOKIES", false); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}

	cfg.DatabaseURL = env("DATABASE_URL")
	if cfg.DatabaseURL == "" && env("host") != "" {
		cfg.DatabaseURL = postgresURL()
	}

	cfg.DBDriver = strings.ToLower(env("DB_DRIVER"))
	if cfg.DBDriver == "" {
		cfg.DBDriver = DriverSQLite
		if cfg.DatabaseURL != "" {
			cfg.DBDriver = DriverPostgres
		}
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DB_DRIVER=postgres requires DATABASE_URL or host/dbname")
		}
	case DriverSQLite:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.Accounts && cfg.SecretKey == "" {
		return Config{}, errors.New("SECRET_KEY must be set when accounts are enabled")
	}
	return cfg, nil
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func postgresURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(env("user"), env("password")),
		Host:     env("host"),
		Path:     "/" + env("dbname"),
		RawQuery: "sslmode=" + getenv("sslmode", "require"),
	}
	if port := env("port"); port != "" {
		u.Host += ":" + port
	}
	return u.String()
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getenv(key, fallback string) string {
	if v := env(key); v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := env(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := env(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
