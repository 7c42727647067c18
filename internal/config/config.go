package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	// Outbound messages
	Source     string
	SourceName string
	APIKey     string

	// Partner account
	PartnerEmail    string
	PartnerPassword string

	HTTPTimeout time.Duration

	DBDriver string
	DBPath   string
	DBDSN    string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded, using process environment")
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		AppEnv:          getEnv("APP_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Source:          getEnv("GUPSHUP_SOURCE", ""),
		SourceName:      getEnv("GUPSHUP_SOURCE_NAME", ""),
		APIKey:          getEnv("GUPSHUP_API_KEY", ""),
		PartnerEmail:    getEnv("GUPSHUP_PARTNER_EMAIL", ""),
		PartnerPassword: getEnv("GUPSHUP_PARTNER_PASSWORD", ""),
		HTTPTimeout:     time.Duration(getEnvInt("GUPSHUP_HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		DBDriver:        strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBPath:          getEnv("DB_PATH", "./gupshup.db"),
		DBDSN:           getEnv("DB_DSN", ""),
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Source == "" {
		errs = append(errs, errors.New("GUPSHUP_SOURCE is required"))
	}
	if c.APIKey == "" {
		errs = append(errs, errors.New("GUPSHUP_API_KEY is required"))
	}
	if c.PartnerEmail == "" || c.PartnerPassword == "" {
		errs = append(errs, errors.New("GUPSHUP_PARTNER_EMAIL and GUPSHUP_PARTNER_PASSWORD are required"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("GUPSHUP_HTTP_TIMEOUT_SECONDS must be positive"))
	}
	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required for sqlite"))
		}
	case "postgres":
		if c.DBDSN == "" {
			errs = append(errs, errors.New("DB_DSN is required for postgres"))
		}
	default:
		errs = append(errs, errors.New("DB_DRIVER must be sqlite or postgres"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("invalid integer setting, using default")
		return fallback
	}
	return n
}
