package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"

	"zungenrede/internal/domain"
	"zungenrede/internal/domain/entities"
	"zungenrede/internal/infrastructure/storage"
)

const (
	defaultPrefix   = "!"
	defaultLocale   = "en"
	defaultLogLevel = "info"
)

type Config struct {
	Token          string
	StorageFile    string
	AllowedUsers   []entities.Principal
	AuthorizeReads bool
	CommandPrefix  string
	Locale         string
	LogLevel       logrus.Level
	DatabaseURL    string
}

// Load reads the configuration from an optional .env file and the process
// environment, then validates it. Errors are *domain.ConfigurationError.
func Load() (*Config, error) {
	// .env is optional when the variables come from the environment (Docker, CI).
	_ = godotenv.Load()
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Token:         strings.TrimSpace(getenv("TOKEN")),
		StorageFile:   strings.TrimSpace(getenv("STORAGE_FILE")),
		CommandPrefix: strings.TrimSpace(getenv("COMMAND_PREFIX")),
		DatabaseURL:   strings.TrimSpace(getenv("DATABASE_URL")),
	}
	if cfg.StorageFile == "" {
		cfg.StorageFile = storage.DefaultPath
	}
	if cfg.CommandPrefix == "" {
		cfg.CommandPrefix = defaultPrefix
	}

	users, err := ParseAllowedUsers(getenv("ALLOWED_USERS"))
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "ALLOWED_USERS", Err: err}
	}
	cfg.AllowedUsers = users

	if raw := strings.TrimSpace(getenv("AUTHORIZE_READS")); raw != "" {
		cfg.AuthorizeReads, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, &domain.ConfigurationError{Field: "AUTHORIZE_READS", Err: err}
		}
	}

	locale := strings.TrimSpace(getenv("LOCALE"))
	if locale == "" {
		locale = defaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "LOCALE", Err: err}
	}
	cfg.Locale = tag.String()

	level := strings.TrimSpace(getenv("LOG_LEVEL"))
	if level == "" {
		level = defaultLogLevel
	}
	cfg.LogLevel, err = logrus.ParseLevel(level)
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "LOG_LEVEL", Err: err}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate applies the cross-field rules to a loaded configuration.
func (c *Config) validate() error {
	if c.Token == "" {
		return &domain.ConfigurationError{Field: "TOKEN", Err: errors.New("required")}
	}

	if c.DatabaseURL != "" {
		parsed, err := url.Parse(c.DatabaseURL)
		if err != nil {
			return &domain.ConfigurationError{Field: "DATABASE_URL", Err: err}
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return &domain.ConfigurationError{
				Field: "DATABASE_URL",
				Err:   fmt.Errorf("missing scheme or host in %q", parsed.Redacted()),
			}
		}
	}
	return nil
}

// MirrorEnabled reports whether DATABASE_URL turns on the Postgres mirror.
func (c *Config) MirrorEnabled() bool {
	return c.DatabaseURL != ""
}

// ParseAllowedUsers splits a comma or whitespace separated list of decimal
// account ids. Duplicates are dropped; an empty list admits everyone.
func ParseAllowedUsers(raw string) ([]entities.Principal, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	seen := make(map[entities.Principal]struct{}, len(fields))
	users := make([]entities.Principal, 0, len(fields))
	for _, f := range fields {
		p, err := entities.ParsePrincipal(f)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		users = append(users, p)
	}
	return users, nil
}
