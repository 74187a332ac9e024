package config

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"zungenrede/internal/domain"
	"zungenrede/internal/domain/entities"
)

func envMap(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := fromEnv(envMap(map[string]string{"TOKEN": "secret"}))
	require.NoError(t, err)

	require.Equal(t, "secret", cfg.Token)
	require.Equal(t, "translations_storage.json", cfg.StorageFile)
	require.Empty(t, cfg.AllowedUsers)
	require.False(t, cfg.AuthorizeReads)
	require.Equal(t, "!", cfg.CommandPrefix)
	require.Equal(t, "en", cfg.Locale)
	require.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	require.False(t, cfg.MirrorEnabled())
}

func TestFromEnv_AllSet(t *testing.T) {
	cfg, err := fromEnv(envMap(map[string]string{
		"TOKEN":           "secret",
		"STORAGE_FILE":    "/var/lib/zungenrede/store.json",
		"ALLOWED_USERS":   "12345, 067890\n12345",
		"AUTHORIZE_READS": "true",
		"COMMAND_PREFIX":  "?",
		"LOCALE":          "ru",
		"LOG_LEVEL":       "debug",
		"DATABASE_URL":    "postgres://bot:pw@db:5432/zungenrede?sslmode=disable",
	}))
	require.NoError(t, err)

	require.Equal(t, "/var/lib/zungenrede/store.json", cfg.StorageFile)
	require.Equal(t, []entities.Principal{"12345", "67890"}, cfg.AllowedUsers)
	require.True(t, cfg.AuthorizeReads)
	require.Equal(t, "?", cfg.CommandPrefix)
	require.Equal(t, "ru", cfg.Locale)
	require.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	require.True(t, cfg.MirrorEnabled())
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		vars  map[string]string
		field string
	}{
		{"missing token", map[string]string{}, "TOKEN"},
		{"blank token", map[string]string{"TOKEN": "   "}, "TOKEN"},
		{"bad user id", map[string]string{"TOKEN": "t", "ALLOWED_USERS": "123,alice"}, "ALLOWED_USERS"},
		{"bad bool", map[string]string{"TOKEN": "t", "AUTHORIZE_READS": "sometimes"}, "AUTHORIZE_READS"},
		{"bad locale", map[string]string{"TOKEN": "t", "LOCALE": "not a locale!"}, "LOCALE"},
		{"bad log level", map[string]string{"TOKEN": "t", "LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{"db url without host", map[string]string{"TOKEN": "t", "DATABASE_URL": "postgres:///nohost"}, "DATABASE_URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromEnv(envMap(tt.vars))
			require.Error(t, err)

			var cfgErr *domain.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			require.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestLoad_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv("TOKEN", "from-env")
	t.Setenv("ALLOWED_USERS", "42")
	t.Setenv("STORAGE_FILE", "")
	t.Setenv("LOCALE", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("AUTHORIZE_READS", "")
	t.Setenv("COMMAND_PREFIX", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Token)
	require.Equal(t, []entities.Principal{"42"}, cfg.AllowedUsers)
}

func TestParseAllowedUsers(t *testing.T) {
	users, err := ParseAllowedUsers("")
	require.NoError(t, err)
	require.Empty(t, users)

	users, err = ParseAllowedUsers(" 1 ,\t2,,3 ")
	require.NoError(t, err)
	require.Equal(t, []entities.Principal{"1", "2", "3"}, users)

	_, err = ParseAllowedUsers("1;2")
	require.Error(t, err)
}
