package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := NewViper()
	v.Set("session.secret", "0123456789abcdef")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, defaultHTTPAddress, cfg.HTTPAddress)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, defaultPageSize, cfg.PageSize)
	assert.Equal(t, defaultMaxPageSize, cfg.MaxPageSize)
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("BREADIT_DATABASE_DRIVER", "SQLite")
	t.Setenv("BREADIT_DATABASE_DSN", "file:breadit.db")
	t.Setenv("BREADIT_SESSION_SECRET", "an-env-provided-secret")
	t.Setenv("BREADIT_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("BREADIT_LOG_FORMAT", "Console")

	cfg, err := Load(NewViper())
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "file:breadit.db", cfg.DatabaseDSN)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowOrigins)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]func(v *viper.Viper){
		"short secret":   func(v *viper.Viper) { v.Set("session.secret", "short") },
		"unknown driver": func(v *viper.Viper) { v.Set("database.driver", "mysql") },
		"bad page size":  func(v *viper.Viper) { v.Set("feed.page_size", 0) },
		"max below size": func(v *viper.Viper) { v.Set("feed.max_page_size", 5) },
		"unknown format": func(v *viper.Viper) { v.Set("log.format", "xml") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			v := NewViper()
			v.Set("session.secret", "0123456789abcdef")
			mutate(v)
			_, err := Load(v)
			require.Error(t, err)
		})
	}
}
