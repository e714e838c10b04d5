package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix           = "BREADIT"
	defaultHTTPAddress  = "0.0.0.0:8080"
	defaultDBDriver     = "postgres"
	defaultDSN          = "host=localhost user=postgres password=postgres dbname=breadit port=5432 sslmode=disable"
	defaultLogLevel     = "info"
	defaultLogFormat    = "json"
	defaultSessionName  = "breadit_session"
	defaultPageSize     = 10
	defaultMaxPageSize  = 50
	defaultAllowOrigins = "*"
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress    string
	DatabaseDriver string
	DatabaseDSN    string
	SessionSecret  string
	SessionName    string
	LogLevel       string
	LogFormat      string
	PageSize       int
	MaxPageSize    int
	AllowOrigins   []string
}

// LoadDotEnv pulls a local .env into the process environment, if present.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	v := viper.New()
	ApplyDefaults(v)
	return v
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.address", defaultHTTPAddress)
	v.SetDefault("database.driver", defaultDBDriver)
	v.SetDefault("database.dsn", defaultDSN)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("session.name", defaultSessionName)
	v.SetDefault("feed.page_size", defaultPageSize)
	v.SetDefault("feed.max_page_size", defaultMaxPageSize)
	v.SetDefault("cors.origins", defaultAllowOrigins)
}

// Load parses runtime configuration from viper.
func Load(v *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:    v.GetString("http.address"),
		DatabaseDriver: strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
		DatabaseDSN:    v.GetString("database.dsn"),
		SessionSecret:  v.GetString("session.secret"),
		SessionName:    v.GetString("session.name"),
		LogLevel:       v.GetString("log.level"),
		LogFormat:      strings.ToLower(strings.TrimSpace(v.GetString("log.format"))),
		PageSize:       v.GetInt("feed.page_size"),
		MaxPageSize:    v.GetInt("feed.max_page_size"),
		AllowOrigins:   splitList(v.GetString("cors.origins")),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c AppConfig) validate() error {
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.DatabaseDriver)
	}
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if len(c.SessionSecret) < 16 {
		return fmt.Errorf("session.secret must be at least 16 characters")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.LogFormat)
	}
	if strings.TrimSpace(c.SessionName) == "" {
		return fmt.Errorf("session.name is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("feed.page_size must be positive")
	}
	if c.MaxPageSize < c.PageSize {
		return fmt.Errorf("feed.max_page_size must be >= feed.page_size")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
