package config

import (
	"fmt"
	"net/url"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the roster engine.
// Configuration can come from a YAML file (config.yaml) or environment
// variables; environment variables override YAML values. Secrets (database
// password, token secret, mail credentials) must only come from environment
// variables.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// MigrationsPath is the directory containing golang-migrate SQL files.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`

	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Mail     MailConfig     `yaml:"mail"`
}

// AuthConfig holds PIN-session token configuration.
type AuthConfig struct {
	// TokenSecret signs session tokens (HS256). Server refuses to start
	// without it outside local environments.
	TokenSecret string `yaml:"-" env:"AUTH_TOKEN_SECRET"`

	// TokenTTLHours is how long a login session stays valid.
	TokenTTLHours int `yaml:"token_ttl_hours" env:"AUTH_TOKEN_TTL_HOURS" env-default:"12"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"roster"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"roster_engine"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
}

// MailConfig holds Gmail API configuration for roster export emails.
// Mail sending is disabled unless all OAuth fields are present.
type MailConfig struct {
	Sender       string `yaml:"sender" env:"MAIL_SENDER" env-default:""`
	ClientID     string `yaml:"-" env:"MAIL_OAUTH_CLIENT_ID"`
	ClientSecret string `yaml:"-" env:"MAIL_OAUTH_CLIENT_SECRET"`
	RefreshToken string `yaml:"-" env:"MAIL_OAUTH_REFRESH_TOKEN"`
}

// Enabled reports whether outbound mail is configured.
func (c *MailConfig) Enabled() bool {
	return c.Sender != "" && c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// URL returns the PostgreSQL connection URL.
func (c *DatabaseConfig) URL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Database,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set on the
// returned Config. Falls back to environment-only configuration when
// config.yaml does not exist.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// No YAML file is fine; env vars alone can carry the config.
		if envErr := cleanenv.ReadEnv(cfg); envErr != nil {
			return nil, fmt.Errorf("failed to read configuration: %w", envErr)
		}
	}

	if cfg.Auth.TokenSecret == "" {
		if cfg.Env != "local" {
			return nil, fmt.Errorf("AUTH_TOKEN_SECRET must be set in %q environment", cfg.Env)
		}
		// Local development only; sessions do not survive across secrets.
		cfg.Auth.TokenSecret = "local-dev-secret"
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}
