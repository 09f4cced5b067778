package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// storage
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	RedisHost      string `toml:"redis_host"`
	RedisPort      string `toml:"redis_port"`

	// documents
	DocumentCacheSizeMB        int  `toml:"document_cache_size_mb"`
	DocumentCacheExpireSeconds int  `toml:"document_cache_expire_seconds"`
	DocumentVersionCheck       bool `toml:"document_version_check"`

	// sessions and auth
	SessionTTLHours      int      `toml:"session_ttl_hours"`
	PasswordResetTTLMins int      `toml:"password_reset_ttl_mins"`
	AuthRateLimitPerMin  int      `toml:"auth_rate_limit_per_min"`
	AllowedOrigins       []string `toml:"allowed_origins"`

	// password reset mails, only logged when the webhook is not set
	MailWebhookURL   string `toml:"mail_webhook_url"`
	ResetLinkBaseURL string `toml:"reset_link_base_url"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// backups
	BackupLogsPath string `toml:"backup_logs_path"`
}

type Toml struct {
	Development *Config
	Production  *Config
	DockerDev   *Config `toml:"dockerdev"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	case "ddev", "dockerdev":
		cfg = t.DockerDev
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("env [%s] missing in config", env)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.DocumentCacheSizeMB <= 0 {
		c.DocumentCacheSizeMB = 32
	}
	if c.DocumentCacheExpireSeconds <= 0 {
		c.DocumentCacheExpireSeconds = 600
	}
	if c.SessionTTLHours <= 0 {
		c.SessionTTLHours = 24 * 7
	}
	if c.PasswordResetTTLMins <= 0 {
		c.PasswordResetTTLMins = 30
	}
	if c.AuthRateLimitPerMin <= 0 {
		c.AuthRateLimitPerMin = 10
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
}

// Load reads the TOML file and picks the section of the given environment.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}
	return t.Get(env)
}

// Secrets are never stored in the config file.
type Secrets struct {
	SentryDSN         string `env:"SENTRY_DSN"`
	RedisPassword     string `env:"TRAININGS_REDIS_PASS"`
	PostgresPassword  string `env:"TRAININGS_POSTGRES_PASS"`
	HoneycombEnabled  bool   `env:"HONEYCOMB_ENABLED, default=false"`
	HoneycombAPIKey   string `env:"HONEYCOMB_API_KEY"`
	OtelServiceName   string `env:"OTEL_SERVICE_NAME"`
	MailWebhookToken  string `env:"TRAININGS_MAIL_WEBHOOK_TOKEN"`
	DriveCredentials  string `env:"TRAININGS_DRIVE_CREDENTIALS"`
	DriveBackupFolder string `env:"TRAININGS_DRIVE_FOLDER, default=trainings-backup"`
}

func LoadSecrets(ctx context.Context) (*Secrets, error) {
	var s Secrets
	if err := envconfig.Process(ctx, &s); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return &s, nil
}

// LoadSecretsFrom is LoadSecrets reading from the given lookuper instead of the OS env.
func LoadSecretsFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Secrets, error) {
	var s Secrets
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &s,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return &s, nil
}
