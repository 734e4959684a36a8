// Package config loads and validates mirror configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Sitemap SitemapConfig `mapstructure:"sitemap"`
	Staging StagingConfig `mapstructure:"staging"`
	Remote  RemoteConfig  `mapstructure:"remote"`
	Sync    SyncConfig    `mapstructure:"sync"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SitemapConfig identifies the source site.
type SitemapConfig struct {
	URL          string `mapstructure:"url"`
	LocaleFilter string `mapstructure:"locale_filter"`
}

// StagingConfig sets the transient local download directory.
type StagingConfig struct {
	Dir string `mapstructure:"dir"`
}

// RemoteConfig selects and parameterizes the remote store provider.
type RemoteConfig struct {
	Provider   string            `mapstructure:"provider"`
	FolderName string            `mapstructure:"folder_name"`
	Drive      DriveRemoteConfig `mapstructure:"drive"`
	GCS        GCSRemoteConfig   `mapstructure:"gcs"`
}

// DriveRemoteConfig holds Google Drive credential locations.
type DriveRemoteConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	TokenFile       string `mapstructure:"token_file"`
}

// GCSRemoteConfig holds the Cloud Storage bucket target.
type GCSRemoteConfig struct {
	Bucket string `mapstructure:"bucket"`
}

// SyncConfig governs pipeline behavior for one pass.
type SyncConfig struct {
	Concurrency int     `mapstructure:"concurrency"`
	PerHostRPS  float64 `mapstructure:"per_host_rps"`
	UserAgent   string  `mapstructure:"user_agent"`
}

// HTTPConfig configures the HTTP fetch collaborators.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// NotifyConfig holds metadata for run-summary notifications.
type NotifyConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PDFMIRROR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sitemap.locale_filter", "en-US")
	v.SetDefault("staging.dir", "./downloads")
	v.SetDefault("remote.provider", "drive")
	v.SetDefault("remote.folder_name", "Site PDFs")
	v.SetDefault("remote.drive.credentials_file", "credentials.json")
	v.SetDefault("remote.drive.token_file", "token.json")
	v.SetDefault("sync.concurrency", 4)
	v.SetDefault("sync.per_host_rps", 2.0)
	v.SetDefault("sync.user_agent", "pdfmirror-bot/0.1")
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("notify.enabled", false)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Sitemap.URL == "" {
		return fmt.Errorf("sitemap.url must be set")
	}
	if c.Staging.Dir == "" {
		return fmt.Errorf("staging.dir must be set")
	}
	if c.Remote.FolderName == "" {
		return fmt.Errorf("remote.folder_name must be set")
	}
	switch c.Remote.Provider {
	case "drive", "gcs", "memory":
	default:
		return fmt.Errorf("remote.provider must be one of drive, gcs, memory")
	}
	if c.Remote.Provider == "gcs" && c.Remote.GCS.Bucket == "" {
		return fmt.Errorf("remote.gcs.bucket must be set when remote.provider is gcs")
	}
	if c.Sync.Concurrency <= 0 {
		return fmt.Errorf("sync.concurrency must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Notify.Enabled && (c.Notify.ProjectID == "" || c.Notify.Topic == "") {
		return fmt.Errorf("notify.project_id and notify.topic must be set when notify is enabled")
	}
	return nil
}

// FetchTimeout converts the HTTP timeout config into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
