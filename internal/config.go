package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/mimir/internal/schedule"
	"github.com/starford/mimir/internal/suggest"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
	Review  ReviewConfig      `yaml:"review"`
	Backup  BackupConfig      `yaml:"backup"`
	Capture CaptureConfig     `yaml:"capture"`
	Suggest SuggestConfig     `yaml:"suggest"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Review.Validate(); err != nil {
		return err
	}
	return c.Backup.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// ReviewConfig holds the scheduling defaults.
type ReviewConfig struct {
	// Intervals is the default revision schedule in days for new items.
	Intervals []int `yaml:"intervals"`
	// RetentionDays is how long archived items are kept before the sweep
	// deletes them.
	RetentionDays int `yaml:"retention_days"`
}

// Validate validates the review configuration.
func (c *ReviewConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Intervals, validation.Required, validation.Each(validation.Min(1))),
		validation.Field(&c.RetentionDays, validation.Required, validation.Min(1)),
	)
}

// BackupConfig holds the pre-import snapshot archive location.
type BackupConfig struct {
	Dir string `yaml:"dir"`
}

// Validate validates the backup configuration.
func (c *BackupConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// CaptureConfig holds the optional quick-capture file watcher settings.
// An empty path disables the watcher.
type CaptureConfig struct {
	Path string `yaml:"path"`
}

// Enabled returns true when a capture file is configured.
func (c *CaptureConfig) Enabled() bool {
	return c.Path != ""
}

// SuggestConfig holds the optional topic-suggestion backend settings.
// An empty API key disables suggestions.
type SuggestConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// Enabled returns true when a suggestion backend is configured.
func (c *SuggestConfig) Enabled() bool {
	return c.APIKey != ""
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./mimir.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Review: ReviewConfig{
			Intervals:     schedule.DefaultPolicy,
			RetentionDays: schedule.DefaultRetentionDays,
		},
		Backup: BackupConfig{
			Dir: "./backups",
		},
		Suggest: SuggestConfig{
			Model: suggest.DefaultModel,
		},
	}
}
