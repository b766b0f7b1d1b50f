package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notemeta/internal/metadata"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app" toml:"app"`
	Vault    VaultConfig       `yaml:"vault" toml:"vault"`
	SQLite   SQLiteConfig      `yaml:"sqlite" toml:"sqlite"`
	Auth     AuthConfig        `yaml:"auth" toml:"auth"`
	Metadata metadata.Policy   `yaml:"metadata" toml:"metadata"`
	Update   UpdateConfig      `yaml:"update" toml:"update"`
	Batch    BatchConfig       `yaml:"batch" toml:"batch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Metadata.Validate(); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	if err := c.Update.Validate(); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return c.Batch.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" toml:"log_level"`
	HTTP     HTTPConfig `yaml:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" toml:"port"`
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

// VaultConfig holds the path to the Markdown vault directory.
type VaultConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds the metadata index database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path" toml:"path"`
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
	Mode  string `yaml:"mode" toml:"mode"`
	Token string `yaml:"token" toml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
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

// UpdateConfig controls how notes are rewritten after an edit.
type UpdateConfig struct {
	InlinePosition string `yaml:"inline_position" toml:"inline_position"`
	InlineInplace  bool   `yaml:"inline_inplace" toml:"inline_inplace"`
	InlineTemplate string `yaml:"inline_template" toml:"inline_template"`
}

// Validate validates the update configuration.
func (c *UpdateConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.InlinePosition, validation.In(string(metadata.Top), string(metadata.Bottom))),
		validation.Field(&c.InlineTemplate, validation.In("standard", "callout")),
	)
}

// Options converts the section into metadata update options.
func (c *UpdateConfig) Options() ([]metadata.UpdateOption, error) {
	pos, err := metadata.ParsePosition(c.InlinePosition)
	if err != nil {
		return nil, err
	}
	tmpl, err := metadata.ParseTemplate(c.InlineTemplate)
	if err != nil {
		return nil, err
	}
	return []metadata.UpdateOption{
		metadata.WithInlinePosition(pos),
		metadata.WithInlineInplace(c.InlineInplace),
		metadata.WithInlineTemplate(tmpl),
	}, nil
}

// BatchConfig bounds batch parallelism.
type BatchConfig struct {
	Workers int `yaml:"workers" toml:"workers"`
}

// Validate validates the batch configuration.
func (c *BatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Workers, validation.Required, validation.Min(1), validation.Max(64)),
	)
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
		Vault: VaultConfig{
			Path: "./vault",
		},
		SQLite: SQLiteConfig{
			Path: "./notemeta.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Metadata: *metadata.DefaultPolicy(),
		Update: UpdateConfig{
			InlinePosition: string(metadata.Bottom),
			InlineInplace:  true,
			InlineTemplate: "standard",
		},
		Batch: BatchConfig{
			Workers: 4,
		},
	}
}
