package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/partitura/internal/midi"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Library LibraryConfig     `yaml:"library"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
	Import  ImportConfig      `yaml:"import"`
	MIDI    MIDIConfig        `yaml:"midi"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Library.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Import.Validate(); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if err := c.MIDI.Validate(); err != nil {
		return fmt.Errorf("midi: %w", err)
	}
	return nil
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

// LibraryConfig holds the path to the score library directory.
type LibraryConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the library configuration.
func (c *LibraryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
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
//   - "disabled" (default): no authentication required, suitable for local dev.
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

// ImportConfig controls which files writes accept.
type ImportConfig struct {
	// MaxFileSize is in bytes.
	MaxFileSize    int64 `yaml:"max_file_size"`
	FailOnWarnings bool  `yaml:"fail_on_warnings"`
}

// Validate validates the import configuration.
func (c *ImportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxFileSize, validation.Required, validation.Min(int64(1))),
	)
}

// MIDIConfig holds MIDI rendering defaults.
type MIDIConfig struct {
	TicksPerQuarter int     `yaml:"ticks_per_quarter"`
	DefaultTempo    float64 `yaml:"default_tempo"`
	Velocity        int     `yaml:"velocity"`
}

// Validate validates the MIDI configuration.
func (c *MIDIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TicksPerQuarter, validation.Required, validation.Min(24), validation.Max(32767)),
		validation.Field(&c.DefaultTempo, validation.Required, validation.Min(1.0), validation.Max(1000.0)),
		validation.Field(&c.Velocity, validation.Required, validation.Min(1), validation.Max(127)),
	)
}

// Options converts the section to renderer options.
func (c *MIDIConfig) Options() midi.Options {
	return midi.Options{
		TicksPerQuarter: uint16(c.TicksPerQuarter),
		Tempo:           c.DefaultTempo,
		Velocity:        uint8(c.Velocity),
	}
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
		Library: LibraryConfig{
			Path: "./scores",
		},
		SQLite: SQLiteConfig{
			Path: "./partitura.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Import: ImportConfig{
			MaxFileSize: 20 << 20,
		},
		MIDI: MIDIConfig{
			TicksPerQuarter: 960,
			DefaultTempo:    120,
			Velocity:        80,
		},
	}
}
