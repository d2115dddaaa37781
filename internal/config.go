package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App  ApplicationConfig `yaml:"app"`
	Data DataConfig        `yaml:"data"`
	Auth AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Data.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
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

// DataConfig holds the layout of the flat-file data directory: the table
// workbooks and the roster live directly under Dir, reports and holiday
// files in subdirectories.
type DataConfig struct {
	Dir          string `yaml:"dir"`
	FamiliesFile string `yaml:"families_file"`
	HistoryFile  string `yaml:"history_file"`
	ManagersFile string `yaml:"managers_file"`
	ReportsDir   string `yaml:"reports_dir"`
	HolidaysDir  string `yaml:"holidays_dir"`
}

// Validate validates the data configuration.
func (c *DataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.FamiliesFile, validation.Required),
		validation.Field(&c.HistoryFile, validation.Required),
		validation.Field(&c.ManagersFile, validation.Required),
		validation.Field(&c.ReportsDir, validation.Required),
		validation.Field(&c.HolidaysDir, validation.Required),
	)
}

// FamiliesPath returns the absolute path of the families workbook.
func (c *DataConfig) FamiliesPath() string {
	return filepath.Join(c.Dir, c.FamiliesFile)
}

// HistoryPath returns the absolute path of the removed-families workbook.
func (c *DataConfig) HistoryPath() string {
	return filepath.Join(c.Dir, c.HistoryFile)
}

// ManagersPath returns the absolute path of the manager roster document.
func (c *DataConfig) ManagersPath() string {
	return filepath.Join(c.Dir, c.ManagersFile)
}

// ReportsPath returns the absolute path of the reports directory.
func (c *DataConfig) ReportsPath() string {
	return filepath.Join(c.Dir, c.ReportsDir)
}

// HolidaysPath returns the absolute path of the holidays directory.
func (c *DataConfig) HolidaysPath() string {
	return filepath.Join(c.Dir, c.HolidaysDir)
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

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Data: DataConfig{
			Dir:          "./data",
			FamiliesFile: "families.xlsx",
			HistoryFile:  "history.xlsx",
			ManagersFile: "managers.json",
			ReportsDir:   "reports",
			HolidaysDir:  "holidays",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
