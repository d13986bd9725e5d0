// Package config reads and writes the worktimer TOML configuration.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

const (
	// DefaultDimensionStart and DefaultDimensionEnd bound the date
	// dimension generated on first run. Reports outside this horizon
	// require regenerating the dimension.
	DefaultDimensionStart = "2020-01-01"
	DefaultDimensionEnd   = "2030-12-31"
)

// Config is the main configuration for worktimer.
type Config struct {
	// InstallID identifies this installation in logs and backup names.
	// Generated once at config init.
	InstallID string         `toml:"install_id"`
	BaseDir   string         `toml:"base_dir"`
	LogDir    string         `toml:"log_dir"`
	Database  DatabaseConfig `toml:"database"`
	Backup    BackupConfig   `toml:"backup"`
}

// DatabaseConfig locates the SQLite file and bounds the date dimension.
type DatabaseConfig struct {
	Path           string `toml:"path"`
	DimensionStart string `toml:"dimension_start"`
	DimensionEnd   string `toml:"dimension_end"`
}

// BackupConfig configures where snapshots go and the optional age key
// pair used to encrypt them.
type BackupConfig struct {
	// Type selects the destination backend: "filesystem" (default) or
	// "memory" (testing only).
	Type string `toml:"type"`
	Dir  string `toml:"dir,omitempty"`

	Encrypt        bool   `toml:"encrypt"`
	PublicKeyPath  string `toml:"public_key_path,omitempty"`
	PrivateKeyPath string `toml:"private_key_path,omitempty"`
}

// NewConfig creates a Config with default paths under baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		InstallID: uuid.New().String(),
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		Database: DatabaseConfig{
			Path:           filepath.Join(baseDir, "worktimer.db"),
			DimensionStart: DefaultDimensionStart,
			DimensionEnd:   DefaultDimensionEnd,
		},
		Backup: BackupConfig{
			Type:           "filesystem",
			Dir:            filepath.Join(baseDir, "backups"),
			PublicKeyPath:  filepath.Join(baseDir, "keys", "worktimer.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "worktimer.key"),
		},
	}
}

// DimensionRange parses the configured dimension horizon, falling back to
// the defaults when unset.
func (c *Config) DimensionRange() (time.Time, time.Time, error) {
	startStr, endStr := c.Database.DimensionStart, c.Database.DimensionEnd
	if startStr == "" {
		startStr = DefaultDimensionStart
	}
	if endStr == "" {
		endStr = DefaultDimensionEnd
	}
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing dimension_start: %w", err)
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing dimension_end: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("dimension_end %s precedes dimension_start %s", endStr, startStr)
	}
	return start, end, nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	return m.Write(f, cfg)
}

// Init creates a default configuration file at path if one does not
// already exist. Returns the config either way.
func Init(path, baseDir string) (*Config, error) {
	if _, err := os.Stat(path); err == nil {
		return ReadFromFile(path)
	}
	cfg := NewConfig(baseDir)
	if err := writeToFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
