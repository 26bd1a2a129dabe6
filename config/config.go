// Package config loads agent settings from the environment, an
// optional .env file, and an optional lca.toml defaults file.
// Precedence is environment > lca.toml > built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultModel     = "claude-sonnet-4-5-20250929"
	DefaultLogDir    = ".agent/logs"
	DefaultStateFile = ".agent/state.json"
	DefaultBackupDir = ".agent/backups"
	DefaultReportDir = ".agent/reports"

	// ConfigFile is looked up in the working directory.
	ConfigFile = "lca.toml"
)

// Config holds all agent settings.
type Config struct {
	// APIKey authenticates against the Anthropic API. Required for any
	// command that talks to the LLM; checked at client construction,
	// not here, so offline commands work without it.
	APIKey  string
	BaseURL string
	Model   string

	WorkDir   string
	LogDir    string
	StateFile string
	BackupDir string
	ReportDir string
}

// fileConfig mirrors the optional lca.toml defaults file.
type fileConfig struct {
	BaseURL   string `toml:"base_url"`
	Model     string `toml:"model"`
	WorkDir   string `toml:"workdir"`
	LogDir    string `toml:"log_dir"`
	StateFile string `toml:"state_file"`
	BackupDir string `toml:"backup_dir"`
	ReportDir string `toml:"report_dir"`
}

// Load builds the configuration. A .env file in the current directory
// is folded into the environment first (missing file is fine), then
// lca.toml supplies defaults for anything the environment leaves unset.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:    os.Getenv("ANTHROPIC_API_KEY"),
		BaseURL:   os.Getenv("LLM_BASE_URL"),
		Model:     os.Getenv("LLM_MODEL"),
		WorkDir:   os.Getenv("AGENT_WORKDIR"),
		LogDir:    os.Getenv("AGENT_LOG_DIR"),
		StateFile: os.Getenv("AGENT_STATE"),
		BackupDir: os.Getenv("AGENT_BACKUP_DIR"),
	}

	if err := cfg.applyFile(ConfigFile); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if c.BaseURL == "" {
		c.BaseURL = fc.BaseURL
	}
	if c.Model == "" {
		c.Model = fc.Model
	}
	if c.WorkDir == "" {
		c.WorkDir = fc.WorkDir
	}
	if c.LogDir == "" {
		c.LogDir = fc.LogDir
	}
	if c.StateFile == "" {
		c.StateFile = fc.StateFile
	}
	if c.BackupDir == "" {
		c.BackupDir = fc.BackupDir
	}
	if c.ReportDir == "" {
		c.ReportDir = fc.ReportDir
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.WorkDir == "" {
		c.WorkDir = "."
	}
	if c.LogDir == "" {
		c.LogDir = DefaultLogDir
	}
	if c.StateFile == "" {
		c.StateFile = DefaultStateFile
	}
	if c.BackupDir == "" {
		c.BackupDir = DefaultBackupDir
	}
	if c.ReportDir == "" {
		c.ReportDir = DefaultReportDir
	}
}

// EnsureDirectories creates the log, backup and report directories and
// the state file's parent.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.LogDir, c.BackupDir, c.ReportDir, filepath.Dir(c.StateFile)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// LogFile returns a timestamped log path for the named operation.
func (c *Config) LogFile(name string) string {
	return filepath.Join(c.LogDir, fmt.Sprintf("%s-%s.log", name, time.Now().Format("20060102_150405")))
}

// ReportFile returns a timestamped markdown report path.
func (c *Config) ReportFile(name string) string {
	return filepath.Join(c.ReportDir, fmt.Sprintf("%s-%s.md", name, time.Now().Format("20060102_150405")))
}
