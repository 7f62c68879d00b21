// internal/config/config.go
//
// This package handles configuration and the .swp directory structure.
// Every project that uses the planner gets a .swp/ folder holding its default
// rate card, the session journal and any saved scenarios.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/swp-planner/internal/calculator"
	"github.com/kingrea/swp-planner/internal/estimate"
)

const (
	// ProjectDirName is the name of the directory we create in each project
	ProjectDirName = ".swp"

	defaultLogFile = "logs/journey.log"
)

const defaultProjectConfigYAML = `# swp-planner project configuration
version: 1

# Starting point for every new estimate. Rates are per hour in the chosen currency.
defaults:
  mode: quick
  assumptions:
    implementation_rate: 175
    enablement_rate: 150
    research_rate: 125
    external_rate: 200
    hours_per_role: 2.5
    productivity_factor: 0.85
    working_days_per_week: 5
    currency: USD
    fx_rate: 1

logging:
  # Relative paths resolve against the .swp directory.
  file: logs/journey.log
`

// DefaultsConfig seeds new sessions.
type DefaultsConfig struct {
	Mode        string               `yaml:"mode"`
	Assumptions estimate.Assumptions `yaml:"assumptions"`
}

// LoggingConfig controls where the session journal is written.
type LoggingConfig struct {
	File string `yaml:"file"`
}

// ProjectConfig models .swp/config.yaml.
type ProjectConfig struct {
	Version  int            `yaml:"version"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Config holds the runtime configuration for the planner.
type Config struct {
	// ProjectDir is the directory the planner was started from
	ProjectDir string

	// SWPDir is ProjectDir/.swp
	SWPDir string

	Project ProjectConfig
}

// InitProjectDir creates the .swp directory structure in the given project
// directory and writes a default config.yaml when none exists.
//
// Structure created:
// .swp/
// ├── config.yaml
// ├── logs/        <- session journal
// └── scenarios/   <- saved scenario files
func InitProjectDir(projectDir string) error {
	root := filepath.Join(projectDir, ProjectDirName)
	dirs := []string{
		filepath.Join(root, "logs"),
		filepath.Join(root, "scenarios"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	return ensureProjectConfig(filepath.Join(root, "config.yaml"))
}

// NewConfig loads the project configuration, falling back to defaults when
// .swp/config.yaml does not exist.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir: projectDir,
		SWPDir:     filepath.Join(projectDir, ProjectDirName),
		Project:    defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.SWPDir, "config.yaml")
}

// ScenariosDir returns the directory that holds saved scenarios.
func (c *Config) ScenariosDir() string {
	return filepath.Join(c.SWPDir, "scenarios")
}

// LogPath returns the absolute path of the session journal.
func (c *Config) LogPath() string {
	return c.Project.Logging.File
}

// DefaultMode returns the mode new sessions start in.
func (c *Config) DefaultMode() calculator.Mode {
	return calculator.ParseMode(c.Project.Defaults.Mode)
}

// DefaultAssumptions returns the configured rate card.
func (c *Config) DefaultAssumptions() estimate.Assumptions {
	return c.Project.Defaults.Assumptions
}

// SessionOptions converts the configured defaults into session options.
func (c *Config) SessionOptions() []calculator.Option {
	return []calculator.Option{
		calculator.WithMode(c.DefaultMode()),
		calculator.WithAssumptions(c.DefaultAssumptions()),
	}
}

// SetDefaultMode updates the starting mode and persists it back to
// .swp/config.yaml.
func (c *Config) SetDefaultMode(mode calculator.Mode) error {
	value := strings.TrimSpace(string(mode))
	if value == "" {
		return fmt.Errorf("config: mode is required")
	}
	c.Project.Defaults.Mode = value
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.Project.normalize(c.SWPDir)
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.SWPDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Defaults: DefaultsConfig{
			Mode:        string(calculator.ModeQuick),
			Assumptions: estimate.DefaultAssumptions(),
		},
		Logging: LoggingConfig{File: defaultLogFile},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Logging.File) == "" {
		pc.Logging.File = defaultLogFile
	}
	if strings.TrimSpace(pc.Defaults.Mode) == "" {
		pc.Defaults.Mode = string(calculator.ModeQuick)
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Defaults.Mode = strings.ToLower(strings.TrimSpace(pc.Defaults.Mode))
	pc.Defaults.Assumptions.Currency = estimate.Currency(strings.ToUpper(strings.TrimSpace(string(pc.Defaults.Assumptions.Currency))))
	pc.Logging.File = resolvePath(base, pc.Logging.File)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	switch calculator.Mode(pc.Defaults.Mode) {
	case calculator.ModeQuick, calculator.ModeDetailed:
	default:
		return fmt.Errorf("defaults.mode must be 'quick' or 'detailed'")
	}
	if err := validateAssumptions(pc.Defaults.Assumptions); err != nil {
		return fmt.Errorf("defaults.assumptions: %w", err)
	}
	return nil
}

func validateAssumptions(a estimate.Assumptions) error {
	rates := []struct {
		name string
		rate float64
	}{
		{"implementation_rate", a.ImplementationRate},
		{"enablement_rate", a.EnablementRate},
		{"research_rate", a.ResearchRate},
		{"external_rate", a.ExternalRate},
	}
	for _, r := range rates {
		if r.rate < 0 {
			return fmt.Errorf("%s must be >= 0", r.name)
		}
	}
	if a.HoursPerRole <= 0 {
		return fmt.Errorf("hours_per_role must be > 0")
	}
	if a.ProductivityFactor <= 0 || a.ProductivityFactor > 1 {
		return fmt.Errorf("productivity_factor must be in (0, 1]")
	}
	if a.WorkingDaysPerWeek < calculator.MinWorkingDay || a.WorkingDaysPerWeek > calculator.MaxWorkingDay {
		return fmt.Errorf("working_days_per_week must be between 1 and 7")
	}
	if estimate.ParseCurrency(string(a.Currency)) != a.Currency {
		return fmt.Errorf("currency must be one of USD, EUR, GBP")
	}
	if a.FXRate <= 0 {
		return fmt.Errorf("fx_rate must be > 0")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

// relativePath undoes resolvePath for files inside base.
func relativePath(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize(c.SWPDir)
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.SWPDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure swp dir: %w", err)
	}
	onDisk := c.Project
	onDisk.Logging.File = relativePath(c.SWPDir, onDisk.Logging.File)
	data, err := yaml.Marshal(onDisk)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
