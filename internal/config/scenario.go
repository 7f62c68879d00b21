package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/swp-planner/internal/calculator"
)

// ScenarioFormat identifies a scenario file encoding.
type ScenarioFormat string

const (
	FormatYAML ScenarioFormat = "yaml"
	FormatTOML ScenarioFormat = "toml"
	FormatJSON ScenarioFormat = "json"
)

// FormatForPath picks the decoder from the file extension.
func FormatForPath(path string) (ScenarioFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("config: unsupported scenario extension %q (want .yaml, .yml, .toml or .json)", filepath.Ext(path))
	}
}

// DecodeScenario parses data on top of the default scenario so omitted
// fields keep their defaults.
func DecodeScenario(data []byte, format ScenarioFormat) (calculator.Scenario, error) {
	return DecodeScenarioOnto(calculator.DefaultScenario(), data, format)
}

// DecodeScenarioOnto parses data on top of base.
func DecodeScenarioOnto(base calculator.Scenario, data []byte, format ScenarioFormat) (calculator.Scenario, error) {
	sc := base
	// Lists in the document replace the defaults rather than merging into them.
	// Session.Apply fills anything left out from the catalog, and sizes the
	// cohorts from the list when the document gives no count.
	sc.Inputs.AddOns, sc.Inputs.Cohorts = nil, nil
	sc.Inputs.CohortCount = 0
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &sc)
	case FormatTOML:
		err = toml.Unmarshal(data, &sc)
	case FormatJSON:
		err = json.Unmarshal(data, &sc)
	default:
		return calculator.Scenario{}, fmt.Errorf("config: unknown scenario format %q", format)
	}
	if err != nil {
		return calculator.Scenario{}, fmt.Errorf("config: decode %s scenario: %w", format, err)
	}
	return sc, nil
}

// BaseScenario is a fresh scenario seeded with the configured defaults.
func (c *Config) BaseScenario() calculator.Scenario {
	sc := calculator.DefaultScenario()
	sc.Mode = c.DefaultMode()
	sc.Assumptions = c.DefaultAssumptions()
	return sc
}

// LoadScenario reads a scenario file over the configured defaults. Relative
// names that do not exist in the working directory are looked up in
// .swp/scenarios.
func (c *Config) LoadScenario(name string) (calculator.Scenario, error) {
	path, err := c.ResolveScenarioPath(name)
	if err != nil {
		return calculator.Scenario{}, err
	}
	format, err := FormatForPath(path)
	if err != nil {
		return calculator.Scenario{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return calculator.Scenario{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return DecodeScenarioOnto(c.BaseScenario(), data, format)
}

// ResolveScenarioPath finds the file backing a scenario name.
func (c *Config) ResolveScenarioPath(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("config: scenario path is required")
	}
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = append(candidates, filepath.Join(c.ProjectDir, name), filepath.Join(c.ScenariosDir(), name))
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("config: stat %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("config: scenario %s not found", name)
}

// LoadScenarioFile reads and decodes one scenario file.
func LoadScenarioFile(path string) (calculator.Scenario, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return calculator.Scenario{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return calculator.Scenario{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return DecodeScenario(data, format)
}
