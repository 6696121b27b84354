package director

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/scene2video/internal/animation"
	"github.com/ivlev/scene2video/internal/config"
)

// WriteScenario writes a scenario to a YAML file
func WriteScenario(scenario *Scenario, path string) error {
	data, err := yaml.Marshal(scenario)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadScenario reads a scenario from a YAML file
func ReadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &scenario, nil
}

// Load reads the scenario at path and builds it. Picture sources resolve
// relative to the scenario's directory.
func Load(path string, cfg *config.Config) (*animation.Animation, error) {
	sc, err := ReadScenario(path)
	if err != nil {
		return nil, err
	}
	a, err := Build(sc, filepath.Dir(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}
