package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a reproducible batch description loaded from YAML.
type Scenario struct {
	// Name labels the run in storage and logs.
	Name string `yaml:"name"`
	// Advisor selects the strategy: "greedy" or "scored".
	Advisor string `yaml:"advisor"`
	// Seed is the first deal's seed; later games use consecutive seeds.
	Seed int64 `yaml:"seed"`
	// Games is the number of deals to play.
	Games int `yaml:"games"`
	// MaxMovesPerGame overrides the runaway ceiling when positive.
	MaxMovesPerGame int `yaml:"maxMovesPerGame,omitempty"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (Scenario, error) {
	var scenario Scenario

	data, err := os.ReadFile(path)
	if err != nil {
		return scenario, fmt.Errorf("read scenario %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return scenario, fmt.Errorf("parse scenario %q: %w", path, err)
	}

	if scenario.Games <= 0 {
		return scenario, fmt.Errorf("scenario %q: games must be greater than zero", path)
	}
	if scenario.Advisor == "" {
		scenario.Advisor = "scored"
	}
	if scenario.Name == "" {
		scenario.Name = fmt.Sprintf("%s-seed%d-x%d", scenario.Advisor, scenario.Seed, scenario.Games)
	}
	return scenario, nil
}
