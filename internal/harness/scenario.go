package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one scripted run against a fresh ClientData.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// DeviceID is the local device id. Default: "dev-1".
	DeviceID string `yaml:"device_id,omitempty"`

	// LogOnly is the initial raw-log mode.
	LogOnly bool `yaml:"log_only,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one scripted action. Exactly one field is set.
type Step struct {
	// Batch is submitted as one AddData call. Elements use the wire format.
	Batch []map[string]any `yaml:"batch,omitempty"`

	// LogOnly switches the raw-log mode.
	LogOnly *bool `yaml:"log_only,omitempty"`

	// Dismiss closes an alert queue entry without answering.
	Dismiss *AlertAction `yaml:"dismiss,omitempty"`

	// Confirm acknowledges a notification.
	Confirm *AlertAction `yaml:"confirm,omitempty"`

	// Respond answers an input prompt.
	Respond *AlertAction `yaml:"respond,omitempty"`
}

// AlertAction addresses an entry of the alert queue by position.
type AlertAction struct {
	Index       int     `yaml:"index"`
	Response    any     `yaml:"response,omitempty"`
	DisplayedAt float64 `yaml:"displayed_at,omitempty"`
}

// kind names the populated field, or "" when the step is empty or ambiguous.
func (s Step) kind() string {
	var kinds []string
	if s.Batch != nil {
		kinds = append(kinds, "batch")
	}
	if s.LogOnly != nil {
		kinds = append(kinds, "log_only")
	}
	if s.Dismiss != nil {
		kinds = append(kinds, "dismiss")
	}
	if s.Confirm != nil {
		kinds = append(kinds, "confirm")
	}
	if s.Respond != nil {
		kinds = append(kinds, "respond")
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// LoadScenario reads and parses a scenario YAML file.
//
// Unknown fields are rejected so typos like "assertion:" fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.kind() == "" {
			return fmt.Errorf("steps[%d]: exactly one of batch, log_only, dismiss, confirm, respond is required", i)
		}
		for _, a := range []*AlertAction{step.Dismiss, step.Confirm, step.Respond} {
			if a != nil && a.Index < 0 {
				return fmt.Errorf("steps[%d]: index must be non-negative", i)
			}
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}
