package tui

import (
	_ "embed"
	"fmt"

	"emberctl/internal/setup/wizard"

	"gopkg.in/yaml.v3"
)

//go:embed steps.yaml
var embeddedSteps []byte

// StepMeta is the presentation metadata for one wizard step.
type StepMeta struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Content     string `yaml:"content"`
	Help        string `yaml:"help"`
}

type stepCatalog struct {
	ID    string     `yaml:"id"`
	Steps []StepMeta `yaml:"steps"`
}

// loadStepMeta parses the embedded step catalog and checks it against
// the step registry: every registered step must have metadata.
func loadStepMeta() (map[wizard.StepID]StepMeta, error) {
	var catalog stepCatalog
	if err := yaml.Unmarshal(embeddedSteps, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse step catalog: %w", err)
	}

	meta := make(map[wizard.StepID]StepMeta, len(catalog.Steps))
	for _, m := range catalog.Steps {
		meta[wizard.StepID(m.ID)] = m
	}

	for _, step := range wizard.Steps() {
		if _, ok := meta[step.ID]; !ok {
			return nil, fmt.Errorf("step %q has no catalog entry", step.ID)
		}
	}

	return meta, nil
}
