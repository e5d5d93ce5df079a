package scroller

import (
	"os"

	"gopkg.in/yaml.v3"
)

// PlanFile is a scroll plan as written to disk for inspection or reuse.
type PlanFile struct {
	Version        string    `yaml:"version"`
	Motion         Motion    `yaml:"motion"`
	FPS            int       `yaml:"fps"`
	FrameHeight    int       `yaml:"frame_height"`
	ExtendedHeight int       `yaml:"extended_height"`
	ScrollSpeed    float64   `yaml:"scroll_speed"`
	Pauses         []int     `yaml:"pauses,flow"`
	Positions      []float64 `yaml:"positions,flow"`
}

// WritePlan writes a plan to a YAML file
func WritePlan(plan *PlanFile, path string) error {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadPlan reads a plan from a YAML file
func ReadPlan(path string) (*PlanFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var plan PlanFile
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, err
	}

	return &plan, nil
}
