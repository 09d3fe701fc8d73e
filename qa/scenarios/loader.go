package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/energyalloc/core/model"
)

type SourceDef struct {
	Name        string  `yaml:"name"`
	Capacity    float64 `yaml:"capacity"`
	CostPerUnit float64 `yaml:"cost_per_unit"`
}

func (s SourceDef) ToModel() model.Source {
	return model.NewSource(s.Name, s.Capacity, s.CostPerUnit, "")
}

type ConsumerDef struct {
	Name   string  `yaml:"name"`
	Demand float64 `yaml:"demand"`
}

func (c ConsumerDef) ToModel() model.Consumer {
	return model.NewConsumer(c.Name, c.Demand)
}

type SamplerDef struct {
	MaxAttempts int    `yaml:"max_attempts"`
	Seed        uint64 `yaml:"seed"`
	Precheck    bool   `yaml:"precheck"`
	NarrowDraws bool   `yaml:"narrow_draws"`
}

// Expected lists the outcomes checked after a run. Zero values are not checked
// except for Error, where empty means the run must succeed.
type Expected struct {
	// Error is one of "", "duplicate", "infeasible", "integrity".
	Error      string  `yaml:"error,omitempty"`
	Cost       float64 `yaml:"cost,omitempty"`
	MinSamples int     `yaml:"min_samples,omitempty"`
	Duplicates int     `yaml:"duplicates,omitempty"`
}

type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Sources     []SourceDef   `yaml:"sources"`
	Consumers   []ConsumerDef `yaml:"consumers"`
	Sampler     SamplerDef    `yaml:"sampler"`
	// Check is a row-major allocation verified instead of sampling.
	Check    []float64 `yaml:"check,omitempty"`
	Samples  int       `yaml:"samples"`
	Expected Expected  `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
