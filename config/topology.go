package config

import (
	"fmt"

	"github.com/kilianp07/energyalloc/core/model"
	"github.com/kilianp07/energyalloc/core/registry"
)

// SourceConfig describes an energy source.
type SourceConfig struct {
	Name        string  `json:"name"`
	Capacity    float64 `json:"capacity"`
	CostPerUnit float64 `json:"cost_per_unit"`
	Unit        string  `json:"unit"`
}

// SetDefaults applies sane defaults.
func (c *SourceConfig) SetDefaults() {
	if c.Unit == "" {
		c.Unit = model.DefaultUnit
	}
}

// ConsumerConfig describes an energy consumer.
type ConsumerConfig struct {
	Name   string  `json:"name"`
	Demand float64 `json:"demand"`
}

func (c Config) validateTopology() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	if len(c.Consumers) == 0 {
		return fmt.Errorf("at least one consumer is required")
	}
	for i, s := range c.Sources {
		if err := model.NewSource(s.Name, s.Capacity, s.CostPerUnit, s.Unit).Validate(); err != nil {
			return fmt.Errorf("sources[%d]: %w", i, err)
		}
	}
	for i, cons := range c.Consumers {
		if err := model.NewConsumer(cons.Name, cons.Demand).Validate(); err != nil {
			return fmt.Errorf("consumers[%d]: %w", i, err)
		}
	}
	return nil
}

// BuildRegistry registers the configured sources and consumers in file order
// and refreshes the bounds.
func (c Config) BuildRegistry() (*registry.Registry, error) {
	reg := registry.New()
	for _, s := range c.Sources {
		if err := reg.AddSource(model.NewSource(s.Name, s.Capacity, s.CostPerUnit, s.Unit)); err != nil {
			return nil, err
		}
	}
	for _, cons := range c.Consumers {
		if err := reg.AddConsumer(model.NewConsumer(cons.Name, cons.Demand)); err != nil {
			return nil, err
		}
	}
	if err := reg.RefreshBounds(); err != nil {
		return nil, err
	}
	return reg, nil
}
