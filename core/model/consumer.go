package model

import (
	"fmt"
	"math"
)

// Consumer represents an entity whose demand must be met exactly.
type Consumer struct {
	Name   string
	Demand float64
}

// NewConsumer returns a Consumer.
func NewConsumer(name string, demand float64) Consumer {
	return Consumer{Name: name, Demand: demand}
}

// Validate checks that the consumer configuration is sound.
func (c Consumer) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("consumer name is required")
	}
	if c.Demand < 0 || math.IsNaN(c.Demand) || math.IsInf(c.Demand, 0) {
		return fmt.Errorf("consumer %s: demand must be a finite non-negative number, got %v", c.Name, c.Demand)
	}
	return nil
}

func (c Consumer) String() string {
	return fmt.Sprintf("%s(demand=%g)", c.Name, c.Demand)
}
