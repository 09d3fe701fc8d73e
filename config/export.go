package config

import "fmt"

// ExportConfig defines where sampled allocations are written.
type ExportConfig struct {
	// Format is "json" or "csv".
	Format string `json:"format"`
	// Path is the output file. Empty writes to stdout.
	Path string `json:"path"`
	// HTMLPath receives the cost histogram chart. Empty disables it.
	HTMLPath string `json:"html_path"`
	// Bins is the number of histogram buckets.
	Bins int `json:"bins"`
}

// SetDefaults applies sane defaults.
func (c *ExportConfig) SetDefaults() {
	if c.Format == "" {
		c.Format = "json"
	}
	if c.Bins == 0 {
		c.Bins = 20
	}
}

// Validate checks mandatory fields.
func (c ExportConfig) Validate() error {
	if c.Format != "json" && c.Format != "csv" {
		return fmt.Errorf("unknown format %s", c.Format)
	}
	if c.Bins < 0 {
		return fmt.Errorf("bins must be positive, got %d", c.Bins)
	}
	return nil
}
