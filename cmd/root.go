package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/energyalloc/app"
	"github.com/kilianp07/energyalloc/config"
	"github.com/kilianp07/energyalloc/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "energyalloc",
	Short:         "Sample feasible energy allocations between sources and consumers",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadService reads the configuration, lets the caller adjust it and builds
// the service.
func loadService(adjust func(*config.Config)) (*app.Service, func(), error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if adjust != nil {
		adjust(cfg)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}
	return svc, closeFn, nil
}
