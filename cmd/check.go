package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/energyalloc/core/constraint"
)

var checkOpts struct {
	alloc     []float64
	tolerance float64
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify an allocation against the configured demands and capacities",
	Long: "Verify an allocation given as comma separated flows in row-major order " +
		"(one row per source, one column per consumer) and print its cost.",
	RunE: runCheck,
}

func init() {
	f := checkCmd.Flags()
	f.Float64SliceVar(&checkOpts.alloc, "alloc", nil, "row-major flows, e.g. 1.5,2,1.5,3")
	f.Float64Var(&checkOpts.tolerance, "tolerance", constraint.DefaultTolerance, "absolute tolerance")
	_ = checkCmd.MarkFlagRequired("alloc")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(checkOpts.alloc) == 0 {
		return errors.New("no flows given")
	}
	svc, closeFn, err := loadService(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := svc.Check(checkOpts.alloc, checkOpts.tolerance)
	if err != nil {
		return fmt.Errorf("allocation rejected: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok %v cost=%g\n", res.Allocation, res.Cost)
	return nil
}
