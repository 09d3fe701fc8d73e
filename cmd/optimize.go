package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Compute the minimum-cost allocation",
	RunE:  runOptimize,
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	svc, closeFn, err := loadService(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := svc.Optimize()
	if err != nil {
		return err
	}
	b, err := svc.Registry.Bounds()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for i, src := range b.SourceNames {
		for j, dst := range b.ConsumerNames {
			fmt.Fprintf(out, "%s -> %s: %g\n", src, dst, res.Allocation.At(i, j))
		}
	}
	fmt.Fprintf(out, "cost: %g\n", res.Cost)
	return nil
}
