package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/energyalloc/config"
)

var sampleOpts struct {
	n      int
	format string
	out    string
	html   string
	seed   uint64
	serve  bool
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Draw a batch of feasible allocations and export them",
	RunE:  runSample,
}

func init() {
	f := sampleCmd.Flags()
	f.IntVarP(&sampleOpts.n, "count", "n", 100, "number of allocations to draw")
	f.StringVar(&sampleOpts.format, "format", "", "export format: json or csv (defaults to export.format)")
	f.StringVarP(&sampleOpts.out, "out", "o", "", "output file (defaults to export.path, stdout when empty)")
	f.StringVar(&sampleOpts.html, "html", "", "write the cost histogram chart to this file")
	f.Uint64Var(&sampleOpts.seed, "seed", 0, "random seed (overrides sampler.seed)")
	f.BoolVar(&sampleOpts.serve, "serve", false, "keep serving metrics after sampling until interrupted")
	rootCmd.AddCommand(sampleCmd)
}

func runSample(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, closeFn, err := loadService(func(cfg *config.Config) {
		if cmd.Flags().Changed("seed") {
			cfg.Sampler.Seed = sampleOpts.seed
		}
		if sampleOpts.out != "" {
			cfg.Export.Path = sampleOpts.out
		}
		if sampleOpts.html != "" {
			cfg.Export.HTMLPath = sampleOpts.html
		}
	})
	if err != nil {
		return err
	}
	defer closeFn()
	svc.ServeMetrics(ctx)

	res, err := svc.Sample(ctx, sampleOpts.n)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "run %s: %d allocations, %d duplicates, %d attempts\n%s\n",
		res.Batch.RunID, res.Batch.Len(), res.Batch.Duplicates, res.Batch.Attempts, res.Summary)

	exp := svc.ExportConfig()
	if err := writeTo(exp.Path, cmd.OutOrStdout(), func(w io.Writer) error {
		return svc.WriteSamples(w, res, sampleOpts.format)
	}); err != nil {
		return fmt.Errorf("export samples: %w", err)
	}
	if exp.HTMLPath != "" && res.Batch.Len() > 0 {
		if err := writeTo(exp.HTMLPath, nil, func(w io.Writer) error {
			return svc.WriteHistogram(w, res)
		}); err != nil {
			return fmt.Errorf("export histogram: %w", err)
		}
	}

	if sampleOpts.serve {
		<-ctx.Done()
	}
	return nil
}

// writeTo writes to path, or to fallback when path is empty.
func writeTo(path string, fallback io.Writer, write func(io.Writer) error) error {
	if path == "" {
		return write(fallback)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
