package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docdup-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docdup-cli/internal/core/services"
	"github.com/custodia-labs/docdup-cli/internal/logger"
)

var (
	watchTechnique string
	watchThreshold float64
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-run analysis whenever documents change",
	Long: `Watches a local directory and repeats the duplicate analysis each
time a matching file is created, modified, or removed. Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchTechnique, "technique", "t", "", "comparison technique: lexical, semantic, or composite")
	watchCmd.Flags().Float64Var(&watchThreshold, "threshold", 0.9, "similarity threshold in [0,1]")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := openConfig()
	if err != nil {
		return err
	}

	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	loader, err := buildLoader(cmd, path, cfg)
	if err != nil {
		return err
	}
	watchable, ok := loader.(driven.WatchableLoader)
	if !ok {
		return fmt.Errorf("loader %s does not support watching", loader.Name())
	}

	calculator, fallback, err := buildCalculator(watchTechnique, "", 0, cfg)
	if err != nil {
		return err
	}

	reports := openReportStore()
	if reports != nil {
		defer reports.Close()
	}
	analysis := services.NewAnalysis(loader, calculator, fallback, services.NewClusterService(), reports)

	ctx := cmd.Context()
	for {
		run, err := analysis.Analyze(ctx, watchThreshold)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			// Keep watching through transient failures.
			logger.Warn("Analysis failed: %v", err)
		} else {
			renderRun(cmd, run)
		}

		cmd.Println("Watching for changes...")
		if err := watchable.Watch(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}
	}
}
