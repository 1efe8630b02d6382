package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docdup-cli/internal/core/services"
)

var (
	analyzeTechnique string
	analyzeAlgorithm string
	analyzeThreshold float64
	analyzeWorkers   int
	analyzeJSON      bool
	analyzeCSV       string
	analyzeNoSave    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Compute the similarity matrix and duplicate clusters",
	Long: `Loads all documents under a path (or from a GitHub repository),
computes pairwise similarity, and groups near-duplicates into clusters.

Scores below the threshold are reported as 0.0 and never form clusters.
Examples:
  docdup analyze ./docs
  docdup analyze ./docs --technique composite --threshold 0.85
  docdup analyze --github custodia-labs/handbook --technique lexical`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeTechnique, "technique", "t", "", "comparison technique: lexical, semantic, or composite")
	analyzeCmd.Flags().StringVar(&analyzeAlgorithm, "algorithm", "", "lexical algorithm: token-overlap, levenshtein, jaro-winkler, or sorensen-dice")
	analyzeCmd.Flags().Float64Var(&analyzeThreshold, "threshold", 0.9, "similarity threshold in [0,1]")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "parallel pair evaluations (0 = number of CPUs)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the full run as JSON")
	analyzeCmd.Flags().StringVar(&analyzeCSV, "csv", "", "export similar pairs to a CSV file")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "do not record the run in the report store")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	calculator, fallback, err := buildCalculator(analyzeTechnique, analyzeAlgorithm, analyzeWorkers, cfg)
	if err != nil {
		return err
	}

	threshold := analyzeThreshold
	if !cmd.Flags().Changed("threshold") {
		if v := cfg.GetFloat("similarity.threshold"); v > 0 {
			threshold = v
		}
	}

	reports := openReportStore()
	if analyzeNoSave {
		reports = nil
	}
	if reports != nil {
		defer reports.Close()
	}

	analysis := services.NewAnalysis(loader, calculator, fallback, services.NewClusterService(), reports)
	run, err := analysis.Analyze(cmd.Context(), threshold)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	if analyzeCSV != "" {
		if err := writeResultsCSV(analyzeCSV, run.Results); err != nil {
			return err
		}
		cmd.Printf("Wrote %d pairs to %s\n", len(run.Results), analyzeCSV)
	}

	if analyzeJSON {
		data, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal run: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	renderRun(cmd, run)
	return nil
}
