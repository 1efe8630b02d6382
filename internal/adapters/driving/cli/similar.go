package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
	"github.com/custodia-labs/docdup-cli/internal/core/services"
)

var (
	similarTechnique string
	similarAlgorithm string
	similarThreshold float64
	similarLimit     int
	similarJSON      bool
)

var similarCmd = &cobra.Command{
	Use:   "similar <file> [path]",
	Short: "Find documents similar to one file",
	Long: `Compares a single document against the corpus and lists matches
above the threshold, best first.

Examples:
  docdup similar notes/draft.md ./docs
  docdup similar spec.md --github custodia-labs/handbook`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().StringVarP(&similarTechnique, "technique", "t", "", "comparison technique: lexical, semantic, or composite")
	similarCmd.Flags().StringVar(&similarAlgorithm, "algorithm", "", "lexical algorithm")
	similarCmd.Flags().Float64Var(&similarThreshold, "threshold", 0.5, "similarity threshold in [0,1]")
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "n", 10, "maximum number of results")
	similarCmd.Flags().BoolVar(&similarJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	cfg, err := openConfig()
	if err != nil {
		return err
	}

	query, err := readDocument(args[0])
	if err != nil {
		return err
	}

	path := ""
	if len(args) > 1 {
		path = args[1]
	}
	loader, err := buildLoader(cmd, path, cfg)
	if err != nil {
		return err
	}

	calculator, fallback, err := buildCalculator(similarTechnique, similarAlgorithm, 0, cfg)
	if err != nil {
		return err
	}

	analysis := services.NewAnalysis(loader, calculator, fallback, services.NewClusterService(), nil)
	results, err := analysis.Similar(cmd.Context(), query, similarThreshold)
	if err != nil {
		return fmt.Errorf("similar: %w", err)
	}

	if similarLimit > 0 && len(results) > similarLimit {
		results = results[:similarLimit]
	}

	if similarJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No similar documents found.")
		return nil
	}
	renderResults(cmd, results, terminalWidth())
	return nil
}

// readDocument loads one file as a query document.
func readDocument(path string) (domain.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return domain.Document{
		ID:      filepath.ToSlash(path),
		URI:     "file://" + abs,
		Title:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Content: string(content),
	}, nil
}
