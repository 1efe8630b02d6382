package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docdup-cli/internal/core/services"
)

var (
	mergeMinSection     int
	mergeMatchThreshold float64
	mergeNoAnnotate     bool
	mergeAlgorithm      string
	mergeOutput         string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <source> <target>",
	Short: "Merge unique sections of one document into another",
	Long: `Splits both documents into sections on blank lines and appends every
source section that has no close match in the target. The target text
is always preserved unchanged at the start of the output.

The match threshold uses a 0-100 scale; sections scoring at or above
it against any target section are considered already present.

Examples:
  docdup merge draft.md canonical.md
  docdup merge draft.md canonical.md --match-threshold 70 -o merged.md`,
	Args: cobra.ExactArgs(2),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().IntVar(&mergeMinSection, "min-section-length", 0, "ignore sections shorter than this many characters (default 20)")
	mergeCmd.Flags().Float64Var(&mergeMatchThreshold, "match-threshold", 0, "section match threshold on a 0-100 scale (default 85)")
	mergeCmd.Flags().BoolVar(&mergeNoAnnotate, "no-annotate", false, "omit provenance markers on appended sections")
	mergeCmd.Flags().StringVar(&mergeAlgorithm, "algorithm", "", "lexical algorithm for section matching")
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "write merged text to a file instead of stdout")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := openConfig()
	if err != nil {
		return err
	}

	source, err := readDocument(args[0])
	if err != nil {
		return err
	}
	target, err := readDocument(args[1])
	if err != nil {
		return err
	}

	var lexicalOpts []services.LexicalOption
	algorithm := mergeAlgorithm
	if algorithm == "" {
		algorithm = cfg.GetString("similarity.algorithm")
	}
	if algorithm != "" {
		lexicalOpts = append(lexicalOpts, services.WithLexicalAlgorithm(services.LexicalAlgorithm(algorithm)))
	}

	var opts []services.MergeOption
	if cmd.Flags().Changed("min-section-length") {
		opts = append(opts, services.WithMinSectionLength(mergeMinSection))
	} else if v := cfg.GetInt("merge.min_section_length"); v > 0 {
		opts = append(opts, services.WithMinSectionLength(v))
	}
	if cmd.Flags().Changed("match-threshold") {
		opts = append(opts, services.WithMatchThreshold(mergeMatchThreshold))
	} else if v := cfg.GetFloat("merge.match_threshold"); v > 0 {
		opts = append(opts, services.WithMatchThreshold(v))
	}
	if mergeNoAnnotate {
		opts = append(opts, services.WithProvenanceMarkers(false))
	}

	merger, err := services.NewMergeService(services.NewLexicalCalculator(lexicalOpts...), opts...)
	if err != nil {
		return err
	}

	result, err := merger.Merge(cmd.Context(), source, target)
	if err != nil {
		return fmt.Errorf("merge: %w", err)
	}

	if mergeOutput != "" {
		if err := os.WriteFile(mergeOutput, []byte(result.MergedText), 0644); err != nil {
			return fmt.Errorf("write %s: %w", mergeOutput, err)
		}
		cmd.Printf("Merged %d sections into %s\n", result.SectionsAdded, mergeOutput)
		return nil
	}

	cmd.Print(result.MergedText)
	if result.SectionsAdded > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "\nMerged %d sections from %s\n", result.SectionsAdded, source.ID)
	}
	return nil
}
