package cli

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
)

// Output styles.
var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// terminalWidth returns the terminal width, or a sane default when not a
// terminal (pipes, CI).
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 100
}

// truncate shortens a string to fit a column.
func truncate(s string, width int) string {
	if width < 4 || len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}

// renderRun prints an analysis run as human-readable text.
func renderRun(cmd *cobra.Command, run *domain.AnalysisRun) {
	width := terminalWidth()

	cmd.Println(headingStyle.Render("Analysis"))
	cmd.Printf("  Technique:  %s\n", run.Technique)
	cmd.Printf("  Threshold:  %.2f\n", run.Threshold)
	cmd.Printf("  Documents:  %d\n", run.Documents)
	cmd.Printf("  Pairs:      %d (mean %.3f, max %.3f)\n", run.Stats.Pairs, run.Stats.Mean, run.Stats.Max)
	cmd.Println()

	if len(run.Clusters) == 0 {
		cmd.Println("No duplicate clusters found.")
	} else {
		cmd.Println(headingStyle.Render(fmt.Sprintf("Duplicate clusters (%d)", len(run.Clusters))))
		for i, cluster := range run.Clusters {
			cmd.Printf("  [%d] %d documents\n", i+1, cluster.Size())
			for _, member := range cluster.Members {
				cmd.Printf("      %s\n", truncate(member, width-8))
			}
		}
		cmd.Println()
	}

	if len(run.Results) > 0 {
		cmd.Println(headingStyle.Render("Similar pairs"))
		renderResults(cmd, run.Results, width)
	}
	cmd.Println(dimStyle.Render("Run " + run.ID))
}

// renderResults prints similarity results as an aligned table.
func renderResults(cmd *cobra.Command, results []domain.SimilarityResult, width int) {
	col := (width - 24) / 2
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  SCORE\tSOURCE\tTARGET\tRELATIONSHIP")
	for _, r := range results {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
			scoreStyle.Render(fmt.Sprintf("%.3f", r.Score)),
			truncate(r.Source, col),
			truncate(r.Target, col),
			r.Metadata["relationship"])
	}
	_ = w.Flush()
}

// writeResultsCSV exports similarity results to a CSV file.
func writeResultsCSV(path string, results []domain.SimilarityResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"source", "target", "score", "technique", "relationship"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range results {
		record := []string{
			r.Source,
			r.Target,
			strconv.FormatFloat(r.Score, 'f', 4, 64),
			string(r.Technique),
			r.Metadata["relationship"],
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
