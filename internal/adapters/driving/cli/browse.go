package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docdup-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/docdup-cli/internal/core/services"
)

var (
	browseTechnique string
	browseThreshold float64
)

var browseCmd = &cobra.Command{
	Use:   "browse [path]",
	Short: "Browse duplicate clusters interactively",
	Long: `Runs the analysis and opens an interactive browser for the resulting
duplicate clusters.

Controls:
  ↑/k, ↓/j - Navigate clusters
  Enter    - Open cluster
  Esc      - Back
  q        - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVarP(&browseTechnique, "technique", "t", "", "comparison technique: lexical, semantic, or composite")
	browseCmd.Flags().Float64Var(&browseThreshold, "threshold", 0.9, "similarity threshold in [0,1]")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
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
	calculator, fallback, err := buildCalculator(browseTechnique, "", 0, cfg)
	if err != nil {
		return err
	}

	reports := openReportStore()
	if reports != nil {
		defer reports.Close()
	}
	analysis := services.NewAnalysis(loader, calculator, fallback, services.NewClusterService(), reports)

	run, err := analysis.Analyze(cmd.Context(), browseThreshold)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	app, err := tui.NewApp(run)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
