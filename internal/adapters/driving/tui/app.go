// Package tui provides an interactive browser for duplicate clusters.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
)

// keyMap defines the keybindings for the cluster browser.
type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Back  key.Binding
	Quit  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// styles holds the lipgloss styles for the browser.
type styles struct {
	Title    lipgloss.Style
	Selected lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Score    lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4")),
		Normal:   lipgloss.NewStyle(),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Score:    lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
	}
}

// App is the bubbletea model for browsing an analysis run.
type App struct {
	run      *domain.AnalysisRun
	keys     keyMap
	styles   styles
	selected int
	expanded bool
	width    int
	height   int
}

// NewApp creates a cluster browser for a completed run.
func NewApp(run *domain.AnalysisRun) (*App, error) {
	if run == nil {
		return nil, fmt.Errorf("tui: run is required: %w", domain.ErrInvalidInput)
	}
	return &App{
		run:    run,
		keys:   defaultKeyMap(),
		styles: defaultStyles(),
		width:  80,
		height: 24,
	}, nil
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Up):
			if !a.expanded && a.selected > 0 {
				a.selected--
			}
		case key.Matches(msg, a.keys.Down):
			if !a.expanded && a.selected < len(a.run.Clusters)-1 {
				a.selected++
			}
		case key.Matches(msg, a.keys.Enter):
			if len(a.run.Clusters) > 0 {
				a.expanded = true
			}
		case key.Matches(msg, a.keys.Back):
			a.expanded = false
		}
	}
	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	if a.expanded {
		return a.viewCluster()
	}
	return a.viewClusters()
}

// viewClusters renders the cluster list.
func (a *App) viewClusters() string {
	var b strings.Builder

	title := fmt.Sprintf("Duplicate clusters — %s @ %.2f, %d documents",
		a.run.Technique, a.run.Threshold, a.run.Documents)
	b.WriteString(a.styles.Title.Render(title))
	b.WriteString("\n\n")

	if len(a.run.Clusters) == 0 {
		b.WriteString(a.styles.Muted.Render("No duplicate clusters found."))
		b.WriteString("\n")
	}

	for i, cluster := range a.run.Clusters {
		line := fmt.Sprintf("[%d] %d documents", i+1, cluster.Size())
		if i == a.selected {
			b.WriteString(a.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(a.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.styles.Muted.Render(a.helpLine()))
	return b.String()
}

// viewCluster renders the members and pair scores of the selected cluster.
func (a *App) viewCluster() string {
	cluster := a.run.Clusters[a.selected]

	var b strings.Builder
	b.WriteString(a.styles.Title.Render(fmt.Sprintf("Cluster %d — %d documents", a.selected+1, cluster.Size())))
	b.WriteString("\n\n")

	for _, member := range cluster.Members {
		b.WriteString("  " + a.truncate(member) + "\n")
	}

	pairs := a.clusterPairs(cluster)
	if len(pairs) > 0 {
		b.WriteString("\n")
		b.WriteString(a.styles.Title.Render("Pairs"))
		b.WriteString("\n")
		for _, r := range pairs {
			b.WriteString(fmt.Sprintf("  %s  %s ~ %s\n",
				a.styles.Score.Render(fmt.Sprintf("%.3f", r.Score)),
				a.truncate(r.Source), a.truncate(r.Target)))
		}
	}

	b.WriteString("\n")
	b.WriteString(a.styles.Muted.Render("esc back · q quit"))
	return b.String()
}

// clusterPairs filters the run's results to pairs inside one cluster.
func (a *App) clusterPairs(cluster domain.Cluster) []domain.SimilarityResult {
	var pairs []domain.SimilarityResult
	for _, r := range a.run.Results {
		if cluster.Contains(r.Source) && cluster.Contains(r.Target) {
			pairs = append(pairs, r)
		}
	}
	return pairs
}

func (a *App) helpLine() string {
	bindings := []key.Binding{a.keys.Up, a.keys.Down, a.keys.Enter, a.keys.Quit}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return strings.Join(parts, " · ")
}

func (a *App) truncate(s string) string {
	limit := a.width - 14
	if limit < 10 {
		limit = 10
	}
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
