package main

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"supportbot/internal/analytics"
	"supportbot/internal/domain"
)

var (
	statsTitle = lipgloss.NewStyle().Bold(true)
	statsLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(22)
)

func NewStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show analytics over logged interactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := a.analyticsLogger()
			if err != nil {
				return err
			}
			report := logger.GetAnalytics(cmd.Context())
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return printJSON(cmd, report)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderReport(report))
			return nil
		},
	}
}

func renderReport(r analytics.Report) string {
	line := func(label string, v any) string {
		return statsLabel.Render(label) + fmt.Sprint(v) + "\n"
	}
	s := statsTitle.Render("Interactions") + "\n"
	if r.Error != "" {
		s += line("error", r.Error)
	}
	s += line("total", r.TotalInteractions)
	s += line("with context", r.ContextUsage.WithContext)
	s += line("without context", r.ContextUsage.WithoutContext)
	if len(r.CategoryDistribution) == 0 {
		return s
	}
	s += "\n" + statsTitle.Render("Categories") + "\n"
	cats := make([]domain.Category, 0, len(r.CategoryDistribution))
	for c := range r.CategoryDistribution {
		cats = append(cats, c)
	}
	slices.SortFunc(cats, func(x, y domain.Category) int {
		if d := r.CategoryDistribution[y] - r.CategoryDistribution[x]; d != 0 {
			return d
		}
		if x < y {
			return -1
		}
		if x > y {
			return 1
		}
		return 0
	})
	for _, c := range cats {
		s += line(string(c), r.CategoryDistribution[c])
	}
	return s
}
