package viz

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles for CLI and live-view output.
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusOK = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusWarn = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)
)

// Status renders a solver status string green when converged, amber
// otherwise.
func Status(s string) string {
	if s == "optimal" || s == "converged" {
		return StatusOK.Render(s)
	}
	return StatusWarn.Render(s)
}

// Metric renders a labeled value pair.
func Metric(label, value string) string {
	return MetricLabel.Render(label+": ") + MetricValue.Render(value)
}
