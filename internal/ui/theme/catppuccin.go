package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Red      = lipgloss.Color("#f38ba8")
	Yellow   = lipgloss.Color("#f9e2af")
	Peach    = lipgloss.Color("#fab387")

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)

	Success = lipgloss.NewStyle().Foreground(Green)
	Failure = lipgloss.NewStyle().Foreground(Red)
	Warning = lipgloss.NewStyle().Foreground(Yellow)
)

// Markers shared by the CLI output and the TUI.
var (
	MarkOK   = Success.Render("✓")
	MarkFail = Failure.Render("✗")
	MarkWarn = Warning.Render("!")
	MarkNote = Muted.Render("•")
)

// Result renders an outcome result with its marker.
func Result(result string) string {
	switch result {
	case "success":
		return MarkOK + " " + Success.Render(result)
	case "failure":
		return MarkFail + " " + Failure.Render(result)
	default:
		return MarkWarn + " " + result
	}
}
