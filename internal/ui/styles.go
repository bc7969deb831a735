package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, focus
	SuccessColor = lipgloss.Color("#43BF6D") // Green - results
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors
	MutedColor   = lipgloss.Color("#626262") // Gray - labels, help
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// previewLimit caps how much of a long string is printed
const previewLimit = 120

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(PrimaryColor).
			Bold(true).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(14)

	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	FocusedStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	SectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(MutedColor).
			Padding(0, 1)

	ResultStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SuccessColor).
			Padding(0, 1)

	// BadgeStyles color the algorithm badge
	BadgeStyles = map[string]lipgloss.Style{
		"iterative": lipgloss.NewStyle().Foreground(TextColor).Background(lipgloss.Color("#2D7FF9")).Padding(0, 1),
		"recursive": lipgloss.NewStyle().Foreground(TextColor).Background(lipgloss.Color("#E0862D")).Padding(0, 1),
	}
)

// row renders a label/value line
func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(label), ValueStyle.Render(value))
}

// badge renders the algorithm badge
func badge(algorithm, label string) string {
	style, ok := BadgeStyles[algorithm]
	if !ok {
		style = lipgloss.NewStyle().Padding(0, 1)
	}
	return style.Render(label)
}

// preview shortens s for display
func preview(s string) string {
	if len(s) <= previewLimit {
		return s
	}
	return s[:previewLimit] + "…"
}
