package ui

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
)

var (
	// TitleStyle renders screen headers in the browse TUI.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))

	// SelectedStyle highlights the focused row.
	SelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

	// DimStyle renders secondary text (help lines, counts).
	DimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// ErrorStyle renders failures.
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	// MessageStyle renders transient success messages.
	MessageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

// badgeColors is the palette provider badges cycle through.
var badgeColors = []string{"39", "208", "135", "118", "203"}

// ProviderBadge renders a provider id as a colored tag. The color is stable
// per id so rows from the same marketplace look alike.
func ProviderBadge(providerID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(providerID))
	color := badgeColors[int(h.Sum32())%len(badgeColors)]

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	return style.Render("[" + providerID + "]")
}
