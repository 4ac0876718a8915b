package components

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/ui/theme"
)

// ContentWidth returns the inner width used for card panels.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Panel wraps content in a rounded-border box at the given content width.
func Panel(content string, cw int, border color.Color) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(cw - 2).
		Padding(0, 2).
		Render(content)
}

// StatusDot renders a colored marker for a backend status color name.
func StatusDot(colorName string, unattempted bool) string {
	if unattempted {
		return lipgloss.NewStyle().Foreground(theme.StatusNone).Render("○")
	}
	return lipgloss.NewStyle().Foreground(theme.StatusColor(colorName)).Render("●")
}
