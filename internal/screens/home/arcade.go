package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/backend"
	"github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/ui/components"
	"github.com/abhisek/lingo/internal/ui/theme"
)

const titleFull = `╦  ╦╔╗╔╔═╗╔═╗
║  ║║║║║ ╦║ ║
╩═╝╩╝╚╝╚═╝╚═╝`

const titleCompact = "L · I · N · G · O"

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	w := frameWidth - 6 // cabinet border + padding
	if w > 64 {
		w = 64
	}
	if w < 20 {
		w = 20
	}
	return w
}

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true)
	title := titleFull
	if compact {
		title = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title))
}

// renderStatsBar renders experience, level and completed lessons in a
// double-bordered box, with a bar for progress through the level.
func renderStatsBar(p backend.Progress, offline bool, cw int) string {
	xp := lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true).Render(fmt.Sprintf("★ %d XP", p.TotalExperience))
	lvl := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(fmt.Sprintf("LEVEL %d", p.CurrentLevel))
	done := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(fmt.Sprintf("✓ %d LESSONS", p.TotalLessonsCompleted))

	into, span := session.LevelProgress(p.TotalExperience)
	bar := components.NewProgressBar("", components.Fraction(into, span), false, cw-6)
	bar.Fill = theme.Accent

	stats := xp + "   " + lvl + "   " + done + "\n" + bar.View()
	if offline {
		stats += "\n" + lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("offline: showing saved progress")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// renderCabinetFrame wraps content in a double-border frame, centered
// vertically and horizontally within the given dimensions.
func renderCabinetFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
