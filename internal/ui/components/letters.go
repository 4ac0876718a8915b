package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/spelling"
	"github.com/abhisek/lingo/internal/ui/theme"
)

// LetterPool renders a spelling card: the slots being filled and the
// scrambled pool below them. Used tiles are dimmed.
type LetterPool struct {
	Pool   []spelling.Tile
	Placed []spelling.Placed
}

// View renders the slots and the pool.
func (l LetterPool) View() string {
	var slots []string
	for i := range l.Pool {
		text := "_"
		if i < len(l.Placed) {
			text = strings.ToUpper(string(l.Placed[i].Letter))
		}
		slots = append(slots, lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true).Render(text))
	}

	var tiles []string
	for _, t := range l.Pool {
		style := theme.Tile
		if t.Used {
			style = theme.TileUsed
		}
		tiles = append(tiles, style.Render(strings.ToUpper(string(t.Letter))))
	}

	return strings.Join(slots, " ") + "\n\n" + lipgloss.JoinHorizontal(lipgloss.Top, tiles...)
}
