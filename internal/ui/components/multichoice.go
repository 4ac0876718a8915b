package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/ui/theme"
)

// MultiChoice is a single-choice option list. The correct option is not
// known locally; Mark colors the chosen option once a verdict arrives.
type MultiChoice struct {
	Options  []string
	Selected int
	Disabled bool

	marked  int
	correct bool
}

// NewMultiChoice creates a new option list.
func NewMultiChoice(options []string) MultiChoice {
	return MultiChoice{
		Options: options,
		marked:  -1,
	}
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update handles arrow navigation and number keys. It reports the option
// picked with Enter or a number key.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, int, bool) {
	if m.Disabled {
		return m, -1, false
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, -1, false
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		if len(m.Options) > 0 {
			return m, m.Selected, true
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			i := int(key[0] - '1')
			if i < len(m.Options) {
				m.Selected = i
				return m, i, true
			}
		}
	}
	return m, -1, false
}

// Mark records the verdict for option i.
func (m *MultiChoice) Mark(i int, correct bool) {
	m.marked = i
	m.correct = correct
}

// Unmark clears a verdict so the learner can choose again.
func (m *MultiChoice) Unmark() {
	m.marked = -1
}

// View renders the options.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && m.marked < 0 {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case i == m.marked && m.correct:
			style = lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
		case i == m.marked:
			style = lipgloss.NewStyle().Foreground(theme.Error).Bold(true)
		case m.marked >= 0 || m.Disabled:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
