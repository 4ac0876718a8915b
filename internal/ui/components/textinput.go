package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with Lingo styling.
type TextInput struct {
	Model    textinput.Model
	MaxWidth int

	// Disabled ignores typing while an answer is being sent.
	Disabled bool

	marked bool
	valid  bool
}

// NewTextInput creates a new styled text input.
func NewTextInput(placeholder string, maxWidth int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	if maxWidth > 0 {
		ti.CharLimit = maxWidth
	}

	return TextInput{
		Model:    ti,
		MaxWidth: maxWidth,
	}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.Disabled {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.marked {
		if t.valid {
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		} else {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return view
}

// Value returns the current input value, trimmed.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// Mark shows a verdict next to the input.
func (t *TextInput) Mark(valid bool) {
	t.marked = true
	t.valid = valid
}

// Reset clears the value and any verdict.
func (t *TextInput) Reset() {
	t.Model.SetValue("")
	t.marked = false
}
