package card

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/cards"
	sess "github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/ui/components"
	"github.com/abhisek/lingo/internal/ui/layout"
	"github.com/abhisek/lingo/internal/ui/theme"
)

func (c *CardScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	card, index, ok := c.sess.Current()
	if !ok {
		if c.unsaved() {
			return c.renderUnsaved(width, cw)
		}
		return layout.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width, "\n\nNo cards.")
	}

	var b strings.Builder
	b.WriteString(c.renderInfoLine(&card, index, width))
	b.WriteString("\n\n")

	if !card.Valid() {
		block := components.Panel(
			fmt.Sprintf("This card could not be loaded.\n\n%v\n\nPress Esc to go back.", card.Err),
			cw, theme.Error)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, block))
		return b.String()
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, c.renderCard(&card, cw)))
	b.WriteString("\n")

	if c.alert != "" {
		alert := theme.Alert.Width(cw - 2).Render(c.alert + "\n\n" + dismissHint)
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, alert))
		return b.String()
	}

	if v, ok := c.sess.Verdict(); ok {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderFeedback(v, cw)))
	}

	if c.notice != "" {
		b.WriteString("\n")
		b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Accent), width, c.notice))
	}
	return b.String()
}

const (
	dismissHint = "Press Enter to dismiss."
	retryHint   = "Press F to try again or Esc to return to the cards."
)

// renderUnsaved is shown once every card is answered but the attempt has
// not been completed on the backend.
func (c *CardScreen) renderUnsaved(width, cw int) string {
	if c.finishing {
		return layout.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width, "\n\nSaving lesson...")
	}
	msg := c.alert
	if msg == "" {
		msg = "All cards are done but the lesson has not been saved yet."
	}
	alert := theme.Alert.Width(cw - 2).Render(msg + "\n\n" + retryHint)
	return "\n\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, alert)
}

// renderInfoLine shows the card type and position in the session.
func (c *CardScreen) renderInfoLine(card *cards.Card, index, width int) string {
	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + card.Type.DisplayName())
	if card.Topic != "" {
		left += lipgloss.NewStyle().Foreground(theme.TextDim).Render("  · " + card.Topic)
	}

	right := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Card %d/%d  %s %s",
			index+1, len(c.sess.Cards()),
			components.StatusDot(card.Status.Color(), card.Unattempted()),
			cards.Label(card.Status, card.Attempts)))

	line := left
	if pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4; pad > 0 {
		line += strings.Repeat(" ", pad) + right
	}
	return line + "\n" + lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0)))
}

// renderCard renders the question and the answer widget for its input mode.
func (c *CardScreen) renderCard(card *cards.Card, cw int) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(card.Question))
	if card.Prompt != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(card.Prompt))
	}
	b.WriteString("\n\n")

	presented := c.sess.State() == sess.CardPresented
	switch card.InputMode() {
	case cards.InputChoice:
		b.WriteString(c.choice.View())

	case cards.InputLetters:
		if pool, placed, ok := c.sess.Letters(); ok {
			b.WriteString(components.LetterPool{Pool: pool, Placed: placed}.View())
		}

	case cards.InputSpeech:
		if words := card.Words(); len(words) > 0 {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true).Render(strings.Join(words, " / ")))
			b.WriteString("\n\n")
		}
		switch {
		case c.listening:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render("● Listening... press Enter when done"))
		case c.transcript != "":
			b.WriteString(theme.Hint.Render(fmt.Sprintf("You said: %q", c.transcript)))
		case c.speech.Listener == nil:
			b.WriteString(theme.Hint.Render("Speech input is not configured."))
		case presented:
			b.WriteString(theme.Hint.Render("Press Space and say the answer."))
		}

	case cards.InputContinue:
		if card.Translation != "" {
			b.WriteString(theme.Hint.Render(card.Translation))
			b.WriteString("\n")
		}

	default:
		b.WriteString("Answer: " + c.input.View())
	}

	if c.sending {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Checking..."))
	}

	return components.Panel(b.String(), cw, theme.StatusColor(card.Status.Color()))
}

// renderFeedback renders the verdict panel.
func renderFeedback(v sess.Verdict, cw int) string {
	var b strings.Builder

	if v.Correct {
		b.WriteString(theme.Correct.Render("Correct!"))
		if v.ExperienceGained > 0 {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Highlight).Render(fmt.Sprintf("  +%d XP", v.ExperienceGained)))
		}
		if v.Translation != "" {
			b.WriteString("\n")
			b.WriteString(theme.Body.Render(v.Translation))
		}
	} else {
		b.WriteString(theme.Incorrect.Render("Not quite"))
		if v.ShowHint {
			b.WriteString("\n")
			b.WriteString(theme.Hint.Render("Hint: " + v.Hint))
		}
		if v.RevealAnswer {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Correct answer: " + v.CorrectAnswer))
		}
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(
		fmt.Sprintf("Attempts: %d  ", v.Attempts)) + components.StatusDot(v.Color, false))
	if v.Mastered {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Success).Render("  mastered"))
	}
	if v.LeveledUp {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(fmt.Sprintf("Level up! You reached level %d.", v.Level)))
	}

	border := theme.Error
	if v.Correct {
		border = theme.Success
	}
	return components.Panel(b.String(), cw, border)
}
