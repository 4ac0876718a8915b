package topics

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/cards"
	"github.com/abhisek/lingo/internal/router"
	"github.com/abhisek/lingo/internal/screen"
	sess "github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/ui/components"
	"github.com/abhisek/lingo/internal/ui/layout"
	"github.com/abhisek/lingo/internal/ui/theme"
)

// Next builds the screen shown once a topic is chosen.
type Next func(s *sess.Session) screen.Screen

// TopicsScreen lets the learner restrict a session to one topic.
type TopicsScreen struct {
	sess   *sess.Session
	next   Next
	menu   components.Menu
	errMsg string
}

var _ screen.Screen = (*TopicsScreen)(nil)
var _ screen.KeyHintProvider = (*TopicsScreen)(nil)

// New creates a topic picker. The first entry practices every card.
func New(s *sess.Session, next Next) *TopicsScreen {
	t := &TopicsScreen{sess: s, next: next}

	all := s.AllCards()
	items := []components.MenuItem{{
		Label:  "All topics",
		Detail: fmt.Sprintf("%d cards", len(all)),
		Action: t.choose(""),
	}}
	ptrs := make([]*cards.Card, len(all))
	for i := range all {
		ptrs[i] = &all[i]
	}
	_, groups := cards.GroupByTopic(ptrs)
	for _, topic := range s.Topics() {
		mastered := 0
		for _, c := range groups[topic] {
			if c.Status == cards.StatusMastered {
				mastered++
			}
		}
		items = append(items, components.MenuItem{
			Label:  topic,
			Detail: fmt.Sprintf("%d/%d mastered", mastered, len(groups[topic])),
			Action: t.choose(topic),
		})
	}
	t.menu = components.NewMenu(items)
	return t
}

func (t *TopicsScreen) choose(topic string) func() tea.Cmd {
	return func() tea.Cmd {
		if err := t.sess.SelectTopic(topic); err != nil {
			t.errMsg = err.Error()
			return nil
		}
		next := t.next(t.sess)
		return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	}
}

func (t *TopicsScreen) Init() tea.Cmd {
	return nil
}

func (t *TopicsScreen) Title() string {
	return "Choose a topic"
}

func (t *TopicsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Practice"},
		{Key: "Esc", Description: "Back"},
	}
}

func (t *TopicsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	t.menu, cmd = t.menu.Update(msg)
	return t, cmd
}

func (t *TopicsScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), width, t.sess.LessonTitle()))
	b.WriteString("\n")
	b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width, "Which topic do you want to practice?"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, t.menu.View()))
	if t.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Error), width, t.errMsg))
	}
	return b.String()
}
