package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/screen"
	"github.com/abhisek/lingo/internal/store"
	"github.com/abhisek/lingo/internal/ui/layout"
	"github.com/abhisek/lingo/internal/ui/theme"
)

type historyLoadedMsg struct {
	Sessions []store.SessionSummaryRecord
	Err      error
}

type answersLoadedMsg struct {
	SessionID string
	Answers   []store.AnswerEvent
	Err       error
}

// HistoryScreen displays past lesson sessions and their answers.
type HistoryScreen struct {
	eventRepo store.EventRepo
	sessions  []store.SessionSummaryRecord
	answers   map[string][]store.AnswerEvent
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		answers:   make(map[string][]store.AnswerEvent),
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		sessions, err := repo.QuerySessionSummaries(context.Background(), store.QueryOpts{Limit: 50})
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Answers"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case answersLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.answers[msg.SessionID] = msg.Answers
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if s.selected >= len(s.sessions) {
				return s, nil
			}
			s.expanded[s.selected] = !s.expanded[s.selected]
			id := s.sessions[s.selected].SessionID
			if _, ok := s.answers[id]; ok || !s.expanded[s.selected] {
				return s, nil
			}
			repo := s.eventRepo
			return s, func() tea.Msg {
				answers, err := repo.QueryAnswerEvents(context.Background(), id, store.QueryOpts{})
				return answersLoadedMsg{SessionID: id, Answers: answers, Err: err}
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No lessons finished yet. Start practicing!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		dateStr := sess.Timestamp.Format("Jan 02, 2006")
		durationStr := fmt.Sprintf("%d:%02d", sess.DurationSecs/60, sess.DurationSecs%60)

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		title := sess.LessonTitle
		if sess.Topic != "" {
			title += " (" + sess.Topic + ")"
		}
		line := fmt.Sprintf("%s%s  %-28s %d/%d cards  score %d  +%d XP  %s",
			prefix, dateStr, truncate(title, 28), sess.CardsCorrect, sess.CardsTotal,
			sess.Score, sess.ExperienceGained, durationStr)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(s.renderAnswers(sess.SessionID, width))
		}
	}

	return b.String()
}

func (s *HistoryScreen) renderAnswers(sessionID string, width int) string {
	answers, ok := s.answers[sessionID]
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)
	if !ok {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render("    Loading answers...")) + "\n"
	}
	if len(answers) == 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render("    No answers this session")) + "\n"
	}

	var b strings.Builder
	for _, a := range answers {
		mark, style := "✗", theme.Incorrect
		if a.Correct {
			mark, style = "✓", theme.Correct
		}
		answer := a.Answer
		if answer == "" {
			answer = "—"
		}
		line := fmt.Sprintf("    %s %-30s %s", mark, truncate(a.QuestionText, 30), truncate(answer, 24))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
