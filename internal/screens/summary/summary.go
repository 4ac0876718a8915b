package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/router"
	"github.com/abhisek/lingo/internal/screen"
	"github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/ui/components"
	"github.com/abhisek/lingo/internal/ui/layout"
	"github.com/abhisek/lingo/internal/ui/theme"
)

// SummaryScreen displays the result of a finished lesson attempt.
type SummaryScreen struct {
	summary *session.Summary
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.EscapeHandler = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(summary *session.Summary) *SummaryScreen {
	return &SummaryScreen{summary: summary}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Lesson Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Lessons"},
		{Key: "Esc", Description: "Lessons"},
	}
}

// HandleEscape returns to the lesson list rather than the finished session.
func (s *SummaryScreen) HandleEscape() (tea.Cmd, bool) {
	return popToRoot, true
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, popToRoot
		}
	}
	return s, nil
}

func popToRoot() tea.Msg { return router.PopToRootMsg{} }

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}

	var b strings.Builder
	center := func(style lipgloss.Style, text string) {
		b.WriteString(layout.Centered(style, width, text))
		b.WriteString("\n")
	}

	center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), "Lesson complete!")
	center(lipgloss.NewStyle().Foreground(theme.Text), sum.LessonTitle)
	if sum.Topic != "" {
		center(lipgloss.NewStyle().Foreground(theme.TextDim), "Topic: "+sum.Topic)
	}
	b.WriteString("\n")

	score := "—"
	if sum.Score != nil {
		score = fmt.Sprintf("%d", *sum.Score)
	}
	center(lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true), "Score: "+score)
	b.WriteString("\n")

	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	center(lipgloss.NewStyle().Foreground(theme.Text), fmt.Sprintf(
		"Cards: %d/%d        Answers: %d        Accuracy: %.0f%%        Time: %d:%02d",
		sum.CorrectCards, sum.TotalCards, sum.Answers, sum.Accuracy()*100, mins, secs))
	b.WriteString("\n")

	bar := components.NewProgressBar("Cards", components.Fraction(sum.CorrectCards, sum.TotalCards), true, min(width-8, 60))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	center(lipgloss.NewStyle().Foreground(theme.Highlight), fmt.Sprintf("+%d XP this lesson", sum.ExperienceGained))
	into, span := session.LevelProgress(sum.TotalExperience)
	level := components.NewProgressBar(fmt.Sprintf("Level %d", sum.Level), components.Fraction(into, span), false, min(width-8, 60))
	level.Fill = theme.Accent
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, level.View()))
	b.WriteString("\n")
	center(lipgloss.NewStyle().Foreground(theme.TextDim), fmt.Sprintf("%d XP total, %d to the next level", sum.TotalExperience, span-into))

	return b.String()
}
