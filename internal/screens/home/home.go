package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/backend"
	"github.com/abhisek/lingo/internal/router"
	"github.com/abhisek/lingo/internal/screen"
	"github.com/abhisek/lingo/internal/screens/grid"
	"github.com/abhisek/lingo/internal/screens/history"
	"github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/ui/components"
	"github.com/abhisek/lingo/internal/ui/layout"
	"github.com/abhisek/lingo/internal/ui/theme"
)

type homeLoadedMsg struct {
	Lessons  []backend.LessonInfo
	Progress backend.Progress
	Offline  bool
	Err      error
}

// HomeScreen lists the lessons with the learner's progress.
type HomeScreen struct {
	deps     grid.Deps
	menu     components.Menu
	lessons  []backend.LessonInfo
	progress backend.Progress
	offline  bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps grid.Deps) *HomeScreen {
	h := &HomeScreen{deps: deps, progress: backend.DefaultProgress()}
	h.menu = components.NewMenu(h.menuItems())
	return h
}

// Init loads the lesson list and progress. It runs again whenever the
// learner returns home, so finished lessons show up.
func (h *HomeScreen) Init() tea.Cmd {
	deps := h.deps
	return func() tea.Msg {
		ctx := context.Background()
		msg := homeLoadedMsg{Progress: backend.DefaultProgress()}

		if p, err := deps.Backend.Progress(ctx); err == nil {
			msg.Progress = *p
		} else if deps.Snapshots != nil {
			if snap, serr := deps.Snapshots.Latest(ctx); serr == nil && snap != nil {
				msg.Progress = session.ProgressFromSnapshot(snap.Data)
				msg.Offline = true
			}
		}

		msg.Lessons, msg.Err = deps.Backend.Lessons(ctx)
		return msg
	}
}

func (h *HomeScreen) Title() string {
	return "Lessons"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(homeLoadedMsg); ok {
		h.loaded = true
		h.progress = msg.Progress
		h.offline = msg.Offline
		h.errMsg = ""
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
		}
		h.lessons = msg.Lessons
		selected := h.menu.Selected
		h.menu = components.NewMenu(h.menuItems())
		if selected < len(h.menu.Items) {
			h.menu.Selected = selected
		}
		return h, screen.ProgressCmd(h.progress)
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) menuItems() []components.MenuItem {
	var items []components.MenuItem
	for _, l := range h.lessons {
		id := l.ID
		label := l.Title
		if l.UserCompleted {
			label = "✓ " + label
		}
		detail := fmt.Sprintf("%d/%d cards", l.Progress.CardsCompleted, l.Progress.CardsTotal)
		if l.LanguageLevel != "" {
			detail = l.LanguageLevel + "  " + detail
		}
		items = append(items, components.MenuItem{
			Label:  label,
			Detail: detail,
			Action: func() tea.Cmd {
				g := grid.New(h.deps, id, "")
				return func() tea.Msg { return router.PushScreenMsg{Screen: g} }
			},
		})
	}
	items = append(items,
		components.MenuItem{Label: "History", Action: func() tea.Cmd {
			if h.deps.Events == nil {
				return nil
			}
			s := history.New(h.deps.Events)
			return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
		}, Disabled: h.deps.Events == nil},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	)
	return items
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompactHeight(height) || width < 100
	cw := contentWidth(width)

	sections := []string{renderTitle(cw, compact), renderStatsBar(h.progress, h.offline, cw)}

	switch {
	case !h.loaded:
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.TextDim).Render("Loading lessons..."))
	case h.errMsg != "":
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Error).Width(cw).Align(lipgloss.Center).
			Render("Could not load lessons: "+h.errMsg))
	case len(h.lessons) == 0:
		sections = append(sections, theme.Hint.Render("No lessons yet."))
	}
	sections = append(sections, lipgloss.NewStyle().Width(cw).Render(h.menu.View()))

	return renderCabinetFrame(strings.Join(sections, "\n\n"), width, height)
}
