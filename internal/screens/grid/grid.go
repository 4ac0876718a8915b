package grid

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/backend"
	"github.com/abhisek/lingo/internal/cards"
	"github.com/abhisek/lingo/internal/grader"
	"github.com/abhisek/lingo/internal/router"
	"github.com/abhisek/lingo/internal/screen"
	"github.com/abhisek/lingo/internal/screens/card"
	"github.com/abhisek/lingo/internal/screens/summary"
	"github.com/abhisek/lingo/internal/screens/topics"
	sess "github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/store"
	"github.com/abhisek/lingo/internal/ui/components"
	"github.com/abhisek/lingo/internal/ui/layout"
	"github.com/abhisek/lingo/internal/ui/theme"
)

// Deps are the collaborators a lesson needs.
type Deps struct {
	Backend     backend.Backend
	Events      store.EventRepo
	Snapshots   store.SnapshotRepo
	Broadcaster *sess.Broadcaster
	Grader      *grader.Grader
	Speech      card.Speech
}

type sessionStartedMsg struct {
	Session *sess.Session
	Err     error
}

// cardCompletedMsg reaches the grid even while a card screen is on top.
type cardCompletedMsg struct {
	Event sess.CardCompleted
	Open  bool
}

func (cardCompletedMsg) StackMsg() {}

type statusesLoadedMsg struct {
	Statuses map[int]backend.CardStatus
	Err      error
}

type finishedMsg struct {
	Err error
}

// GridScreen shows a lesson's cards grouped by topic and colored by
// status. It starts the session and stays live while cards are answered.
type GridScreen struct {
	deps     Deps
	lessonID int
	topic    string

	sess   *sess.Session
	events <-chan sess.CardCompleted
	cancel func()

	// reloaded overrides session statuses after a manual refresh until the
	// card is answered again.
	reloaded map[int]backend.CardStatus
	last     int
	picked   bool
	busy     bool
	errMsg   string
	notice   string
}

var _ screen.Screen = (*GridScreen)(nil)
var _ screen.KeyHintProvider = (*GridScreen)(nil)
var _ screen.Closer = (*GridScreen)(nil)

// New creates a grid for lessonID. A non-empty topic skips the picker.
func New(deps Deps, lessonID int, topic string) *GridScreen {
	if deps.Broadcaster == nil {
		deps.Broadcaster = sess.NewBroadcaster()
	}
	return &GridScreen{
		deps:     deps,
		lessonID: lessonID,
		topic:    topic,
		picked:   topic != "",
		reloaded: make(map[int]backend.CardStatus),
		last:     -1,
	}
}

func (g *GridScreen) Init() tea.Cmd {
	if g.sess != nil {
		return nil
	}
	deps, lessonID, topic := g.deps, g.lessonID, g.topic
	return func() tea.Msg {
		s, err := sess.Start(context.Background(), deps.Backend, lessonID, sess.Options{
			Topic:       topic,
			Events:      deps.Events,
			Snapshots:   deps.Snapshots,
			Broadcaster: deps.Broadcaster,
			Grader:      deps.Grader,
		})
		return sessionStartedMsg{Session: s, Err: err}
	}
}

func (g *GridScreen) Title() string {
	if g.sess != nil {
		return g.sess.LessonTitle()
	}
	return "Lesson"
}

func (g *GridScreen) KeyHints() []layout.KeyHint {
	if g.sess == nil {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	if g.sess.Phase() == sess.PhaseComplete {
		return []layout.KeyHint{{Key: "Enter", Description: "Summary"}, {Key: "Esc", Description: "Back"}}
	}
	hints := []layout.KeyHint{{Key: "Enter", Description: "Practice"}}
	if g.canPickTopic() {
		hints = append(hints, layout.KeyHint{Key: "T", Description: "Topic"})
	}
	return append(hints,
		layout.KeyHint{Key: "R", Description: "Refresh"},
		layout.KeyHint{Key: "F", Description: "Finish"},
		layout.KeyHint{Key: "Esc", Description: "Back"},
	)
}

// Close drops the event subscription.
func (g *GridScreen) Close() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

func (g *GridScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionStartedMsg:
		if msg.Err != nil {
			g.errMsg = msg.Err.Error()
			return g, nil
		}
		g.sess = msg.Session
		g.events, g.cancel = g.deps.Broadcaster.Subscribe(16)
		return g, tea.Batch(screen.ProgressCmd(g.sess.Progress()), g.waitEvent())

	case cardCompletedMsg:
		if !msg.Open {
			return g, nil
		}
		g.last = msg.Event.CardID
		delete(g.reloaded, msg.Event.CardID)
		return g, g.waitEvent()

	case statusesLoadedMsg:
		g.busy = false
		if msg.Err != nil {
			g.notice = fmt.Sprintf("Could not refresh statuses: %v", msg.Err)
			return g, nil
		}
		g.reloaded = msg.Statuses
		g.notice = ""
		return g, nil

	case finishedMsg:
		g.busy = false
		if msg.Err != nil {
			g.notice = fmt.Sprintf("Could not finish the lesson: %v", msg.Err)
			return g, nil
		}
		return g, g.showSummary()

	case tea.KeyMsg:
		return g.handleKey(msg.String())
	}
	return g, nil
}

func (g *GridScreen) handleKey(key string) (screen.Screen, tea.Cmd) {
	if g.errMsg != "" {
		return g, nil
	}
	if g.sess == nil || g.busy {
		return g, nil
	}

	switch key {
	case "enter":
		if g.sess.Phase() == sess.PhaseComplete {
			if _, ok := g.sess.Summary(); ok {
				return g, g.showSummary()
			}
			return g, g.finish()
		}
		if g.canPickTopic() && len(g.sess.Topics()) > 1 {
			return g, g.pushTopics()
		}
		g.picked = true
		next := g.cardScreen(g.sess)
		return g, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	case "t":
		if g.canPickTopic() {
			return g, g.pushTopics()
		}
	case "r":
		g.busy = true
		b, id := g.deps.Backend, g.sess.LessonID()
		return g, func() tea.Msg {
			st, err := b.CardStatuses(context.Background(), id)
			return statusesLoadedMsg{Statuses: st, Err: err}
		}
	case "f":
		return g, g.finish()
	}
	return g, nil
}

// canPickTopic reports whether the topic can still change.
func (g *GridScreen) canPickTopic() bool {
	return !g.picked && g.sess.Phase() == sess.PhaseActive && len(g.sess.Topics()) > 0
}

func (g *GridScreen) pushTopics() tea.Cmd {
	g.picked = true
	t := topics.New(g.sess, g.cardScreen)
	return func() tea.Msg { return router.PushScreenMsg{Screen: t} }
}

func (g *GridScreen) cardScreen(s *sess.Session) screen.Screen {
	return card.New(s, g.deps.Speech)
}

func (g *GridScreen) finish() tea.Cmd {
	g.busy = true
	s := g.sess
	return func() tea.Msg {
		_, err := s.Finish(context.Background())
		return finishedMsg{Err: err}
	}
}

func (g *GridScreen) showSummary() tea.Cmd {
	sum, ok := g.sess.Summary()
	if !ok {
		return nil
	}
	return tea.Sequence(
		screen.ProgressCmd(g.sess.Progress()),
		func() tea.Msg { return router.PushScreenMsg{Screen: summary.New(sum)} },
	)
}

// waitEvent blocks on the next CardCompleted from the subscription.
func (g *GridScreen) waitEvent() tea.Cmd {
	ch := g.events
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		return cardCompletedMsg{Event: ev, Open: ok}
	}
}

func (g *GridScreen) View(width, height int) string {
	if g.errMsg != "" {
		return layout.Centered(lipgloss.NewStyle().Foreground(theme.Error), width,
			fmt.Sprintf("\n\n\nCould not start the lesson: %s\n\nPress Esc to go back.", g.errMsg))
	}
	if g.sess == nil {
		return layout.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width, "\n\n\nLoading lesson...")
	}

	all := g.sess.AllCards()
	ptrs := make([]*cards.Card, len(all))
	for i := range all {
		ptrs[i] = &all[i]
	}
	order, groups := cards.GroupByTopic(ptrs)
	current, _, _ := g.sess.Current()
	active := g.sess.Topic()

	var b strings.Builder
	b.WriteString("\n")

	mastered := 0
	for _, c := range ptrs {
		if g.status(c) == cards.StatusMastered {
			mastered++
		}
	}
	bar := components.NewProgressBar("Mastered", components.Fraction(mastered, len(ptrs)), true, min(width-8, 60))
	bar.Fill = theme.Success
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	var rows []string
	for _, topic := range order {
		name := topic
		if name == "" {
			name = "Other"
		}
		style := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
		if active != "" && topic != active {
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		}
		var cells []string
		for _, c := range groups[topic] {
			cells = append(cells, g.renderCell(c, c.ID == current.ID))
		}
		rows = append(rows, style.Render(fmt.Sprintf("%-14s", name))+" "+strings.Join(cells, " "))
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(rows, "\n")))
	b.WriteString("\n\n")

	legend := components.StatusDot(cards.ColorGreen, false) + " mastered   " +
		components.StatusDot(cards.ColorYellow, false) + " partial   " +
		components.StatusDot(cards.ColorRed, false) + " failed   " +
		components.StatusDot("", true) + " not tried"
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Foreground(theme.TextDim).Render(legend)))

	if g.sess.Phase() == sess.PhaseComplete {
		b.WriteString("\n\n")
		b.WriteString(layout.Centered(theme.Correct, width, "All cards done!"))
	}
	if g.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Accent), width, g.notice))
	}
	return b.String()
}

// status returns the card's status, preferring a manual refresh.
func (g *GridScreen) status(c *cards.Card) cards.Status {
	if st, ok := g.reloaded[c.ID]; ok {
		return st.Status.Normalize()
	}
	return c.Status
}

func (g *GridScreen) renderCell(c *cards.Card, current bool) string {
	attempts := c.Attempts
	if st, ok := g.reloaded[c.ID]; ok {
		attempts = st.AttemptsCount
	}
	st := g.status(c)
	unattempted := attempts == 0 && st == cards.StatusFailed
	if !c.Valid() {
		return lipgloss.NewStyle().Foreground(theme.Error).Render("!")
	}
	cell := components.StatusDot(st.Color(), unattempted)
	switch {
	case current:
		return lipgloss.NewStyle().Underline(true).Render("[" + cell + "]")
	case c.ID == g.last:
		return "(" + cell + ")"
	default:
		return " " + cell + " "
	}
}
