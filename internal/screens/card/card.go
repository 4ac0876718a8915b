package card

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lingo/internal/cards"
	"github.com/abhisek/lingo/internal/router"
	"github.com/abhisek/lingo/internal/screen"
	"github.com/abhisek/lingo/internal/screens/summary"
	sess "github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/speech"
	"github.com/abhisek/lingo/internal/ui/components"
	"github.com/abhisek/lingo/internal/ui/layout"
)

// Listener captures one spoken answer. *speech.Recognizer implements it.
type Listener interface {
	Listen(ctx context.Context) (string, error)
	Finish()
	Stop()
}

// Speaker reads text aloud. *speech.Synthesizer implements it.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Speech holds the optional audio capabilities. Nil fields disable the
// matching feature.
type Speech struct {
	Listener Listener
	Speaker  Speaker
}

// CardScreen presents the session's current card and takes answers.
type CardScreen struct {
	sess   *sess.Session
	speech Speech

	cardID    int
	input     components.TextInput
	choice    components.MultiChoice
	sending   bool
	listening bool
	playing   bool
	finishing bool

	transcript string

	// alert is a blocking error: a failed send or completion.
	alert string
	// notice is a non-blocking message such as speech remediation.
	notice string
}

var _ screen.Screen = (*CardScreen)(nil)
var _ screen.KeyHintProvider = (*CardScreen)(nil)
var _ screen.EscapeHandler = (*CardScreen)(nil)
var _ screen.Closer = (*CardScreen)(nil)

// New creates a CardScreen over a started session.
func New(s *sess.Session, sp Speech) *CardScreen {
	c := &CardScreen{sess: s, speech: sp, cardID: -1}
	c.syncCard()
	return c
}

func (c *CardScreen) Init() tea.Cmd {
	return c.input.Init()
}

func (c *CardScreen) Title() string {
	return c.sess.LessonTitle()
}

// syncCard rebuilds the answer widgets when the current card changes.
func (c *CardScreen) syncCard() {
	card, _, ok := c.sess.Current()
	if !ok || card.ID == c.cardID {
		return
	}
	c.cardID = card.ID
	c.input = components.NewTextInput("Type your answer...", 80)
	c.choice = components.NewMultiChoice(card.Options)
	c.transcript = ""
	c.notice = ""
	c.alert = ""
}

func (c *CardScreen) KeyHints() []layout.KeyHint {
	card, _, ok := c.sess.Current()
	if !ok {
		if c.unsaved() && !c.finishing {
			return []layout.KeyHint{{Key: "F", Description: "Finish"}, {Key: "Esc", Description: "Cards"}}
		}
		return nil
	}
	if c.alert != "" {
		return []layout.KeyHint{{Key: "Enter", Description: "Dismiss"}, {Key: "Esc", Description: "Cards"}}
	}
	switch c.sess.State() {
	case sess.CardSubmitted:
		return []layout.KeyHint{{Key: "…", Description: "Checking"}}
	case sess.CardCorrect:
		return []layout.KeyHint{{Key: "Enter", Description: "Next card"}, {Key: "Esc", Description: "Cards"}}
	case sess.CardIncorrect:
		return []layout.KeyHint{{Key: "Enter", Description: "Try again"}, {Key: "Esc", Description: "Cards"}}
	}

	var hints []layout.KeyHint
	switch card.InputMode() {
	case cards.InputChoice:
		hints = append(hints, layout.KeyHint{Key: "1-9/↑↓", Description: "Choose"}, layout.KeyHint{Key: "Enter", Description: "Answer"})
	case cards.InputLetters:
		hints = append(hints, layout.KeyHint{Key: "a-z", Description: "Place"}, layout.KeyHint{Key: "⌫", Description: "Undo"},
			layout.KeyHint{Key: "Ctrl+U", Description: "Clear"}, layout.KeyHint{Key: "Enter", Description: "Answer"})
	case cards.InputSpeech:
		if c.listening {
			hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Done"}, layout.KeyHint{Key: "Esc", Description: "Cancel"})
		} else if c.speech.Listener != nil {
			hints = append(hints, layout.KeyHint{Key: "Space", Description: "Speak"})
		}
	case cards.InputContinue:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Continue"})
	default:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Answer"})
	}
	if c.speech.Speaker != nil && speakText(&card) != "" {
		hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Listen"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Cards"})
}

// HandleEscape cancels an active recording instead of leaving the card.
func (c *CardScreen) HandleEscape() (tea.Cmd, bool) {
	if c.listening && c.speech.Listener != nil {
		c.speech.Listener.Stop()
		return nil, true
	}
	return nil, false
}

// Close stops a recording left running when the screen goes away.
func (c *CardScreen) Close() {
	if c.listening && c.speech.Listener != nil {
		c.speech.Listener.Stop()
	}
}

func (c *CardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case answerSentMsg:
		return c.handleAnswerSent(msg)
	case transcriptMsg:
		return c.handleTranscript(msg)
	case advancedMsg:
		return c.handleAdvanced(msg)
	case finishedMsg:
		return c.handleFinished(msg)
	case playedMsg:
		c.playing = false
		if msg.Err != nil && speech.ReasonOf(msg.Err) != speech.ReasonAborted {
			c.notice = fmt.Sprintf("Could not play audio: %v", msg.Err)
		}
		return c, nil
	case tea.KeyPressMsg:
		return c.handleKey(msg)
	}

	if c.acceptsText() {
		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		return c, cmd
	}
	return c, nil
}

func (c *CardScreen) acceptsText() bool {
	card, _, ok := c.sess.Current()
	return ok && card.InputMode() == cards.InputText &&
		c.sess.State() == sess.CardPresented && !c.sending && c.alert == ""
}

func (c *CardScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if c.unsaved() {
		if key == "f" && !c.finishing {
			return c, c.finish()
		}
		return c, nil
	}
	if c.alert != "" {
		if key == "enter" {
			c.alert = ""
		}
		return c, nil
	}

	card, _, ok := c.sess.Current()
	if !ok || c.sending || c.finishing {
		return c, nil
	}

	switch c.sess.State() {
	case sess.CardCorrect:
		if key == "enter" {
			return c, c.advance()
		}
		return c, nil
	case sess.CardIncorrect:
		if key == "enter" {
			if err := c.sess.Retry(); err == nil {
				c.input.Reset()
				c.choice.Unmark()
				c.choice.Disabled = false
				c.transcript = ""
			}
		}
		return c, nil
	case sess.CardSubmitted:
		return c, nil
	}

	if !card.Valid() {
		return c, nil
	}

	if key == "tab" {
		return c, c.play(&card)
	}

	switch card.InputMode() {
	case cards.InputChoice:
		var i int
		var picked bool
		c.choice, i, picked = c.choice.Update(msg)
		if picked {
			return c.submit(sess.OptionInput(i), i)
		}
		return c, nil

	case cards.InputLetters:
		return c.handleLetterKey(msg)

	case cards.InputSpeech:
		switch key {
		case "space":
			return c, c.listen()
		case "enter":
			if c.listening && c.speech.Listener != nil {
				c.speech.Listener.Finish()
			}
		}
		return c, nil

	case cards.InputContinue:
		if key == "enter" {
			return c.submit(sess.TextInput(""), -1)
		}
		return c, nil

	default:
		if key == "enter" {
			return c.submit(sess.TextInput(c.input.Value()), -1)
		}
		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		return c, cmd
	}
}

func (c *CardScreen) handleLetterKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	c.notice = ""
	switch msg.String() {
	case "enter":
		return c.submit(sess.Input{Option: -1}, -1)
	case "backspace":
		_ = c.sess.UndoLetter()
		return c, nil
	case "ctrl+u", "delete":
		_ = c.sess.ClearLetters()
		return c, nil
	}
	if utf8.RuneCountInString(msg.Text) == 1 {
		r, _ := utf8.DecodeRuneInString(msg.Text)
		if err := c.sess.PlaceRune(r); err != nil {
			c.notice = fmt.Sprintf("No %q left in the pool.", r)
		}
	}
	return c, nil
}

// submit pre-checks an answer and sends it in the background.
func (c *CardScreen) submit(in sess.Input, option int) (screen.Screen, tea.Cmd) {
	c.notice = ""
	sub, err := c.sess.Begin(in)
	if err != nil {
		switch {
		case errors.Is(err, sess.ErrEmptyAnswer):
			c.notice = "Enter an answer first."
		case errors.Is(err, sess.ErrNotPresented):
		default:
			c.notice = err.Error()
		}
		return c, nil
	}

	c.sending = true
	c.input.Disabled = true
	c.choice.Disabled = true
	s := c.sess
	return c, func() tea.Msg {
		v, err := s.Send(context.Background(), sub)
		return answerSentMsg{Verdict: v, Option: option, Err: err}
	}
}

func (c *CardScreen) handleAnswerSent(msg answerSentMsg) (screen.Screen, tea.Cmd) {
	c.sending = false
	if msg.Err != nil {
		c.input.Disabled = false
		c.choice.Disabled = false
		c.alert = fmt.Sprintf("Could not send your answer: %v", msg.Err)
		return c, nil
	}

	v := msg.Verdict
	if msg.Option >= 0 {
		c.choice.Mark(msg.Option, v.Correct)
	}
	c.input.Mark(v.Correct)
	if v.Level > 0 {
		return c, screen.ProgressCmd(c.sess.Progress())
	}
	return c, nil
}

func (c *CardScreen) listen() tea.Cmd {
	if c.speech.Listener == nil {
		c.notice = "Speech input is not configured."
		return nil
	}
	if c.listening {
		return nil
	}
	c.listening = true
	c.notice = ""
	c.transcript = ""
	l := c.speech.Listener
	return func() tea.Msg {
		text, err := l.Listen(context.Background())
		return transcriptMsg{Text: text, Err: err}
	}
}

func (c *CardScreen) handleTranscript(msg transcriptMsg) (screen.Screen, tea.Cmd) {
	c.listening = false
	if msg.Err != nil {
		c.notice = speech.Message(msg.Err)
		return c, nil
	}
	c.transcript = msg.Text
	if c.sess.State() != sess.CardPresented {
		return c, nil
	}
	return c.submit(sess.TextInput(msg.Text), -1)
}

func (c *CardScreen) play(card *cards.Card) tea.Cmd {
	text := speakText(card)
	if c.speech.Speaker == nil || text == "" || c.playing {
		return nil
	}
	c.playing = true
	sp := c.speech.Speaker
	return func() tea.Msg {
		return playedMsg{Err: sp.Speak(context.Background(), text)}
	}
}

func (c *CardScreen) advance() tea.Cmd {
	s := c.sess
	c.finishing = true
	return func() tea.Msg {
		more, err := s.Advance(context.Background())
		return advancedMsg{More: more, Err: err}
	}
}

func (c *CardScreen) handleAdvanced(msg advancedMsg) (screen.Screen, tea.Cmd) {
	c.finishing = false
	if msg.Err != nil {
		c.alert = fmt.Sprintf("Could not complete the lesson: %v", msg.Err)
		return c, nil
	}
	if msg.More {
		c.syncCard()
		return c, c.input.Init()
	}
	return c.showSummary()
}

// unsaved reports whether every card is answered but completing the
// attempt failed, leaving Finish to be retried.
func (c *CardScreen) unsaved() bool {
	if c.sess.Phase() != sess.PhaseComplete {
		return false
	}
	_, ok := c.sess.Summary()
	return !ok
}

func (c *CardScreen) finish() tea.Cmd {
	s := c.sess
	c.alert = ""
	c.finishing = true
	return func() tea.Msg {
		sum, err := s.Finish(context.Background())
		return finishedMsg{Summary: sum, Err: err}
	}
}

func (c *CardScreen) handleFinished(msg finishedMsg) (screen.Screen, tea.Cmd) {
	c.finishing = false
	if msg.Err != nil {
		c.alert = fmt.Sprintf("Could not complete the lesson: %v", msg.Err)
		return c, nil
	}
	return c.showSummary()
}

func (c *CardScreen) showSummary() (screen.Screen, tea.Cmd) {
	sum, ok := c.sess.Summary()
	if !ok {
		return c, nil
	}
	return c, tea.Sequence(
		screen.ProgressCmd(c.sess.Progress()),
		func() tea.Msg { return router.ReplaceScreenMsg{Screen: summary.New(sum)} },
	)
}

// speakText is what Tab reads aloud for a card.
func speakText(card *cards.Card) string {
	if w := card.Words(); len(w) > 0 {
		return w[0]
	}
	if card.CorrectAnswer != "" {
		return card.CorrectAnswer
	}
	return card.Prompt
}
