package card

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lingo/internal/backend"
	"github.com/abhisek/lingo/internal/cards"
	sess "github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/speech"
)

const choiceCard = `{"id": 1, "card_type": "choose", "question_text": "Sky color?", "correct_answer": "blue",
	"options": ["red", "blue"], "topic": "Colors", "order_index": 0}`

const repeatCard = `{"id": 2, "card_type": "repeat", "question_text": "Say it",
	"extra_data": {"words": ["it is raining"]}, "topic": "Weather", "order_index": 1}`

type fakeListener struct {
	text     string
	err      error
	finished bool
	stopped  bool
}

func (f *fakeListener) Listen(context.Context) (string, error) { return f.text, f.err }
func (f *fakeListener) Finish()                                 { f.finished = true }
func (f *fakeListener) Stop()                                   { f.stopped = true }

type fakeSpeaker struct {
	spoken []string
	err    error
}

func (f *fakeSpeaker) Speak(_ context.Context, text string) error {
	f.spoken = append(f.spoken, text)
	return f.err
}

func newTestScreen(t *testing.T, sp Speech, raw ...string) (*CardScreen, *backend.MockBackend) {
	t.Helper()
	mock := backend.NewMockBackend(7, "["+strings.Join(raw, ",")+"]")
	s, err := sess.Start(context.Background(), mock, 7, sess.Options{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return New(s, sp), mock
}

func key(text string) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: []rune(text)[0], Text: text}
}

var enter = tea.KeyPressMsg{Code: tea.KeyEnter}

func TestCardScreen_ChoiceSubmit(t *testing.T) {
	c, mock := newTestScreen(t, Speech{}, choiceCard)
	mock.Verdict(true, cards.StatusMastered, 1, 10)

	_, cmd := c.Update(key("2"))
	if cmd == nil {
		t.Fatal("expected a send command")
	}
	if c.sess.State() != sess.CardSubmitted || !c.sending {
		t.Fatalf("state = %v, sending = %v", c.sess.State(), c.sending)
	}

	c.Update(cmd())
	if c.sess.State() != sess.CardCorrect {
		t.Errorf("state = %v, want correct", c.sess.State())
	}
	if c.sending {
		t.Error("sending should be cleared")
	}
	sent := mock.SubmittedAnswers()
	if len(sent) != 1 || sent[0].Answer != "blue" || !sent[0].IsCorrect {
		t.Errorf("sent = %+v", sent)
	}
	if !strings.Contains(c.View(100, 30), "Correct") {
		t.Error("view should show the verdict")
	}
}

func TestCardScreen_SendErrorShowsAlert(t *testing.T) {
	c, mock := newTestScreen(t, Speech{}, choiceCard)
	mock.AddAnswer(backend.MockAnswer{Err: errors.New("connection reset")})

	_, cmd := c.Update(key("1"))
	c.Update(cmd())

	if !strings.Contains(c.alert, "connection reset") {
		t.Errorf("alert = %q", c.alert)
	}
	if c.sess.State() != sess.CardPresented {
		t.Errorf("state = %v, card should be answerable again", c.sess.State())
	}

	c.Update(enter)
	if c.alert != "" {
		t.Error("Enter should dismiss the alert")
	}
	if c.choice.Disabled {
		t.Error("options should be enabled after a failed send")
	}
}

func TestCardScreen_IncorrectThenRetry(t *testing.T) {
	c, mock := newTestScreen(t, Speech{}, choiceCard)
	mock.Verdict(false, cards.StatusFailed, 1, 0)

	_, cmd := c.Update(key("1"))
	c.Update(cmd())
	if c.sess.State() != sess.CardIncorrect {
		t.Fatalf("state = %v, want incorrect", c.sess.State())
	}

	c.Update(enter)
	if c.sess.State() != sess.CardPresented {
		t.Errorf("state = %v, want presented after retry", c.sess.State())
	}
}

func TestCardScreen_SpeechTranscriptSubmits(t *testing.T) {
	l := &fakeListener{text: "it is raining"}
	c, mock := newTestScreen(t, Speech{Listener: l}, repeatCard)
	mock.Verdict(true, cards.StatusMastered, 1, 10)

	_, cmd := c.Update(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	if cmd == nil || !c.listening {
		t.Fatal("Space should start listening")
	}

	c.Update(enter)
	if !l.finished {
		t.Error("Enter while listening should finish the recording")
	}

	_, send := c.Update(cmd())
	if send == nil {
		t.Fatal("transcript should be submitted")
	}
	if c.transcript != "it is raining" {
		t.Errorf("transcript = %q", c.transcript)
	}
	c.Update(send())

	sent := mock.SubmittedAnswers()
	if len(sent) != 1 || sent[0].Answer != "it is raining" || !sent[0].IsCorrect {
		t.Errorf("sent = %+v", sent)
	}
}

func TestCardScreen_SpeechErrors(t *testing.T) {
	c, _ := newTestScreen(t, Speech{Listener: &fakeListener{}}, repeatCard)

	c.listening = true
	c.Update(transcriptMsg{Err: &speech.Error{Reason: speech.ReasonAborted}})
	if c.listening || c.notice != "" {
		t.Errorf("aborted recognition should be silent, notice = %q", c.notice)
	}

	c.Update(transcriptMsg{Err: &speech.Error{Reason: speech.ReasonNoSpeech}})
	if !strings.Contains(c.notice, "No speech") {
		t.Errorf("notice = %q", c.notice)
	}
	if c.sess.State() != sess.CardPresented {
		t.Errorf("state = %v, nothing should be submitted", c.sess.State())
	}
}

func TestCardScreen_HandleEscape(t *testing.T) {
	l := &fakeListener{}
	c, _ := newTestScreen(t, Speech{Listener: l}, repeatCard)

	if _, handled := c.HandleEscape(); handled {
		t.Error("Esc should leave the card when not recording")
	}

	c.listening = true
	if _, handled := c.HandleEscape(); !handled {
		t.Error("Esc should cancel the recording")
	}
	if !l.stopped {
		t.Error("listener should be stopped")
	}
}

func TestCardScreen_TabPlaysPrompt(t *testing.T) {
	sp := &fakeSpeaker{}
	c, _ := newTestScreen(t, Speech{Speaker: sp}, repeatCard)

	_, cmd := c.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if cmd == nil {
		t.Fatal("Tab should play the prompt")
	}
	c.Update(cmd())
	if len(sp.spoken) != 1 || sp.spoken[0] != "it is raining" {
		t.Errorf("spoken = %v", sp.spoken)
	}
	if c.playing || c.notice != "" {
		t.Errorf("playing = %v, notice = %q", c.playing, c.notice)
	}

	c.Update(playedMsg{Err: errors.New("no player")})
	if !strings.Contains(c.notice, "Could not play audio") {
		t.Errorf("notice = %q", c.notice)
	}
}

func TestCardScreen_LastCardShowsSummary(t *testing.T) {
	c, mock := newTestScreen(t, Speech{}, choiceCard)
	mock.Verdict(true, cards.StatusMastered, 1, 10)

	_, cmd := c.Update(key("2"))
	c.Update(cmd())

	_, cmd = c.Update(enter)
	if cmd == nil {
		t.Fatal("Enter on a correct card should advance")
	}
	_, cmd = c.Update(cmd())
	if cmd == nil {
		t.Fatal("expected the summary to be shown")
	}
	if _, ok := c.sess.Summary(); !ok {
		t.Error("lesson should be complete")
	}
	if mock.CallCount(backend.OpCompleteAttempt) != 1 {
		t.Errorf("complete calls = %d", mock.CallCount(backend.OpCompleteAttempt))
	}
}

func TestCardScreen_AdvanceMovesToNextCard(t *testing.T) {
	c, mock := newTestScreen(t, Speech{}, choiceCard, repeatCard)
	mock.Verdict(true, cards.StatusMastered, 1, 10)

	_, cmd := c.Update(key("2"))
	c.Update(cmd())
	_, cmd = c.Update(enter)
	c.Update(cmd())

	if c.cardID != 2 {
		t.Errorf("cardID = %d, want 2", c.cardID)
	}
	if c.sess.State() != sess.CardPresented {
		t.Errorf("state = %v", c.sess.State())
	}
}

func TestCardScreen_CompleteErrorShowsAlert(t *testing.T) {
	c, mock := newTestScreen(t, Speech{}, choiceCard)
	mock.Verdict(true, cards.StatusMastered, 1, 10)
	mock.SetErr(backend.OpCompleteAttempt, errors.New("backend down"))

	_, cmd := c.Update(key("2"))
	c.Update(cmd())
	_, cmd = c.Update(enter)
	c.Update(cmd())

	if c.sess.Phase() != sess.PhaseComplete {
		t.Fatalf("phase = %v, want complete", c.sess.Phase())
	}
	view := c.View(100, 30)
	for _, want := range []string{"Could not complete the lesson", "backend down", "Press F to try again"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "No cards.") {
		t.Error("a failed completion should not look like an empty lesson")
	}
	hints := c.KeyHints()
	if len(hints) == 0 || hints[0].Key != "F" {
		t.Errorf("hints = %v, want F first", hints)
	}

	// Enter does not hide the failure.
	c.Update(enter)
	if !strings.Contains(c.View(100, 30), "Press F to try again") {
		t.Error("retry prompt should stay visible")
	}

	mock.SetErr(backend.OpCompleteAttempt, nil)
	_, cmd = c.Update(key("f"))
	if cmd == nil {
		t.Fatal("F should retry completing the lesson")
	}
	_, cmd = c.Update(cmd())
	if cmd == nil {
		t.Fatal("expected the summary after a successful retry")
	}
	if _, ok := c.sess.Summary(); !ok {
		t.Error("summary should be cached after the retry")
	}
	if mock.CallCount(backend.OpCompleteAttempt) != 2 {
		t.Errorf("complete calls = %d, want 2", mock.CallCount(backend.OpCompleteAttempt))
	}
}
