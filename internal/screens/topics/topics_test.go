package topics

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lingo/internal/backend"
	"github.com/abhisek/lingo/internal/router"
	"github.com/abhisek/lingo/internal/screen"
	sess "github.com/abhisek/lingo/internal/session"
)

const testCards = `[
	{"id": 1, "card_type": "choose", "question_text": "Sky color?", "correct_answer": "blue",
	 "options": ["red", "blue"], "topic": "Colors", "order_index": 0},
	{"id": 2, "card_type": "writing", "question_text": "Write hello", "correct_answer": "hello",
	 "topic": "Greetings", "order_index": 1}
]`

// stubScreen stands in for the card screen.
type stubScreen struct{ screen.Screen }

func startSession(t *testing.T) *sess.Session {
	t.Helper()
	s, err := sess.Start(context.Background(), backend.NewMockBackend(7, testCards), 7, sess.Options{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func TestTopicsScreen_Items(t *testing.T) {
	ts := New(startSession(t), func(*sess.Session) screen.Screen { return stubScreen{} })

	if len(ts.menu.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(ts.menu.Items))
	}
	view := ts.View(100, 30)
	for _, want := range []string{"All topics", "Colors", "Greetings", "0/1 mastered"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestTopicsScreen_ChooseTopic(t *testing.T) {
	s := startSession(t)
	var built bool
	ts := New(s, func(*sess.Session) screen.Screen {
		built = true
		return stubScreen{}
	})

	ts.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := ts.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Error("choosing should replace the picker")
	}
	if !built {
		t.Error("next screen should be built")
	}
	if s.Topic() != "Colors" || len(s.Cards()) != 1 {
		t.Errorf("topic = %q with %d cards", s.Topic(), len(s.Cards()))
	}
}

func TestTopicsScreen_AllTopics(t *testing.T) {
	s := startSession(t)
	ts := New(s, func(*sess.Session) screen.Screen { return stubScreen{} })

	_, cmd := ts.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if s.Topic() != "" || len(s.Cards()) != 2 {
		t.Errorf("topic = %q with %d cards", s.Topic(), len(s.Cards()))
	}
}
