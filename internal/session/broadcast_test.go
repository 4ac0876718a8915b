package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/abhisek/lingo/internal/cards"
)

func TestBroadcaster_FanOut(t *testing.T) {
	b := NewBroadcaster()
	a, cancelA := b.Subscribe(1)
	defer cancelA()
	c, cancelC := b.Subscribe(1)
	defer cancelC()

	ev := CardCompleted{Type: EventCardCompleted, CardID: 3, Status: cards.StatusPartial, Color: "yellow"}
	b.Publish(ev)

	for _, ch := range []<-chan CardCompleted{a, c} {
		select {
		case got := <-ch:
			if got != ev {
				t.Errorf("got %+v, want %+v", got, ev)
			}
		default:
			t.Error("subscriber missed the event")
		}
	}
}

func TestBroadcaster_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			b.Publish(CardCompleted{CardID: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
	if got := <-ch; got.CardID != 0 {
		t.Errorf("first buffered event = %d, want 0", got.CardID)
	}
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe(1)
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
	b.Publish(CardCompleted{CardID: 1})
}

// chanWriter hands every write to a channel.
type chanWriter chan []byte

func (w chanWriter) Write(p []byte) (int, error) {
	w <- append([]byte(nil), p...)
	return len(p), nil
}

func TestJSONSink(t *testing.T) {
	b := NewBroadcaster()
	out := make(chanWriter, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	JSONSink(ctx, b, out)

	deadline := time.After(2 * time.Second)
	for {
		b.Publish(CardCompleted{Type: EventCardCompleted, CardID: 9, Status: cards.StatusMastered, Color: "green"})
		select {
		case line := <-out:
			var got map[string]any
			if err := json.Unmarshal(line, &got); err != nil {
				t.Fatalf("invalid JSON line %q: %v", line, err)
			}
			if got["type"] != "card_completed" || got["card_id"] != float64(9) || got["color"] != "green" || got["status"] != float64(5) {
				t.Errorf("line = %s", line)
			}
			if line[len(line)-1] != '\n' {
				t.Error("line not newline-terminated")
			}
			return
		case <-deadline:
			t.Fatal("sink wrote nothing")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
