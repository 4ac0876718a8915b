package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/abhisek/lingo/internal/cards"
)

// CardCompleted is announced after the backend confirms an answer, so
// views showing the lesson grid can recolor the card.
type CardCompleted struct {
	Type   string       `json:"type"`
	CardID int          `json:"card_id"`
	Status cards.Status `json:"status"`
	Color  string       `json:"color"`
}

// EventCardCompleted is the Type of every CardCompleted.
const EventCardCompleted = "card_completed"

// Broadcaster fans CardCompleted events out to subscribers. Publish never
// blocks: a subscriber whose buffer is full misses the event.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[int]chan CardCompleted
	next int
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan CardCompleted)}
}

// Subscribe returns a channel receiving future events and a function that
// unsubscribes and closes it.
func (b *Broadcaster) Subscribe(buf int) (<-chan CardCompleted, func()) {
	if buf < 1 {
		buf = 1
	}
	ch := make(chan CardCompleted, buf)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers ev to every subscriber with room for it.
func (b *Broadcaster) Publish(ev CardCompleted) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// JSONSink writes every event from b to w as one JSON object per line
// until ctx is done. It is how a hosting process learns of completed
// cards.
func JSONSink(ctx context.Context, b *Broadcaster, w io.Writer) {
	ch, cancel := b.Subscribe(64)
	enc := json.NewEncoder(w)
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if err := enc.Encode(ev); err != nil {
					fmt.Fprintf(os.Stderr, "warning: failed to write card event: %v\n", err)
				}
			}
		}
	}()
}
