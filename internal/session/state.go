package session

import (
	"errors"

	"github.com/abhisek/lingo/internal/cards"
)

// CardState is where the current card is in its answer cycle.
type CardState int

const (
	CardPresented CardState = iota // waiting for an answer
	CardSubmitted                  // answer sent, waiting for the backend
	CardCorrect                    // backend accepted the answer
	CardIncorrect                  // backend rejected the answer
)

func (s CardState) String() string {
	switch s {
	case CardPresented:
		return "presented"
	case CardSubmitted:
		return "submitted"
	case CardCorrect:
		return "correct"
	case CardIncorrect:
		return "incorrect"
	default:
		return "unknown"
	}
}

// Phase is the state of the whole session.
type Phase int

const (
	PhaseLoading  Phase = iota // Start has not finished
	PhaseActive                // a card is awaiting an answer or feedback
	PhaseComplete              // every card was answered correctly
)

var (
	// ErrNotPresented is returned when an answer is given for a card that
	// is not waiting for one, including a second submission in flight.
	ErrNotPresented = errors.New("card is not awaiting an answer")

	// ErrNotCorrect is returned when advancing past a card that has not
	// been answered correctly.
	ErrNotCorrect = errors.New("card has not been answered correctly")

	// ErrNotIncorrect is returned when retrying a card that was not
	// answered incorrectly.
	ErrNotIncorrect = errors.New("card was not answered incorrectly")

	ErrNoSubmission    = errors.New("no answer is waiting to be sent")
	ErrNotStarted      = errors.New("session has not started")
	ErrComplete        = errors.New("session is complete")
	ErrAlreadyAnswered = errors.New("topic cannot change after the first answer")
	ErrNoCards         = errors.New("no cards to practice")
	ErrUnknownTopic    = errors.New("unknown topic")
	ErrNotLetters      = errors.New("card is not answered with letters")
	ErrInvalidCard     = errors.New("card is malformed and cannot be answered")
	ErrEmptyAnswer     = errors.New("answer is empty")
	ErrOptionRange     = errors.New("option out of range")
)

// Input is a raw answer as captured by the UI. Exactly which field is
// read depends on the card's input mode.
type Input struct {
	// Text is the typed answer or the speech transcript.
	Text string

	// Option is the chosen option index for choice cards.
	Option int
}

// TextInput is an Input carrying typed text or a transcript.
func TextInput(s string) Input { return Input{Text: s, Option: -1} }

// OptionInput is an Input choosing option i.
func OptionInput(i int) Input { return Input{Option: i} }

// Submission is an answer that passed local pre-checking and is ready to
// be sent.
type Submission struct {
	CardID   int
	Answer   string
	Precheck bool

	// Option is the option index to highlight, or -1.
	Option int

	mode cards.InputMode
}

// Verdict is the backend's judgement on one answer, as shown to the
// learner. It is a value and never changes once built.
type Verdict struct {
	CardID           int
	Correct          bool
	ShowHint         bool
	Hint             string
	Translation      string
	Attempts         int
	Status           cards.Status
	Color            string
	Mastered         bool
	RevealAnswer     bool
	CorrectAnswer    string
	ExperienceGained int
	TotalExperience  int
	Level            int
	LeveledUp        bool
}
