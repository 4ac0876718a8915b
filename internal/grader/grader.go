package grader

import (
	"strings"

	"github.com/abhisek/lingo/internal/cards"
)

// Grader decides whether an answer is correct for a card. The zero value
// is not usable; construct one with New.
type Grader struct {
	tokenizer    Tokenizer
	contractions bool
}

// Option configures a Grader.
type Option func(*Grader)

// WithTokenizer replaces the whitespace word splitter used by the
// word-overlap pass.
func WithTokenizer(t Tokenizer) Option {
	return func(g *Grader) {
		if t != nil {
			g.tokenizer = t
		}
	}
}

// WithContractions toggles the second, contraction-expanded comparison.
// It is on by default.
func WithContractions(enabled bool) Option {
	return func(g *Grader) {
		g.contractions = enabled
	}
}

// New creates a Grader.
func New(opts ...Option) *Grader {
	g := &Grader{
		tokenizer:    Whitespace{},
		contractions: true,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Default is the grader used by the package-level functions.
var Default = New()

// IsAnswerCorrect grades submitted against card using the default grader.
func IsAnswerCorrect(card *cards.Card, submitted string) bool {
	return Default.IsAnswerCorrect(card, submitted)
}

// IsAnswerCorrect grades a submitted answer:
//   - repeat cards with spoken alternatives match if any alternative
//     fuzzily matches the transcript;
//   - otherwise a card with a correct answer needs a case-insensitive
//     exact match;
//   - cards with nothing to check are always correct.
//
// Status and attempts are never consulted.
func (g *Grader) IsAnswerCorrect(card *cards.Card, submitted string) bool {
	if card == nil {
		return false
	}
	if card.Type == cards.TypeRepeat && len(card.Words()) > 0 {
		_, ok := g.MatchAny(submitted, card.Words())
		return ok
	}
	if card.CorrectAnswer != "" {
		s := strings.TrimSpace(submitted)
		return s != "" && strings.EqualFold(s, strings.TrimSpace(card.CorrectAnswer))
	}
	return true
}

// MatchAny returns the first alternative that matches submitted.
func (g *Grader) MatchAny(submitted string, alternatives []string) (string, bool) {
	for _, alt := range alternatives {
		if g.IsTextMatch(submitted, alt) {
			return alt, true
		}
	}
	return "", false
}

// IsSpeechCorrect grades a transcript against every phrase the card
// accepts for speech, unlike IsAnswerCorrect which only fuzzy-matches
// repeat cards.
func (g *Grader) IsSpeechCorrect(card *cards.Card, transcript string) bool {
	if card == nil {
		return false
	}
	expected := ExpectedAnswers(card)
	if len(expected) == 0 {
		return true
	}
	_, ok := g.MatchAny(transcript, expected)
	return ok
}

// ExpectedAnswers returns the phrases accepted when a card is answered by
// voice: the spoken alternatives, else the correct answer, else the
// question text itself.
func ExpectedAnswers(card *cards.Card) []string {
	if ws := card.Words(); len(ws) > 0 {
		return ws
	}
	if card.CorrectAnswer != "" {
		return []string{card.CorrectAnswer}
	}
	if q := strings.TrimSpace(card.Question); q != "" {
		return []string{q}
	}
	return nil
}
