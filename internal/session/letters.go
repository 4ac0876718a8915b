package session

import "github.com/abhisek/lingo/internal/spelling"

// Letters returns the current card's letter pool and the letters placed so
// far. ok is false when the card is not answered with letters.
func (s *Session) Letters() (pool []spelling.Tile, placed []spelling.Placed, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.letters == nil || s.phase != PhaseActive {
		return nil, nil, false
	}
	return s.letters.Pool(), s.letters.Placed(), true
}

// PlaceLetter appends the letter at pool position p to the answer.
func (s *Session) PlaceLetter(p int) error {
	return s.withLetters(func(a *spelling.Assembly) error { return a.Place(p) })
}

// RemoveLetter takes the letter from pool position p back out of the
// answer.
func (s *Session) RemoveLetter(p int) error {
	return s.withLetters(func(a *spelling.Assembly) error { return a.Remove(p) })
}

// UndoLetter removes the most recently placed letter.
func (s *Session) UndoLetter() error {
	return s.withLetters(func(a *spelling.Assembly) error {
		_, err := a.Undo()
		return err
	})
}

// ClearLetters returns every placed letter to the pool.
func (s *Session) ClearLetters() error {
	return s.withLetters(func(a *spelling.Assembly) error {
		a.Clear()
		return nil
	})
}

// PlaceRune places the first available pool position holding r, for
// typing letters on the keyboard.
func (s *Session) PlaceRune(r rune) error {
	return s.withLetters(func(a *spelling.Assembly) error {
		p := a.IndexOf(r)
		if p < 0 {
			return spelling.ErrPositionUsed
		}
		return a.Place(p)
	})
}

func (s *Session) withLetters(fn func(*spelling.Assembly) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.activeLocked(); err != nil {
		return err
	}
	if s.letters == nil {
		return ErrNotLetters
	}
	if s.state != CardPresented {
		return ErrNotPresented
	}
	return fn(s.letters)
}
