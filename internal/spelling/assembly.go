package spelling

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"unicode"
)

var (
	ErrPositionOutOfRange = errors.New("pool position out of range")
	ErrPositionUsed       = errors.New("pool position already used")
	ErrPositionNotUsed    = errors.New("pool position not used")
	ErrNothingPlaced      = errors.New("no letters placed")
)

// Tile is one letter of the scrambled pool.
type Tile struct {
	Letter rune
	Used   bool
}

// Placed is one entry of the assembled answer, tagged with the pool
// position it came from.
type Placed struct {
	Letter   rune
	Position int
}

// Assembly tracks a learner building a word from a scrambled letter pool.
// Every pool position is either available or used, and a used position
// appears exactly once in the assembled sequence.
type Assembly struct {
	pool   []rune
	used   []bool
	placed []int // pool positions in placement order
}

// maxReshuffles bounds the attempts to avoid a pool that already spells
// the word.
const maxReshuffles = 5

// New scrambles the letters of word into a pool. r may be nil to use the
// global source.
func New(word string, r *rand.Rand) *Assembly {
	letters := []rune(word)
	shuffle := rand.Shuffle
	if r != nil {
		shuffle = r.Shuffle
	}
	for i := 0; i < maxReshuffles; i++ {
		shuffle(len(letters), func(i, j int) {
			letters[i], letters[j] = letters[j], letters[i]
		})
		if string(letters) != word || !hasDistinct(letters) {
			break
		}
	}
	return FromPool(letters)
}

// FromPool builds an assembly over an already-arranged pool.
func FromPool(letters []rune) *Assembly {
	pool := make([]rune, len(letters))
	copy(pool, letters)
	return &Assembly{
		pool: pool,
		used: make([]bool, len(pool)),
	}
}

// Len returns the pool size.
func (a *Assembly) Len() int {
	return len(a.pool)
}

// Pool returns a copy of the pool with availability.
func (a *Assembly) Pool() []Tile {
	out := make([]Tile, len(a.pool))
	for i, r := range a.pool {
		out[i] = Tile{Letter: r, Used: a.used[i]}
	}
	return out
}

// Available reports whether pool position p can be placed.
func (a *Assembly) Available(p int) bool {
	return p >= 0 && p < len(a.pool) && !a.used[p]
}

// Place appends the letter at pool position p to the answer.
func (a *Assembly) Place(p int) error {
	if p < 0 || p >= len(a.pool) {
		return fmt.Errorf("place %d: %w", p, ErrPositionOutOfRange)
	}
	if a.used[p] {
		return fmt.Errorf("place %d: %w", p, ErrPositionUsed)
	}
	a.used[p] = true
	a.placed = append(a.placed, p)
	return nil
}

// Remove takes the entry that came from pool position p out of the
// answer and makes p available again. Other entries keep their order.
func (a *Assembly) Remove(p int) error {
	if p < 0 || p >= len(a.pool) {
		return fmt.Errorf("remove %d: %w", p, ErrPositionOutOfRange)
	}
	if !a.used[p] {
		return fmt.Errorf("remove %d: %w", p, ErrPositionNotUsed)
	}
	for i, pos := range a.placed {
		if pos == p {
			a.placed = append(a.placed[:i], a.placed[i+1:]...)
			break
		}
	}
	a.used[p] = false
	return nil
}

// Undo removes the most recently placed letter and returns its pool
// position.
func (a *Assembly) Undo() (int, error) {
	if len(a.placed) == 0 {
		return -1, ErrNothingPlaced
	}
	p := a.placed[len(a.placed)-1]
	return p, a.Remove(p)
}

// Clear returns every letter to the pool.
func (a *Assembly) Clear() {
	a.placed = a.placed[:0]
	for i := range a.used {
		a.used[i] = false
	}
}

// Placed returns the assembled sequence in placement order.
func (a *Assembly) Placed() []Placed {
	out := make([]Placed, len(a.placed))
	for i, p := range a.placed {
		out[i] = Placed{Letter: a.pool[p], Position: p}
	}
	return out
}

// Answer returns the assembled letters, lower-cased.
func (a *Assembly) Answer() string {
	var b strings.Builder
	for _, p := range a.placed {
		b.WriteRune(unicode.ToLower(a.pool[p]))
	}
	return b.String()
}

// Complete reports whether every pool letter has been placed.
func (a *Assembly) Complete() bool {
	return len(a.placed) == len(a.pool)
}

// IndexOf returns the first available pool position holding letter
// (case-insensitive), or -1. Used for typing letters on the keyboard.
func (a *Assembly) IndexOf(letter rune) int {
	l := unicode.ToLower(letter)
	for i, r := range a.pool {
		if !a.used[i] && unicode.ToLower(r) == l {
			return i
		}
	}
	return -1
}

func hasDistinct(letters []rune) bool {
	if len(letters) < 2 {
		return false
	}
	for _, r := range letters[1:] {
		if r != letters[0] {
			return true
		}
	}
	return false
}
