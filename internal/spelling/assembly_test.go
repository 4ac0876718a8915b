package spelling

import (
	"errors"
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

func TestPlaceAndAnswer(t *testing.T) {
	a := FromPool([]rune("TCA"))
	for _, p := range []int{1, 2, 0} {
		if err := a.Place(p); err != nil {
			t.Fatalf("Place(%d): %v", p, err)
		}
	}
	if got := a.Answer(); got != "cat" {
		t.Errorf("Answer = %q, want %q", got, "cat")
	}
	if !a.Complete() {
		t.Error("expected assembly to be complete")
	}
}

func TestPlaceRejectsUsedPosition(t *testing.T) {
	a := FromPool([]rune("ab"))
	if err := a.Place(0); err != nil {
		t.Fatalf("Place(0): %v", err)
	}
	if err := a.Place(0); !errors.Is(err, ErrPositionUsed) {
		t.Fatalf("second Place(0) = %v, want ErrPositionUsed", err)
	}
	if err := a.Place(5); !errors.Is(err, ErrPositionOutOfRange) {
		t.Fatalf("Place(5) = %v, want ErrPositionOutOfRange", err)
	}
	if got := a.Answer(); got != "a" {
		t.Errorf("Answer = %q, want %q", got, "a")
	}
}

func TestRemoveTakesEntryForPosition(t *testing.T) {
	// Two identical letters: removing position 2 must remove that entry,
	// not the first "l" placed.
	a := FromPool([]rune("hlelo"))
	for _, p := range []int{0, 2, 1, 3, 4} {
		if err := a.Place(p); err != nil {
			t.Fatalf("Place(%d): %v", p, err)
		}
	}
	if got := a.Answer(); got != "hello" {
		t.Fatalf("Answer = %q, want hello", got)
	}

	if err := a.Remove(1); err != nil {
		t.Fatalf("Remove(1): %v", err)
	}
	want := []Placed{{'h', 0}, {'e', 2}, {'l', 3}, {'o', 4}}
	if got := a.Placed(); !reflect.DeepEqual(got, want) {
		t.Errorf("Placed = %v, want %v", got, want)
	}
	if !a.Available(1) {
		t.Error("position 1 should be available after removal")
	}
	if a.Available(3) {
		t.Error("position 3 should still be used")
	}
}

func TestRemoveUnusedPosition(t *testing.T) {
	a := FromPool([]rune("ab"))
	if err := a.Remove(1); !errors.Is(err, ErrPositionNotUsed) {
		t.Fatalf("Remove(1) = %v, want ErrPositionNotUsed", err)
	}
}

func TestPlaceThenRemoveRestoresState(t *testing.T) {
	a := FromPool([]rune("world"))
	_ = a.Place(3)
	_ = a.Place(0)

	beforePool := a.Pool()
	beforePlaced := a.Placed()

	for p := 0; p < a.Len(); p++ {
		if !a.Available(p) {
			continue
		}
		if err := a.Place(p); err != nil {
			t.Fatalf("Place(%d): %v", p, err)
		}
		if err := a.Remove(p); err != nil {
			t.Fatalf("Remove(%d): %v", p, err)
		}
		if !reflect.DeepEqual(a.Pool(), beforePool) {
			t.Fatalf("pool changed after place/remove of %d", p)
		}
		if !reflect.DeepEqual(a.Placed(), beforePlaced) {
			t.Fatalf("placed changed after place/remove of %d", p)
		}
	}
}

func TestUndoAndClear(t *testing.T) {
	a := FromPool([]rune("abc"))
	_ = a.Place(2)
	_ = a.Place(0)

	p, err := a.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if p != 0 {
		t.Errorf("Undo returned %d, want 0", p)
	}
	if got := a.Answer(); got != "c" {
		t.Errorf("Answer after undo = %q, want c", got)
	}

	a.Clear()
	if a.Answer() != "" {
		t.Error("expected empty answer after Clear")
	}
	for i, tile := range a.Pool() {
		if tile.Used {
			t.Errorf("tile %d still used after Clear", i)
		}
	}
	if _, err := a.Undo(); !errors.Is(err, ErrNothingPlaced) {
		t.Errorf("Undo on empty = %v, want ErrNothingPlaced", err)
	}
}

func TestNewShufflesSameLetters(t *testing.T) {
	word := "Banana"
	a := New(word, rand.New(rand.NewSource(7)))

	var got []rune
	for _, tile := range a.Pool() {
		got = append(got, tile.Letter)
	}
	want := []rune(word)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	if string(got) != string(want) {
		t.Errorf("pool letters = %q, want permutation of %q", string(got), word)
	}
}

func TestNewEmptyWord(t *testing.T) {
	a := New("", nil)
	if a.Len() != 0 || !a.Complete() || a.Answer() != "" {
		t.Error("empty word should produce an empty, complete assembly")
	}
}

func TestIndexOf(t *testing.T) {
	a := FromPool([]rune("aBa"))
	if got := a.IndexOf('b'); got != 1 {
		t.Errorf("IndexOf(b) = %d, want 1", got)
	}
	_ = a.Place(0)
	if got := a.IndexOf('A'); got != 2 {
		t.Errorf("IndexOf(A) after placing 0 = %d, want 2", got)
	}
	if got := a.IndexOf('z'); got != -1 {
		t.Errorf("IndexOf(z) = %d, want -1", got)
	}
}
