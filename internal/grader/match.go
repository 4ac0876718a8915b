package grader

import (
	"strings"
	"unicode/utf8"
)

// MatchThreshold is the minimum word-overlap ratio accepted as a match.
const MatchThreshold = 0.7

// substringMinLen is the normalized length above which containment of one
// phrase in the other counts as a match.
const substringMinLen = 5

// stripped are the punctuation characters removed during normalization.
const stripped = ".,!?;:'\""

// Normalize lower-cases s, strips punctuation and collapses whitespace.
func Normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(stripped, r) {
			return -1
		}
		return r
	}, s)
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// IsTextMatch reports whether a submitted phrase matches an expected one
// using the default grader.
func IsTextMatch(submitted, expected string) bool {
	return Default.IsTextMatch(submitted, expected)
}

// IsTextMatch reports whether submitted is close enough to expected.
// Both are normalized first; an empty side never matches. If the plain
// comparison fails and contraction expansion is enabled, the comparison
// is repeated with contractions expanded on both sides.
func (g *Grader) IsTextMatch(submitted, expected string) bool {
	if g.match(Normalize(submitted), Normalize(expected)) {
		return true
	}
	if !g.contractions {
		return false
	}
	return g.match(Normalize(ExpandContractions(submitted)), Normalize(ExpandContractions(expected)))
}

func (g *Grader) match(submitted, expected string) bool {
	if submitted == "" || expected == "" {
		return false
	}
	if submitted == expected {
		return true
	}

	// Extra words around the phrase, in either direction.
	if utf8.RuneCountInString(expected) > substringMinLen && strings.Contains(submitted, expected) {
		return true
	}
	if utf8.RuneCountInString(submitted) > substringMinLen && strings.Contains(expected, submitted) {
		return true
	}

	sw := g.words(submitted)
	ew := g.words(expected)
	if len(sw) == 0 || len(ew) == 0 {
		return false
	}

	longest := max(len(sw), len(ew))
	if ratio(overlap(sw, ew), longest) >= MatchThreshold {
		return true
	}

	if abs(len(sw)-len(ew)) <= 1 {
		return ratio(looseOverlap(sw, ew), longest) >= MatchThreshold
	}
	return false
}

func (g *Grader) words(s string) []string {
	var out []string
	for _, w := range g.tokenizer.Words(s) {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// overlap counts submitted words that appear in expected. A word heard
// several times counts each time.
func overlap(submitted, expected []string) int {
	set := make(map[string]struct{}, len(expected))
	for _, w := range expected {
		set[w] = struct{}{}
	}
	n := 0
	for _, w := range submitted {
		if _, ok := set[w]; ok {
			n++
		}
	}
	return n
}

// looseOverlap counts submitted words that equal, contain, or are
// contained by any expected word.
func looseOverlap(submitted, expected []string) int {
	n := 0
	for _, sw := range submitted {
		for _, ew := range expected {
			if sw == ew || strings.Contains(sw, ew) || strings.Contains(ew, sw) {
				n++
				break
			}
		}
	}
	return n
}

func ratio(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return float64(n) / float64(of)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
