package grader

import (
	"fmt"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Tokenizer splits a normalized phrase into words.
type Tokenizer interface {
	Words(s string) []string
}

// Whitespace splits on runs of whitespace.
type Whitespace struct{}

func (Whitespace) Words(s string) []string {
	return strings.Fields(s)
}

// Japanese segments text with the kagome morphological analyzer, for
// languages written without spaces between words.
type Japanese struct {
	t *tokenizer.Tokenizer
}

// NewJapanese loads the IPA dictionary and builds a tokenizer.
func NewJapanese() (*Japanese, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("create kagome tokenizer: %w", err)
	}
	return &Japanese{t: t}, nil
}

// Words returns the surface forms of content tokens, skipping symbols
// and whitespace.
func (j *Japanese) Words(s string) []string {
	var out []string
	for _, tok := range j.t.Tokenize(s) {
		if tok.Class == tokenizer.DUMMY {
			continue
		}
		if f := tok.Features(); len(f) > 0 && f[0] == "記号" {
			continue
		}
		if w := strings.TrimSpace(tok.Surface); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// ForLanguage returns the tokenizer suited to a BCP 47 language tag.
func ForLanguage(lang string) (Tokenizer, error) {
	switch strings.ToLower(strings.SplitN(lang, "-", 2)[0]) {
	case "ja":
		j, err := NewJapanese()
		if err != nil {
			return nil, err
		}
		return j, nil
	default:
		return Whitespace{}, nil
	}
}
