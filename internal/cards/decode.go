package cards

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrMalformed marks a card whose payload could not be used.
var ErrMalformed = errors.New("malformed card")

// cardSchema describes a single card object as served by the backend.
// Optional fields may be null.
const cardSchema = `{
  "type": "object",
  "required": ["id", "card_type", "question_text"],
  "properties": {
    "id": {"type": "integer"},
    "card_type": {"enum": ["repeat", "speak", "choose", "color", "translate", "match", "spelling", "writing", "new_words"]},
    "question_text": {"type": "string"},
    "prompt_text": {"type": ["string", "null"]},
    "correct_answer": {"type": ["string", "null"]},
    "options": {"type": ["array", "null"], "items": {"type": "string"}},
    "extra_data": {
      "type": ["object", "null"],
      "properties": {
        "words": {"type": ["array", "null"], "items": {"type": "string"}}
      }
    },
    "hint_text": {"type": ["string", "null"]},
    "translation_text": {"type": ["string", "null"]},
    "image_url": {"type": ["string", "null"]},
    "icon_name": {"type": ["string", "null"]},
    "order_index": {"type": ["integer", "null"]},
    "topic": {"type": ["string", "null"]}
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func cardValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(cardSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse card schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://card.json", doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile("schema://card.json")
	})
	return compiled, compileErr
}

// Decode parses a JSON array of cards. Each element is validated on its
// own: an element that fails is returned as a Card with Err set, so one
// bad card never hides the others. Only a payload that is not an array
// at all is an error.
func Decode(raw json.RawMessage) ([]*Card, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("decode cards: %w", err)
	}

	out := make([]*Card, 0, len(elems))
	for i, elem := range elems {
		out = append(out, DecodeOne(elem, i))
	}
	return out, nil
}

// DecodeOne parses a single card. position stands in for the ID and
// order of cards too broken to report their own.
func DecodeOne(raw json.RawMessage, position int) *Card {
	if err := validateCard(raw); err != nil {
		return brokenCard(raw, position, err)
	}

	var c Card
	if err := json.Unmarshal(raw, &c); err != nil {
		return brokenCard(raw, position, err)
	}
	if err := c.check(); err != nil {
		c.Err = fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &c
}

func validateCard(raw json.RawMessage) error {
	schema, err := cardValidator()
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// brokenCard salvages whatever identifying fields it can so the UI can
// point at the offending card.
func brokenCard(raw json.RawMessage, position int, err error) *Card {
	var partial struct {
		ID       any    `json:"id"`
		Type     any    `json:"card_type"`
		Question any    `json:"question_text"`
		Topic    string `json:"topic"`
	}
	_ = json.Unmarshal(raw, &partial)

	c := &Card{
		ID:         -(position + 1),
		OrderIndex: position,
		Topic:      partial.Topic,
		Err:        fmt.Errorf("%w: %v", ErrMalformed, err),
	}
	if id, ok := partial.ID.(float64); ok {
		c.ID = int(id)
	}
	if t, ok := partial.Type.(string); ok {
		c.Type = Type(t)
	}
	if q, ok := partial.Question.(string); ok {
		c.Question = q
	}
	return c
}

// check enforces per-type requirements the schema cannot express.
func (c *Card) check() error {
	switch c.InputMode() {
	case InputChoice:
		if c.CorrectAnswer != "" && c.OptionIndex(c.CorrectAnswer) < 0 {
			return fmt.Errorf("correct answer %q is not among the options", c.CorrectAnswer)
		}
	case InputLetters:
		if strings.TrimSpace(c.CorrectAnswer) == "" {
			return errors.New("spelling card has no word to spell")
		}
	case InputSpeech:
		if len(c.Extra.Words) == 0 && c.CorrectAnswer == "" && strings.TrimSpace(c.Question) == "" {
			return errors.New("speech card has nothing to say")
		}
	}
	return nil
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
