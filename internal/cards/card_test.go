package cards

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecode_ValidCards(t *testing.T) {
	raw := json.RawMessage(`[
		{"id": 1, "card_type": "choose", "question_text": "Sky color?", "correct_answer": "blue",
		 "options": ["red", "blue", "green"], "extra_data": {}, "order_index": 0, "topic": "Colors"},
		{"id": 2, "card_type": "repeat", "question_text": "Say it", "correct_answer": null,
		 "options": null, "extra_data": {"words": ["it is raining", "it's raining"]}, "topic": "Weather"},
		{"id": 3, "card_type": "new_words", "question_text": "cat", "translation_text": "gato", "extra_data": null}
	]`)

	cs, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cs) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(cs))
	}
	for _, c := range cs {
		if !c.Valid() {
			t.Errorf("card %d: unexpected error %v", c.ID, c.Err)
		}
	}
	if cs[0].InputMode() != InputChoice {
		t.Errorf("card 1 mode = %v, want choice", cs[0].InputMode())
	}
	if got := cs[1].Words(); len(got) != 2 || got[1] != "it's raining" {
		t.Errorf("card 2 words = %v", got)
	}
	if cs[1].InputMode() != InputSpeech {
		t.Errorf("card 2 mode = %v, want speech", cs[1].InputMode())
	}
	if cs[2].InputMode() != InputContinue {
		t.Errorf("card 3 mode = %v, want continue", cs[2].InputMode())
	}
	if cs[2].Translation != "gato" {
		t.Errorf("card 3 translation = %q", cs[2].Translation)
	}
}

func TestDecode_MalformedCardKeepsOthers(t *testing.T) {
	raw := json.RawMessage(`[
		{"id": 1, "card_type": "writing", "question_text": "Write hello", "correct_answer": "hello"},
		{"id": 2, "card_type": "teleport", "question_text": "???"},
		{"card_type": "choose"},
		{"id": 4, "card_type": "spelling", "question_text": "Spell it"}
	]`)

	cs, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cs) != 4 {
		t.Fatalf("expected 4 cards, got %d", len(cs))
	}
	if !cs[0].Valid() {
		t.Errorf("card 1 should be valid: %v", cs[0].Err)
	}
	for _, i := range []int{1, 2, 3} {
		if cs[i].Valid() {
			t.Errorf("card at %d should be invalid", i)
			continue
		}
		if !errors.Is(cs[i].Err, ErrMalformed) {
			t.Errorf("card at %d: expected ErrMalformed, got %v", i, cs[i].Err)
		}
	}
	if cs[1].ID != 2 || cs[1].Type != "teleport" {
		t.Errorf("broken card should keep id and type, got %d %q", cs[1].ID, cs[1].Type)
	}
	if cs[2].ID != -3 {
		t.Errorf("card without id should get placeholder -3, got %d", cs[2].ID)
	}
}

func TestDecode_NotAnArray(t *testing.T) {
	if _, err := Decode(json.RawMessage(`{"id": 1}`)); err == nil {
		t.Fatal("expected error for non-array payload")
	}
	cs, err := Decode(json.RawMessage(`null`))
	if err != nil || cs != nil {
		t.Fatalf("null payload: got %v, %v", cs, err)
	}
}

func TestDecode_ChoiceAnswerMustBeAnOption(t *testing.T) {
	c := DecodeOne(json.RawMessage(`{"id": 9, "card_type": "choose", "question_text": "?",
		"correct_answer": "purple", "options": ["red", "blue"]}`), 0)
	if c.Valid() {
		t.Fatal("expected card to be invalid")
	}
}

func TestStatusColor(t *testing.T) {
	tests := []struct {
		status Status
		color  string
		label  string
	}{
		{StatusFailed, ColorRed, "failed"},
		{StatusPartial, ColorYellow, "partial"},
		{StatusMastered, ColorGreen, "mastered"},
		{Status(1), ColorRed, "failed"},
		{Status(7), ColorRed, "failed"},
	}
	for _, tc := range tests {
		if got := tc.status.Color(); got != tc.color {
			t.Errorf("Status(%d).Color() = %q, want %q", tc.status, got, tc.color)
		}
		if got := tc.status.Normalize().String(); got != tc.label {
			t.Errorf("Status(%d) label = %q, want %q", tc.status, got, tc.label)
		}
	}
}

func TestLabel_Unattempted(t *testing.T) {
	if got := Label(StatusFailed, 0); got != "unattempted" {
		t.Errorf("Label(0, 0) = %q, want unattempted", got)
	}
	if got := Label(StatusFailed, 2); got != "failed" {
		t.Errorf("Label(0, 2) = %q, want failed", got)
	}
	if got := Label(StatusMastered, 0); got != "mastered" {
		t.Errorf("Label(5, 0) = %q, want mastered", got)
	}
}

func TestRevealAnswer(t *testing.T) {
	spelling := &Card{Type: TypeSpelling, CorrectAnswer: "cat"}
	choose := &Card{Type: TypeChoose, CorrectAnswer: "blue", Options: []string{"blue"}}

	if spelling.RevealAnswer(1) {
		t.Error("spelling should not reveal on first attempt")
	}
	if !spelling.RevealAnswer(2) {
		t.Error("spelling should reveal on second attempt")
	}
	if choose.RevealAnswer(5) {
		t.Error("choose cards never reveal")
	}
}

func TestTopicsAndFilter(t *testing.T) {
	cs := []*Card{
		{ID: 1, Topic: "Food"},
		{ID: 2, Topic: "Colors"},
		{ID: 3, Topic: "Food"},
		{ID: 4},
	}

	topics := Topics(cs)
	if len(topics) != 2 || topics[0] != "Food" || topics[1] != "Colors" {
		t.Fatalf("Topics = %v", topics)
	}

	food := FilterTopic(cs, "Food")
	if len(food) != 2 || food[0].ID != 1 || food[1].ID != 3 {
		t.Errorf("FilterTopic(Food) = %v", food)
	}
	if all := FilterTopic(cs, ""); len(all) != 4 {
		t.Errorf("FilterTopic(\"\") returned %d cards, want 4", len(all))
	}
}

func TestInputModeForTranslate(t *testing.T) {
	withOptions := &Card{Type: TypeTranslate, Options: []string{"a", "b"}}
	free := &Card{Type: TypeTranslate}
	if withOptions.InputMode() != InputChoice {
		t.Error("translate with options should be a choice card")
	}
	if free.InputMode() != InputText {
		t.Error("translate without options should be a text card")
	}
}
