package cards

// Type identifies the exercise kind of a card, as sent by the backend.
type Type string

const (
	TypeRepeat    Type = "repeat"
	TypeSpeak     Type = "speak"
	TypeChoose    Type = "choose"
	TypeColor     Type = "color"
	TypeTranslate Type = "translate"
	TypeMatch     Type = "match"
	TypeSpelling  Type = "spelling"
	TypeWriting   Type = "writing"
	TypeNewWords  Type = "new_words"
)

// AllTypes lists every card type the client can render.
var AllTypes = []Type{
	TypeRepeat, TypeSpeak, TypeChoose, TypeColor, TypeTranslate,
	TypeMatch, TypeSpelling, TypeWriting, TypeNewWords,
}

// Valid reports whether t is one of the known card types.
func (t Type) Valid() bool {
	for _, k := range AllTypes {
		if t == k {
			return true
		}
	}
	return false
}

// DisplayName returns a short human-readable label.
func (t Type) DisplayName() string {
	switch t {
	case TypeRepeat:
		return "Repeat"
	case TypeSpeak:
		return "Speak"
	case TypeChoose:
		return "Choose"
	case TypeColor:
		return "Color"
	case TypeTranslate:
		return "Translate"
	case TypeMatch:
		return "Match"
	case TypeSpelling:
		return "Spelling"
	case TypeWriting:
		return "Writing"
	case TypeNewWords:
		return "New words"
	default:
		return string(t)
	}
}

// InputMode describes how the learner answers a card.
type InputMode int

const (
	InputChoice   InputMode = iota // pick one of Options
	InputLetters                   // assemble the word from a letter pool
	InputText                      // type the answer
	InputSpeech                    // say the answer
	InputContinue                  // nothing to answer, just acknowledge
)

func (m InputMode) String() string {
	switch m {
	case InputChoice:
		return "choice"
	case InputLetters:
		return "letters"
	case InputText:
		return "text"
	case InputSpeech:
		return "speech"
	case InputContinue:
		return "continue"
	default:
		return "unknown"
	}
}

// Extra carries type-specific payload fields.
type Extra struct {
	// Words are the acceptable spoken alternatives for repeat cards.
	Words []string `json:"words,omitempty"`
}

// Card is one gradable exercise. Content fields are fixed once decoded;
// Status and Attempts change only when the backend confirms a verdict.
type Card struct {
	ID            int      `json:"id"`
	Type          Type     `json:"card_type"`
	Question      string   `json:"question_text"`
	Prompt        string   `json:"prompt_text,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Options       []string `json:"options,omitempty"`
	Extra         Extra    `json:"extra_data"`
	Hint          string   `json:"hint_text,omitempty"`
	Translation   string   `json:"translation_text,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
	Icon          string   `json:"icon_name,omitempty"`
	OrderIndex    int      `json:"order_index"`
	Topic         string   `json:"topic,omitempty"`

	Status   Status `json:"-"`
	Attempts int    `json:"-"`

	// Err is non-nil when the card payload was malformed. Such cards are
	// shown as an error block and cannot be answered.
	Err error `json:"-"`
}

// Words returns the acceptable spoken alternatives, if any.
func (c *Card) Words() []string {
	return c.Extra.Words
}

// Valid reports whether the card decoded cleanly.
func (c *Card) Valid() bool {
	return c.Err == nil
}

// InputMode returns how this card is answered.
func (c *Card) InputMode() InputMode {
	switch c.Type {
	case TypeSpelling:
		return InputLetters
	case TypeRepeat, TypeSpeak:
		return InputSpeech
	case TypeNewWords:
		return InputContinue
	case TypeWriting:
		return InputText
	case TypeChoose, TypeColor, TypeMatch, TypeTranslate:
		if len(c.Options) > 0 {
			return InputChoice
		}
		return InputText
	default:
		return InputText
	}
}

// Unattempted reports whether the learner has never answered this card.
func (c *Card) Unattempted() bool {
	return c.Attempts == 0 && c.Status == StatusFailed
}

// RevealAnswer reports whether the correct answer should be shown after
// a wrong answer. Spelling and writing cards reveal it from the second
// attempt on.
func (c *Card) RevealAnswer(attempts int) bool {
	if c.CorrectAnswer == "" {
		return false
	}
	switch c.Type {
	case TypeSpelling, TypeWriting:
		return attempts >= 2
	}
	return false
}

// OptionIndex returns the index of the option equal (case-insensitively)
// to answer, or -1.
func (c *Card) OptionIndex(answer string) int {
	for i, o := range c.Options {
		if equalFold(o, answer) {
			return i
		}
	}
	return -1
}
