package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/lingo/internal/cards"
)

// Backend is the lesson server the client talks to. The backend is the
// authority on correctness, card status, experience and level.
type Backend interface {
	// StartLesson opens an attempt for a lesson.
	StartLesson(ctx context.Context, lessonID int) (*StartResponse, error)

	// CardStatuses returns the learner's status for each attempted card of
	// a lesson, keyed by card ID.
	CardStatuses(ctx context.Context, lessonID int) (map[int]CardStatus, error)

	// SubmitAnswer records an answer and returns the verdict.
	SubmitAnswer(ctx context.Context, req AnswerRequest) (*AnswerResponse, error)

	// CompleteAttempt closes an attempt and returns its score.
	CompleteAttempt(ctx context.Context, attemptID int) (*CompleteResponse, error)

	// Progress returns the learner's overall experience and level.
	Progress(ctx context.Context) (*Progress, error)

	// Lesson returns a lesson with its cards.
	Lesson(ctx context.Context, lessonID int) (*Lesson, error)

	// Lessons lists the available lessons.
	Lessons(ctx context.Context) ([]LessonInfo, error)

	// Topics lists the topics of a lesson.
	Topics(ctx context.Context, lessonID int) ([]TopicInfo, error)
}

// Progress is the learner's overall standing.
type Progress struct {
	TotalExperience       int     `json:"total_experience"`
	CurrentLevel          int     `json:"current_level"`
	TotalCardsCompleted   int     `json:"total_cards_completed"`
	TotalLessonsCompleted int     `json:"total_lessons_completed"`
	CorrectAnswers        int     `json:"correct_answers_count"`
	IncorrectAnswers      int     `json:"incorrect_answers_count"`
	Accuracy              float64 `json:"accuracy"`
}

// DefaultProgress is used when progress cannot be loaded.
func DefaultProgress() Progress {
	return Progress{TotalExperience: 0, CurrentLevel: 1}
}

// StartResponse is returned when an attempt is opened.
type StartResponse struct {
	AttemptID  int `json:"attempt_id"`
	TotalCards int `json:"total_cards"`
}

// CardStatus is the learner's standing on one card.
type CardStatus struct {
	Status        cards.Status `json:"status"`
	Color         string       `json:"color"`
	AttemptsCount int          `json:"attempts_count"`
}

// AnswerRequest is the body of an answer submission. IsCorrect carries the
// local pre-check; the backend's verdict in the response is authoritative.
type AnswerRequest struct {
	AttemptID int    `json:"attempt_id"`
	CardID    int    `json:"card_id"`
	Answer    string `json:"answer"`
	IsCorrect bool   `json:"is_correct"`
}

// AnswerResponse is the backend's verdict on one answer.
type AnswerResponse struct {
	IsCorrect        bool         `json:"is_correct"`
	AttemptsCount    int          `json:"attempts_count"`
	CardStatus       cards.Status `json:"card_status"`
	StatusColor      string       `json:"status_color"`
	ExperienceGained int          `json:"experience_gained"`
	ShowHint         bool         `json:"show_hint"`
	HintText         string       `json:"hint_text"`
	TranslationText  string       `json:"translation_text"`
	TotalExperience  int          `json:"total_experience"`
	CurrentLevel     int          `json:"current_level"`
}

// UnmarshalJSON tolerates null text fields and a show_hint that the
// backend may send as the hint string itself.
func (r *AnswerResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		IsCorrect        bool            `json:"is_correct"`
		AttemptsCount    int             `json:"attempts_count"`
		CardStatus       cards.Status    `json:"card_status"`
		StatusColor      string          `json:"status_color"`
		ExperienceGained int             `json:"experience_gained"`
		ShowHint         json.RawMessage `json:"show_hint"`
		HintText         *string         `json:"hint_text"`
		TranslationText  *string         `json:"translation_text"`
		TotalExperience  int             `json:"total_experience"`
		CurrentLevel     int             `json:"current_level"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = AnswerResponse{
		IsCorrect:        raw.IsCorrect,
		AttemptsCount:    raw.AttemptsCount,
		CardStatus:       raw.CardStatus,
		StatusColor:      raw.StatusColor,
		ExperienceGained: raw.ExperienceGained,
		ShowHint:         truthy(raw.ShowHint),
		TotalExperience:  raw.TotalExperience,
		CurrentLevel:     raw.CurrentLevel,
	}
	if raw.HintText != nil {
		r.HintText = *raw.HintText
	}
	if raw.TranslationText != nil {
		r.TranslationText = *raw.TranslationText
	}
	return nil
}

// truthy interprets a JSON value the way the backend's templates do:
// false, null, 0 and "" are false.
func truthy(raw json.RawMessage) bool {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	case nil:
		return false
	default:
		return true
	}
}

// CompleteResponse is returned when an attempt is closed. Score is nil
// when the backend did not compute one.
type CompleteResponse struct {
	Score        *int `json:"score"`
	CorrectCards int  `json:"correct_cards"`
	TotalCards   int  `json:"total_cards"`
}

// Lesson is a lesson with its raw card payload.
type Lesson struct {
	ID            int             `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	LanguageLevel string          `json:"language_level"`
	Cards         json.RawMessage `json:"cards"`
}

// DecodeCards decodes the lesson's cards. Malformed cards are kept as
// broken placeholders; only a payload that is not a list fails.
func (l *Lesson) DecodeCards() ([]*cards.Card, error) {
	cs, err := cards.Decode(l.Cards)
	if err != nil {
		return nil, fmt.Errorf("lesson %d: %w", l.ID, err)
	}
	cards.SortByOrder(cs)
	return cs, nil
}

// LessonProgress is the learner's completion of one lesson.
type LessonProgress struct {
	TopicsCompleted   int     `json:"topics_completed"`
	TopicsTotal       int     `json:"topics_total"`
	CardsCompleted    int     `json:"cards_completed"`
	CardsTotal        int     `json:"cards_total"`
	CompletionPercent float64 `json:"completion_percent"`
}

// LessonInfo is one entry of the lesson list.
type LessonInfo struct {
	ID            int            `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	LanguageLevel string         `json:"language_level"`
	CardsCount    int            `json:"cards_count"`
	TopicsCount   int            `json:"topics_count"`
	Progress      LessonProgress `json:"progress"`
	UserCompleted bool           `json:"user_completed"`
}

// TopicInfo is one topic of a lesson. CardIDs is filled only by backends
// that list the cards of each topic.
type TopicInfo struct {
	Topic      string `json:"topic"`
	Name       string `json:"topic_name"`
	CardsCount int    `json:"cards_count"`
	CardIDs    []int  `json:"card_ids,omitempty"`
}

// AssignTopics sets the topic of cards that arrived without one, using
// the card lists of topics.
func AssignTopics(cs []*cards.Card, topics []TopicInfo) {
	byID := make(map[int]string)
	for _, t := range topics {
		for _, id := range t.CardIDs {
			byID[id] = t.Topic
		}
	}
	for _, c := range cs {
		if c.Topic != "" {
			continue
		}
		if t, ok := byID[c.ID]; ok {
			c.Topic = t
		}
	}
}
