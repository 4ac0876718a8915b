package session

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/lingo/internal/backend"
	"github.com/abhisek/lingo/internal/cards"
	"github.com/abhisek/lingo/internal/grader"
	"github.com/abhisek/lingo/internal/spelling"
	"github.com/abhisek/lingo/internal/store"
)

// SnapshotsKept is how many progress snapshots are retained.
const SnapshotsKept = 20

// Options configures a Session. Every field is optional.
type Options struct {
	// Topic restricts the session to one topic.
	Topic string

	// Events records answers and session boundaries.
	Events store.EventRepo

	// Snapshots stores the learner's progress when the session finishes.
	Snapshots store.SnapshotRepo

	// Broadcaster receives a CardCompleted for every confirmed answer.
	Broadcaster *Broadcaster

	// Grader pre-checks answers. Default: grader.Default.
	Grader *grader.Grader

	// Rand scrambles spelling letters.
	Rand *rand.Rand

	// Now is the clock. Default: time.Now.
	Now func() time.Time
}

// Session drives one attempt at a lesson: present a card, take an answer,
// send it, show the verdict, and move on once the card is answered
// correctly. It is safe for concurrent use.
type Session struct {
	backend backend.Backend
	opts    Options

	id        string
	lessonID  int
	title     string
	attemptID int
	started   time.Time

	mu        sync.Mutex
	all       []*cards.Card
	cards     []*cards.Card
	topic     string
	phase     Phase
	index     int
	state     CardState
	letters   *spelling.Assembly
	verdict   *Verdict
	progress  backend.Progress
	answered  bool
	answers   int
	correct   int
	xpGained  int
	finishing sync.Mutex
	summary   *Summary
}

// Start loads a lesson, opens a backend attempt and merges the learner's
// card statuses. If progress cannot be loaded the session starts from
// level 1 with a warning. Any other failure is returned and no session
// is created.
func Start(ctx context.Context, b backend.Backend, lessonID int, opts Options) (*Session, error) {
	if opts.Grader == nil {
		opts.Grader = grader.Default
	}
	if opts.Broadcaster == nil {
		opts.Broadcaster = NewBroadcaster()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	progress := backend.DefaultProgress()
	if p, err := b.Progress(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load progress: %v\n", err)
	} else {
		progress = *p
	}

	lesson, err := b.Lesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("load lesson %d: %w", lessonID, err)
	}
	all, err := lesson.DecodeCards()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrNoCards
	}
	if missingTopics(all) {
		if topics, err := b.Topics(ctx, lessonID); err == nil {
			backend.AssignTopics(all, topics)
		}
	}

	if opts.Topic != "" && len(cards.FilterTopic(all, opts.Topic)) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, opts.Topic)
	}

	start, err := b.StartLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("start lesson %d: %w", lessonID, err)
	}

	statuses, err := b.CardStatuses(ctx, lessonID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load card statuses: %v\n", err)
	}
	for _, c := range all {
		if st, ok := statuses[c.ID]; ok {
			c.Status = st.Status.Normalize()
			c.Attempts = st.AttemptsCount
		}
	}

	s := &Session{
		backend:   b,
		opts:      opts,
		id:        uuid.New().String(),
		lessonID:  lesson.ID,
		title:     lesson.Title,
		attemptID: start.AttemptID,
		started:   opts.Now(),
		all:       all,
		progress:  progress,
		phase:     PhaseActive,
	}
	if err := s.selectTopic(opts.Topic); err != nil {
		return nil, err
	}

	if opts.Events != nil {
		_ = opts.Events.AppendSessionEvent(ctx, store.SessionEventData{
			SessionID:   s.id,
			Action:      store.SessionStart,
			LessonID:    s.lessonID,
			LessonTitle: s.title,
			Topic:       s.topic,
			AttemptID:   s.attemptID,
			CardsTotal:  len(s.cards),
		})
	}
	return s, nil
}

func missingTopics(cs []*cards.Card) bool {
	for _, c := range cs {
		if c.Topic == "" {
			return true
		}
	}
	return false
}

// ID returns the session's unique ID.
func (s *Session) ID() string { return s.id }

// LessonID returns the lesson being practiced.
func (s *Session) LessonID() int { return s.lessonID }

// LessonTitle returns the lesson's title.
func (s *Session) LessonTitle() string { return s.title }

// AttemptID returns the backend attempt opened by Start.
func (s *Session) AttemptID() int { return s.attemptID }

// Broadcaster returns the broadcaster receiving CardCompleted events.
func (s *Session) Broadcaster() *Broadcaster { return s.opts.Broadcaster }

// SelectTopic restricts the session to the cards of topic and restarts at
// its first card. An empty topic selects every card. The topic can only
// change before the first answer.
func (s *Session) SelectTopic(topic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.answered {
		return ErrAlreadyAnswered
	}
	return s.selectTopic(topic)
}

func (s *Session) selectTopic(topic string) error {
	selected := cards.FilterTopic(s.all, topic)
	if len(selected) == 0 {
		if topic != "" {
			return fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
		}
		return ErrNoCards
	}
	s.topic = topic
	s.cards = selected
	s.index = 0
	s.phase = PhaseActive
	s.present()
	return nil
}

// present resets per-card state for the card at s.index.
func (s *Session) present() {
	s.state = CardPresented
	s.verdict = nil
	s.letters = nil
	c := s.cards[s.index]
	if c.Valid() && c.InputMode() == cards.InputLetters && c.CorrectAnswer != "" {
		s.letters = spelling.New(c.CorrectAnswer, s.opts.Rand)
	}
}

// Topic returns the selected topic, "" for all.
func (s *Session) Topic() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic
}

// Topics returns the lesson's topics in order of first appearance.
func (s *Session) Topics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cards.Topics(s.all)
}

// Cards returns copies of the cards in the session, in play order.
func (s *Session) Cards() []cards.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCards(s.cards)
}

// AllCards returns copies of every card of the lesson, whatever the topic.
func (s *Session) AllCards() []cards.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCards(s.all)
}

func copyCards(cs []*cards.Card) []cards.Card {
	out := make([]cards.Card, len(cs))
	for i, c := range cs {
		out[i] = *c
	}
	return out
}

// Current returns a copy of the card being played and its position.
// ok is false once the session is complete.
func (s *Session) Current() (card cards.Card, index int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive {
		return cards.Card{}, s.index, false
	}
	return *s.cards[s.index], s.index, true
}

// State returns the current card's state.
func (s *Session) State() CardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Phase returns the session phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Progress returns the learner's latest known experience and level.
func (s *Session) Progress() backend.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Verdict returns the verdict on the current card, if it has one.
func (s *Session) Verdict() (Verdict, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.verdict == nil {
		return Verdict{}, false
	}
	return *s.verdict, true
}

// Begin resolves and pre-checks an answer for the current card and marks
// it submitted. It fails with ErrNotPresented unless the card is waiting
// for an answer, so a second submission is rejected while one is in
// flight.
func (s *Session) Begin(in Input) (*Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.activeLocked(); err != nil {
		return nil, err
	}
	if s.state != CardPresented {
		return nil, ErrNotPresented
	}
	c := s.cards[s.index]
	if !c.Valid() {
		return nil, ErrInvalidCard
	}

	sub := &Submission{CardID: c.ID, Option: -1, mode: c.InputMode()}
	switch sub.mode {
	case cards.InputChoice:
		i := in.Option
		if i < 0 && in.Text != "" {
			i = c.OptionIndex(in.Text)
		}
		if i < 0 || i >= len(c.Options) {
			return nil, ErrOptionRange
		}
		sub.Option = i
		sub.Answer = c.Options[i]
		sub.Precheck = s.opts.Grader.IsAnswerCorrect(c, sub.Answer)
	case cards.InputLetters:
		if s.letters == nil || len(s.letters.Placed()) == 0 {
			return nil, ErrEmptyAnswer
		}
		sub.Answer = s.letters.Answer()
		sub.Precheck = s.opts.Grader.IsAnswerCorrect(c, sub.Answer)
	case cards.InputSpeech:
		sub.Answer = strings.TrimSpace(in.Text)
		if sub.Answer == "" {
			return nil, ErrEmptyAnswer
		}
		sub.Precheck = s.opts.Grader.IsSpeechCorrect(c, sub.Answer)
	case cards.InputContinue:
		sub.Precheck = true
	default:
		sub.Answer = strings.TrimSpace(in.Text)
		if sub.Answer == "" {
			return nil, ErrEmptyAnswer
		}
		sub.Precheck = s.opts.Grader.IsAnswerCorrect(c, sub.Answer)
	}

	s.state = CardSubmitted
	s.answered = true
	return sub, nil
}

func (s *Session) activeLocked() error {
	switch s.phase {
	case PhaseLoading:
		return ErrNotStarted
	case PhaseComplete:
		return ErrComplete
	}
	return nil
}

// Send submits a begun answer to the backend. On failure the card goes
// back to waiting for an answer and the error is returned; nothing is
// retried. On success the backend's verdict updates the card and the
// learner's progress, and a CardCompleted event is published.
func (s *Session) Send(ctx context.Context, sub *Submission) (*Verdict, error) {
	s.mu.Lock()
	if s.phase != PhaseActive || s.state != CardSubmitted || s.cards[s.index].ID != sub.CardID {
		s.mu.Unlock()
		return nil, ErrNoSubmission
	}
	c := s.cards[s.index]
	req := backend.AnswerRequest{
		AttemptID: s.attemptID,
		CardID:    c.ID,
		Answer:    sub.Answer,
		IsCorrect: sub.Precheck,
	}
	s.mu.Unlock()

	resp, err := s.backend.SubmitAnswer(ctx, req)

	s.mu.Lock()
	if err != nil {
		s.state = CardPresented
		s.mu.Unlock()
		return nil, fmt.Errorf("submit answer for card %d: %w", c.ID, err)
	}

	prevLevel := s.progress.CurrentLevel
	c.Status = resp.CardStatus.Normalize()
	c.Attempts = resp.AttemptsCount
	if resp.CurrentLevel > 0 {
		s.progress.TotalExperience = resp.TotalExperience
		s.progress.CurrentLevel = resp.CurrentLevel
	}
	s.answers++
	s.xpGained += resp.ExperienceGained
	if resp.IsCorrect {
		s.correct++
		s.state = CardCorrect
	} else {
		s.state = CardIncorrect
	}

	v := buildVerdict(c, resp, prevLevel)
	s.verdict = &v
	s.mu.Unlock()

	s.opts.Broadcaster.Publish(CardCompleted{
		Type:   EventCardCompleted,
		CardID: c.ID,
		Status: v.Status,
		Color:  v.Color,
	})

	if s.opts.Events != nil {
		_ = s.opts.Events.AppendAnswerEvent(ctx, store.AnswerEventData{
			SessionID:        s.id,
			LessonID:         s.lessonID,
			CardID:           c.ID,
			CardType:         string(c.Type),
			InputMode:        sub.mode.String(),
			QuestionText:     c.Question,
			Answer:           sub.Answer,
			Precheck:         sub.Precheck,
			Correct:          v.Correct,
			Status:           int(v.Status),
			Attempts:         v.Attempts,
			ExperienceGained: v.ExperienceGained,
		})
	}
	return &v, nil
}

func buildVerdict(c *cards.Card, resp *backend.AnswerResponse, prevLevel int) Verdict {
	status := resp.CardStatus.Normalize()
	color := resp.StatusColor
	if color == "" {
		color = status.Color()
	}
	v := Verdict{
		CardID:           c.ID,
		Correct:          resp.IsCorrect,
		Attempts:         resp.AttemptsCount,
		Status:           status,
		Color:            color,
		Mastered:         status == cards.StatusMastered,
		ExperienceGained: resp.ExperienceGained,
		TotalExperience:  resp.TotalExperience,
		Level:            resp.CurrentLevel,
		LeveledUp:        resp.CurrentLevel > prevLevel && prevLevel > 0,
	}
	if resp.IsCorrect {
		v.Translation = firstNonEmpty(resp.TranslationText, c.Translation)
		return v
	}
	v.Hint = firstNonEmpty(resp.HintText, c.Hint)
	v.ShowHint = resp.ShowHint && v.Hint != ""
	if c.RevealAnswer(resp.AttemptsCount) {
		v.RevealAnswer = true
		v.CorrectAnswer = c.CorrectAnswer
	}
	return v
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Submit begins and sends an answer in one step.
func (s *Session) Submit(ctx context.Context, in Input) (*Verdict, error) {
	sub, err := s.Begin(in)
	if err != nil {
		return nil, err
	}
	return s.Send(ctx, sub)
}

// Retry returns an incorrectly answered card to waiting for an answer,
// clearing its letters. Attempts are kept.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive || s.state != CardIncorrect {
		return ErrNotIncorrect
	}
	s.state = CardPresented
	s.verdict = nil
	if s.letters != nil {
		s.letters.Clear()
	}
	return nil
}

// Advance moves past a correctly answered card. It returns false once the
// last card is done, in which case the attempt is completed with Finish.
func (s *Session) Advance(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.phase != PhaseActive || s.state != CardCorrect {
		s.mu.Unlock()
		return false, ErrNotCorrect
	}
	s.index++
	if s.index < len(s.cards) {
		s.present()
		s.mu.Unlock()
		return true, nil
	}
	s.phase = PhaseComplete
	s.mu.Unlock()

	_, err := s.Finish(ctx)
	return false, err
}

// Finish completes the backend attempt and returns the summary. It may be
// called before every card is done to end early. A failed Finish can be
// retried; once it succeeds the summary is cached.
func (s *Session) Finish(ctx context.Context) (*Summary, error) {
	s.finishing.Lock()
	defer s.finishing.Unlock()

	s.mu.Lock()
	if s.summary != nil {
		sum := *s.summary
		s.mu.Unlock()
		return &sum, nil
	}
	s.mu.Unlock()

	resp, err := s.backend.CompleteAttempt(ctx, s.attemptID)
	if err != nil {
		return nil, fmt.Errorf("complete attempt %d: %w", s.attemptID, err)
	}

	if p, err := s.backend.Progress(ctx); err == nil {
		s.mu.Lock()
		s.progress = *p
		s.mu.Unlock()
	}

	s.mu.Lock()
	sum := &Summary{
		LessonID:         s.lessonID,
		LessonTitle:      s.title,
		Topic:            s.topic,
		Score:            resp.Score,
		CorrectCards:     resp.CorrectCards,
		TotalCards:       resp.TotalCards,
		Answers:          s.answers,
		CorrectAnswers:   s.correct,
		ExperienceGained: s.xpGained,
		TotalExperience:  s.progress.TotalExperience,
		Level:            s.progress.CurrentLevel,
		Duration:         s.opts.Now().Sub(s.started),
	}
	if sum.TotalCards == 0 {
		sum.TotalCards = len(s.cards)
	}
	s.summary = sum
	progress := s.progress
	s.mu.Unlock()

	s.persist(ctx, sum, progress)

	out := *sum
	return &out, nil
}

func (s *Session) persist(ctx context.Context, sum *Summary, p backend.Progress) {
	if s.opts.Events != nil {
		score := 0
		if sum.Score != nil {
			score = *sum.Score
		}
		_ = s.opts.Events.AppendSessionEvent(ctx, store.SessionEventData{
			SessionID:        s.id,
			Action:           store.SessionEnd,
			LessonID:         sum.LessonID,
			LessonTitle:      sum.LessonTitle,
			Topic:            sum.Topic,
			AttemptID:        s.attemptID,
			CardsTotal:       sum.TotalCards,
			CardsCorrect:     sum.CorrectCards,
			Score:            score,
			ExperienceGained: sum.ExperienceGained,
			DurationSecs:     int(sum.Duration.Seconds()),
		})
	}
	if s.opts.Snapshots != nil {
		_ = s.opts.Snapshots.Save(ctx, &store.Snapshot{
			Timestamp: s.opts.Now(),
			Data:      SnapshotData(p),
		})
		_ = s.opts.Snapshots.Prune(ctx, SnapshotsKept)
	}
}

// SnapshotData converts backend progress to its stored form.
func SnapshotData(p backend.Progress) store.SnapshotData {
	return store.SnapshotData{
		Version:             1,
		TotalExperience:     p.TotalExperience,
		Level:               p.CurrentLevel,
		TotalCardsCompleted: p.TotalCardsCompleted,
		LessonsCompleted:    p.TotalLessonsCompleted,
		Accuracy:            p.Accuracy,
	}
}

// ProgressFromSnapshot is the inverse of SnapshotData.
func ProgressFromSnapshot(d store.SnapshotData) backend.Progress {
	p := backend.Progress{
		TotalExperience:       d.TotalExperience,
		CurrentLevel:          d.Level,
		TotalCardsCompleted:   d.TotalCardsCompleted,
		TotalLessonsCompleted: d.LessonsCompleted,
		Accuracy:              d.Accuracy,
	}
	if p.CurrentLevel < 1 {
		p.CurrentLevel = 1
	}
	return p
}

// Summary returns the cached summary once Finish has succeeded.
func (s *Session) Summary() (*Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == nil {
		return nil, false
	}
	sum := *s.summary
	return &sum, true
}
