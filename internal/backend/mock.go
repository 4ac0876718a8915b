package backend

import (
	"context"
	"sync"

	"github.com/abhisek/lingo/internal/cards"
)

// MockCall records one call made to a MockBackend.
type MockCall struct {
	Op     string
	ID     int
	Answer *AnswerRequest
}

// MockBackend is a deterministic Backend for testing. Answers are served
// from a FIFO queue; the other operations return the configured values.
// All calls are recorded.
type MockBackend struct {
	mu sync.Mutex

	LessonData   *Lesson
	LessonList   []LessonInfo
	TopicList    []TopicInfo
	Statuses     map[int]CardStatus
	ProgressData *Progress
	Start        *StartResponse
	Complete     *CompleteResponse

	// Errs forces an operation to fail with the given error.
	Errs map[string]error

	answers []MockAnswer
	Calls   []MockCall
}

// MockAnswer is a canned SubmitAnswer outcome.
type MockAnswer struct {
	Response *AnswerResponse
	Err      error
}

// NewMockBackend creates a MockBackend serving a lesson with the given ID
// and raw cards payload.
func NewMockBackend(lessonID int, rawCards string) *MockBackend {
	return &MockBackend{
		LessonData:   &Lesson{ID: lessonID, Title: "Mock lesson", Cards: []byte(rawCards)},
		Statuses:     map[int]CardStatus{},
		ProgressData: &Progress{TotalExperience: 0, CurrentLevel: 1},
		Start:        &StartResponse{AttemptID: 1},
		Complete:     &CompleteResponse{},
		Errs:         map[string]error{},
	}
}

// AddAnswer appends a canned SubmitAnswer outcome to the queue.
func (m *MockBackend) AddAnswer(a MockAnswer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers = append(m.answers, a)
}

// Verdict is a shorthand for queueing a successful SubmitAnswer response.
func (m *MockBackend) Verdict(correct bool, status cards.Status, attempts, xp int) {
	m.AddAnswer(MockAnswer{Response: &AnswerResponse{
		IsCorrect:        correct,
		AttemptsCount:    attempts,
		CardStatus:       status,
		StatusColor:      status.Color(),
		ExperienceGained: xp,
		CurrentLevel:     1,
	}})
}

// SetErr makes op fail with err until cleared with a nil err.
func (m *MockBackend) SetErr(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.Errs, op)
		return
	}
	m.Errs[op] = err
}

func (m *MockBackend) begin(op string, id int, ans *AnswerRequest) error {
	m.Calls = append(m.Calls, MockCall{Op: op, ID: id, Answer: ans})
	return m.Errs[op]
}

func (m *MockBackend) StartLesson(_ context.Context, lessonID int) (*StartResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpStartLesson, lessonID, nil); err != nil {
		return nil, err
	}
	resp := *m.Start
	return &resp, nil
}

func (m *MockBackend) CardStatuses(_ context.Context, lessonID int) (map[int]CardStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpCardStatuses, lessonID, nil); err != nil {
		return nil, err
	}
	out := make(map[int]CardStatus, len(m.Statuses))
	for k, v := range m.Statuses {
		out[k] = v
	}
	return out, nil
}

// SubmitAnswer returns the next queued answer, or ErrUnavailable when the
// queue is empty.
func (m *MockBackend) SubmitAnswer(_ context.Context, req AnswerRequest) (*AnswerResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpSubmitAnswer, req.CardID, &req); err != nil {
		return nil, err
	}
	if len(m.answers) == 0 {
		return nil, &ErrUnavailable{}
	}
	a := m.answers[0]
	m.answers = m.answers[1:]
	if a.Err != nil {
		return nil, a.Err
	}
	resp := *a.Response
	return &resp, nil
}

func (m *MockBackend) CompleteAttempt(_ context.Context, attemptID int) (*CompleteResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpCompleteAttempt, attemptID, nil); err != nil {
		return nil, err
	}
	resp := *m.Complete
	return &resp, nil
}

func (m *MockBackend) Progress(_ context.Context) (*Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpProgress, 0, nil); err != nil {
		return nil, err
	}
	p := *m.ProgressData
	return &p, nil
}

func (m *MockBackend) Lesson(_ context.Context, lessonID int) (*Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpLesson, lessonID, nil); err != nil {
		return nil, err
	}
	if m.LessonData == nil || m.LessonData.ID != lessonID {
		return nil, &ErrStatus{Code: 404, Message: "lesson not found"}
	}
	l := *m.LessonData
	return &l, nil
}

func (m *MockBackend) Lessons(_ context.Context) ([]LessonInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpLessons, 0, nil); err != nil {
		return nil, err
	}
	return append([]LessonInfo(nil), m.LessonList...), nil
}

func (m *MockBackend) Topics(_ context.Context, lessonID int) ([]TopicInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpTopics, lessonID, nil); err != nil {
		return nil, err
	}
	return append([]TopicInfo(nil), m.TopicList...), nil
}

// CallCount returns the number of calls made for op.
func (m *MockBackend) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// SubmittedAnswers returns the answer requests received, in order.
func (m *MockBackend) SubmittedAnswers() []AnswerRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []AnswerRequest
	for _, c := range m.Calls {
		if c.Answer != nil {
			out = append(out, *c.Answer)
		}
	}
	return out
}
