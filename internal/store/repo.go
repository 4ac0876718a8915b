package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// SnapshotData captures the learner's backend progress at a point in time,
// so `lingo progress` and the header can show something when the backend
// is unreachable.
type SnapshotData struct {
	Version             int     `json:"version"`
	TotalExperience     int     `json:"total_experience"`
	Level               int     `json:"current_level"`
	TotalCardsCompleted int     `json:"total_cards_completed,omitempty"`
	LessonsCompleted    int     `json:"total_lessons_completed,omitempty"`
	Accuracy            float64 `json:"accuracy,omitempty"`
}

// Snapshot represents a point-in-time capture of learner state.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages learner state snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}

// BackendCallData captures a single call to the lesson backend.
type BackendCallData struct {
	Operation    string
	Method       string
	Path         string
	RequestID    string
	StatusCode   int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// BackendCallEvent is a stored backend call.
type BackendCallEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	BackendCallData
}

// BackendCallStat aggregates calls per operation.
type BackendCallStat struct {
	Operation    string
	Calls        int
	Failures     int
	AvgLatencyMs int64
}

// AnswerEventData captures one graded answer.
type AnswerEventData struct {
	SessionID        string
	LessonID         int
	CardID           int
	CardType         string
	InputMode        string
	QuestionText     string
	Answer           string
	Precheck         bool
	Correct          bool
	Status           int
	Attempts         int
	ExperienceGained int
}

// AnswerEvent is a stored answer.
type AnswerEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	AnswerEventData
}

// Session event actions.
const (
	SessionStart = "start"
	SessionEnd   = "end"
)

// SessionEventData captures a session boundary.
type SessionEventData struct {
	SessionID        string
	Action           string
	LessonID         int
	LessonTitle      string
	Topic            string
	AttemptID        int
	CardsTotal       int
	CardsCorrect     int
	Score            int
	ExperienceGained int
	DurationSecs     int
}

// SessionSummaryRecord is a finished session as listed by `lingo history`.
type SessionSummaryRecord struct {
	Sequence  int64
	Timestamp time.Time
	SessionEventData
	Answers int
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendBackendCall records a lesson backend API call.
	AppendBackendCall(ctx context.Context, data BackendCallData) error

	// QueryBackendCalls returns backend calls, newest first.
	QueryBackendCalls(ctx context.Context, opts QueryOpts) ([]BackendCallEvent, error)

	// GetBackendCall returns one backend call by ID, or nil if not found.
	GetBackendCall(ctx context.Context, id int) (*BackendCallEvent, error)

	// BackendCallStats aggregates backend calls by operation.
	BackendCallStats(ctx context.Context) ([]BackendCallStat, error)

	// AppendAnswerEvent records a graded answer.
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error

	// QueryAnswerEvents returns answers for a session in submission order.
	// An empty sessionID returns answers across sessions.
	QueryAnswerEvents(ctx context.Context, sessionID string, opts QueryOpts) ([]AnswerEvent, error)

	// AppendSessionEvent records a session start or end.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// QuerySessionSummaries returns finished sessions, newest first.
	QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummaryRecord, error)
}
