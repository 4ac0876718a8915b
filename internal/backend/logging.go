package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/abhisek/lingo/internal/store"
	"github.com/google/uuid"
)

// LoggingBackend is a decorator that records every backend call as an
// event.
type LoggingBackend struct {
	inner     Backend
	eventRepo store.EventRepo
}

// WithLogging wraps a Backend with event logging.
func WithLogging(b Backend, repo store.EventRepo) Backend {
	return &LoggingBackend{inner: b, eventRepo: repo}
}

// record logs one call. The request ID put on ctx is the one sent to the
// backend, so events can be matched with server logs.
func record[T any](ctx context.Context, l *LoggingBackend, op string, id int, req any, fn func(context.Context) (T, error)) (T, error) {
	requestID := uuid.NewString()
	ctx = WithRequestID(ctx, requestID)

	start := time.Now()
	resp, err := fn(ctx)
	latencyMs := time.Since(start).Milliseconds()

	method, path := Route(op, id)
	data := store.BackendCallData{
		Operation: op,
		Method:    method,
		Path:      path,
		RequestID: requestID,
		LatencyMs: latencyMs,
		Success:   err == nil,
	}
	if req != nil {
		data.RequestBody = serialize(req)
	}

	if err != nil {
		data.ErrorMessage = err.Error()
		var st *ErrStatus
		if errors.As(err, &st) {
			data.StatusCode = st.Code
			data.ResponseBody = st.Body
		}
	} else {
		data.StatusCode = 200
		data.ResponseBody = serialize(resp)
	}

	// Log the event but don't fail the call if logging fails.
	if logErr := l.eventRepo.AppendBackendCall(ctx, data); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log backend call event: %v\n", logErr)
	}

	return resp, err
}

func (l *LoggingBackend) StartLesson(ctx context.Context, lessonID int) (*StartResponse, error) {
	return record(ctx, l, OpStartLesson, lessonID, nil, func(ctx context.Context) (*StartResponse, error) {
		return l.inner.StartLesson(ctx, lessonID)
	})
}

func (l *LoggingBackend) CardStatuses(ctx context.Context, lessonID int) (map[int]CardStatus, error) {
	return record(ctx, l, OpCardStatuses, lessonID, nil, func(ctx context.Context) (map[int]CardStatus, error) {
		return l.inner.CardStatuses(ctx, lessonID)
	})
}

func (l *LoggingBackend) SubmitAnswer(ctx context.Context, req AnswerRequest) (*AnswerResponse, error) {
	return record(ctx, l, OpSubmitAnswer, 0, req, func(ctx context.Context) (*AnswerResponse, error) {
		return l.inner.SubmitAnswer(ctx, req)
	})
}

func (l *LoggingBackend) CompleteAttempt(ctx context.Context, attemptID int) (*CompleteResponse, error) {
	return record(ctx, l, OpCompleteAttempt, attemptID, nil, func(ctx context.Context) (*CompleteResponse, error) {
		return l.inner.CompleteAttempt(ctx, attemptID)
	})
}

func (l *LoggingBackend) Progress(ctx context.Context) (*Progress, error) {
	return record(ctx, l, OpProgress, 0, nil, l.inner.Progress)
}

func (l *LoggingBackend) Lesson(ctx context.Context, lessonID int) (*Lesson, error) {
	return record(ctx, l, OpLesson, lessonID, nil, func(ctx context.Context) (*Lesson, error) {
		return l.inner.Lesson(ctx, lessonID)
	})
}

func (l *LoggingBackend) Lessons(ctx context.Context) ([]LessonInfo, error) {
	return record(ctx, l, OpLessons, 0, nil, l.inner.Lessons)
}

func (l *LoggingBackend) Topics(ctx context.Context, lessonID int) ([]TopicInfo, error) {
	return record(ctx, l, OpTopics, lessonID, nil, func(ctx context.Context) ([]TopicInfo, error) {
		return l.inner.Topics(ctx, lessonID)
	})
}

// serialize renders a request or response for the event log.
func serialize(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}
