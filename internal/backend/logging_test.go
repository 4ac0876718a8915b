package backend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/lingo/internal/store"
)

// mockEventRepo records backend call events. Other EventRepo methods are
// not used by these tests.
type mockEventRepo struct {
	store.EventRepo
	calls []store.BackendCallData
	err   error
}

func (m *mockEventRepo) AppendBackendCall(_ context.Context, data store.BackendCallData) error {
	m.calls = append(m.calls, data)
	return m.err
}

func TestLoggingBackend_RecordsSuccess(t *testing.T) {
	mock := NewMockBackend(1, `[]`)
	mock.Verdict(true, 5, 1, 20)
	repo := &mockEventRepo{}
	b := WithLogging(mock, repo)

	req := AnswerRequest{AttemptID: 1, CardID: 4, Answer: "hello", IsCorrect: true}
	resp, err := b.SubmitAnswer(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsCorrect {
		t.Fatal("expected correct verdict to pass through")
	}

	if len(repo.calls) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.calls))
	}
	ev := repo.calls[0]
	if ev.Operation != OpSubmitAnswer || ev.Method != "POST" || ev.Path != "cards/answer/" {
		t.Errorf("event route = %s %s %s", ev.Operation, ev.Method, ev.Path)
	}
	if !ev.Success || ev.StatusCode != 200 {
		t.Errorf("success = %v, status = %d", ev.Success, ev.StatusCode)
	}
	if ev.RequestID == "" {
		t.Error("expected a request ID")
	}
	if !strings.Contains(ev.RequestBody, `"answer": "hello"`) {
		t.Errorf("request body not captured: %s", ev.RequestBody)
	}
	if !strings.Contains(ev.ResponseBody, `"is_correct": true`) {
		t.Errorf("response body not captured: %s", ev.ResponseBody)
	}
}

func TestLoggingBackend_RecordsFailure(t *testing.T) {
	mock := NewMockBackend(1, `[]`)
	mock.SetErr(OpStartLesson, &ErrStatus{Code: 500, Body: `{"error":"boom"}`, Message: "boom"})
	repo := &mockEventRepo{}
	b := WithLogging(mock, repo)

	_, err := b.StartLesson(context.Background(), 1)
	var st *ErrStatus
	if !errors.As(err, &st) {
		t.Fatalf("expected ErrStatus, got %v", err)
	}

	ev := repo.calls[0]
	if ev.Success {
		t.Error("expected failed event")
	}
	if ev.StatusCode != 500 || ev.ResponseBody != `{"error":"boom"}` {
		t.Errorf("status = %d, body = %q", ev.StatusCode, ev.ResponseBody)
	}
	if ev.Path != "lessons/1/start/" {
		t.Errorf("path = %q", ev.Path)
	}
	if !strings.Contains(ev.ErrorMessage, "boom") {
		t.Errorf("error message = %q", ev.ErrorMessage)
	}
}

func TestLoggingBackend_LogFailureDoesNotFailCall(t *testing.T) {
	mock := NewMockBackend(1, `[]`)
	repo := &mockEventRepo{err: errors.New("disk full")}
	b := WithLogging(mock, repo)

	if _, err := b.Progress(context.Background()); err != nil {
		t.Fatalf("logging failure leaked into call: %v", err)
	}
}
