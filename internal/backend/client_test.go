package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abhisek/lingo/internal/cards"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL + "/api"
	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestClient_StartLesson(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/lessons/7/start/", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeJSON(w, 200, map[string]any{"attempt_id": 31, "total_cards": 12, "message": "ok"})
	})

	resp, err := c.StartLesson(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 31, resp.AttemptID)
	assert.Equal(t, 12, resp.TotalCards)
}

func TestClient_CardStatusesWrappedAndBare(t *testing.T) {
	payloads := map[string]any{
		"wrapped": map[string]any{"card_statuses": map[string]any{
			"4": map[string]any{"status": 5, "color": "green", "attempts_count": 1},
			"9": map[string]any{"status": 7, "attempts_count": 2},
		}},
		"bare": map[string]any{
			"4": map[string]any{"status": 5, "color": "green", "attempts_count": 1},
			"9": map[string]any{"status": 7, "attempts_count": 2},
		},
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/lessons/2/card_statuses/", r.URL.Path)
				writeJSON(w, 200, payload)
			})

			got, err := c.CardStatuses(context.Background(), 2)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, CardStatus{Status: cards.StatusMastered, Color: "green", AttemptsCount: 1}, got[4])
			// Unknown status codes read as failed.
			assert.Equal(t, CardStatus{Status: cards.StatusFailed, Color: "red", AttemptsCount: 2}, got[9])
		})
	}
}

func TestClient_CardStatusesEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"card_statuses": map[string]any{}})
	})
	got, err := c.CardStatuses(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_SubmitAnswer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cards/answer/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req AnswerRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, AnswerRequest{AttemptID: 3, CardID: 11, Answer: "blue", IsCorrect: true}, req)

		writeJSON(w, 200, map[string]any{
			"is_correct":        false,
			"attempts_count":    2,
			"card_status":       0,
			"status_color":      "red",
			"experience_gained": 0,
			"show_hint":         "Think of the sky",
			"hint_text":         "Think of the sky",
			"translation_text":  nil,
			"total_experience":  140,
			"current_level":     2,
		})
	})

	resp, err := c.SubmitAnswer(context.Background(), AnswerRequest{AttemptID: 3, CardID: 11, Answer: "blue", IsCorrect: true})
	require.NoError(t, err)
	assert.False(t, resp.IsCorrect)
	assert.True(t, resp.ShowHint)
	assert.Equal(t, "Think of the sky", resp.HintText)
	assert.Empty(t, resp.TranslationText)
	assert.Equal(t, 2, resp.AttemptsCount)
	assert.Equal(t, 2, resp.CurrentLevel)
}

func TestClient_CompleteAttemptNullScore(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/attempts/5/complete/", r.URL.Path)
		writeJSON(w, 200, map[string]any{"score": nil, "correct_cards": 0, "total_cards": 3})
	})
	resp, err := c.CompleteAttempt(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, resp.Score)
	assert.Equal(t, 3, resp.TotalCards)
}

func TestClient_LessonAndLessons(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/lessons/":
			writeJSON(w, 200, map[string]any{"lessons": []map[string]any{
				{"id": 1, "title": "Colors", "cards_count": 3, "topics_count": 1,
					"progress": map[string]any{"cards_completed": 1, "cards_total": 3, "completion_percent": 33.3}},
			}})
		case "/api/lessons/1/":
			writeJSON(w, 200, map[string]any{
				"id":    1,
				"title": "Colors",
				"cards": []map[string]any{
					{"id": 2, "card_type": "writing", "question_text": "Write red", "correct_answer": "red", "order_index": 2},
					{"id": 1, "card_type": "new_words", "question_text": "red", "order_index": 1},
				},
			})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	list, err := c.Lessons(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Colors", list[0].Title)
	assert.Equal(t, 1, list[0].Progress.CardsCompleted)

	lesson, err := c.Lesson(ctx, 1)
	require.NoError(t, err)
	cs, err := lesson.DecodeCards()
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Equal(t, 1, cs[0].ID, "cards sorted by order_index")
}

func TestClient_Progress(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/progress/", r.URL.Path)
		writeJSON(w, 200, map[string]any{"total_experience": 320, "current_level": 3, "accuracy": 87.5})
	})
	p, err := c.Progress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 320, p.TotalExperience)
	assert.Equal(t, 3, p.CurrentLevel)
	assert.InDelta(t, 87.5, p.Accuracy, 0.001)
}

func TestClient_ErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 404, map[string]any{"error": "Урок не найден"})
	})

	_, err := c.StartLesson(context.Background(), 99)
	var st *ErrStatus
	require.True(t, errors.As(err, &st), "got %T", err)
	assert.Equal(t, 404, st.Code)
	assert.True(t, st.NotFound())
	assert.Equal(t, "Урок не найден", st.Message)
}

func TestClient_DecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		io.WriteString(w, "<html>not json</html>")
	})

	_, err := c.Progress(context.Background())
	var dec *ErrDecode
	assert.True(t, errors.As(err, &dec), "got %T", err)
}

func TestClient_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = url + "/api"
	c, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = c.Progress(context.Background())
	var un *ErrUnavailable
	assert.True(t, errors.As(err, &un), "got %T", err)
}

func TestClient_KeepsSessionCookie(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "abc", Path: "/"})
		} else {
			ck, err := r.Cookie("sessionid")
			if assert.NoError(t, err) {
				assert.Equal(t, "abc", ck.Value)
			}
		}
		writeJSON(w, 200, map[string]any{"total_experience": 0, "current_level": 1})
	})

	ctx := context.Background()
	_, err := c.Progress(ctx)
	require.NoError(t, err)
	_, err = c.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestClient_BearerToken(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		writeJSON(w, 200, map[string]any{"total_experience": 0, "current_level": 1})
	}))
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL + "/api"
	cfg.Token = token
	c, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = c.Progress(context.Background())
	require.NoError(t, err)
}

func TestClient_ExpiredTokenNotSent(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL + "/api"
	cfg.Token = signedToken(t, time.Now().Add(-time.Minute))
	c, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = c.Progress(context.Background())
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.False(t, called, "expired token must not reach the backend")
}

func TestOpaqueTokenHasNoExpiry(t *testing.T) {
	ts := newTokenSource("not-a-jwt")
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "not-a-jwt", tok.AccessToken)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.BaseURL = "localhost:8000"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Timeout = 0
	assert.Error(t, cfg.Validate())
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Contains(t, UserMessage(&ErrUnavailable{}), "Could not reach")
	assert.Contains(t, UserMessage(&ErrStatus{Code: 500}), "500")
	assert.Contains(t, UserMessage(ErrTokenExpired), "expired")
}

func TestAssignTopics(t *testing.T) {
	cs := []*cards.Card{{ID: 1}, {ID: 2, Topic: "kept"}, {ID: 3}}
	AssignTopics(cs, []TopicInfo{
		{Topic: "colors", CardIDs: []int{1, 2}},
	})
	assert.Equal(t, "colors", cs[0].Topic)
	assert.Equal(t, "kept", cs[1].Topic)
	assert.Equal(t, "", cs[2].Topic)
}
