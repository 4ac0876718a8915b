package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"

	"golang.org/x/oauth2"
)

// Operation names, used for event logging.
const (
	OpStartLesson     = "start_lesson"
	OpCardStatuses    = "card_statuses"
	OpSubmitAnswer    = "submit_answer"
	OpCompleteAttempt = "complete_attempt"
	OpProgress        = "progress"
	OpLesson          = "lesson"
	OpLessons         = "lessons"
	OpTopics          = "topics"
)

// Route returns the HTTP method and path (relative to the API root) of an
// operation. id is the lesson or attempt ID where the path needs one.
func Route(op string, id int) (method, path string) {
	n := strconv.Itoa(id)
	switch op {
	case OpStartLesson:
		return http.MethodPost, "lessons/" + n + "/start/"
	case OpCardStatuses:
		return http.MethodGet, "lessons/" + n + "/card_statuses/"
	case OpSubmitAnswer:
		return http.MethodPost, "cards/answer/"
	case OpCompleteAttempt:
		return http.MethodPost, "attempts/" + n + "/complete/"
	case OpProgress:
		return http.MethodGet, "progress/"
	case OpLesson:
		return http.MethodGet, "lessons/" + n + "/"
	case OpLessons:
		return http.MethodGet, "lessons/"
	case OpTopics:
		return http.MethodGet, "lessons/" + n + "/topics/"
	}
	return "", ""
}

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 4 << 20

// Client implements Backend over HTTP. The backend identifies the learner
// by its session cookie, so a Client keeps cookies across calls and
// should be reused for the whole run.
type Client struct {
	base  *url.URL
	http  *http.Client
	token *tokenSource
}

var _ Backend = (*Client)(nil)

// NewClient creates a Client from configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{base: base}
	if cfg.Token != "" {
		c.token = newTokenSource(cfg.Token)
		c.http = oauth2.NewClient(context.Background(), c.token)
	} else {
		c.http = &http.Client{}
	}
	c.http.Jar = jar
	c.http.Timeout = cfg.Timeout

	return c, nil
}

func (c *Client) StartLesson(ctx context.Context, lessonID int) (*StartResponse, error) {
	var out StartResponse
	if err := c.call(ctx, OpStartLesson, lessonID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CardStatuses(ctx context.Context, lessonID int) (map[int]CardStatus, error) {
	var raw json.RawMessage
	if err := c.call(ctx, OpCardStatuses, lessonID, nil, &raw); err != nil {
		return nil, err
	}
	statuses, err := decodeCardStatuses(raw)
	if err != nil {
		return nil, &ErrDecode{Err: err}
	}
	return statuses, nil
}

// decodeCardStatuses accepts either a bare {card_id: status} mapping or
// one wrapped in a "card_statuses" field.
func decodeCardStatuses(raw json.RawMessage) (map[int]CardStatus, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("card statuses: %w", err)
	}
	if inner, ok := fields["card_statuses"]; ok {
		fields = nil
		if err := json.Unmarshal(inner, &fields); err != nil {
			return nil, fmt.Errorf("card statuses: %w", err)
		}
	}

	out := make(map[int]CardStatus, len(fields))
	for k, v := range fields {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("card statuses: invalid card id %q", k)
		}
		var st CardStatus
		if err := json.Unmarshal(v, &st); err != nil {
			return nil, fmt.Errorf("card statuses: card %d: %w", id, err)
		}
		st.Status = st.Status.Normalize()
		if st.Color == "" {
			st.Color = st.Status.Color()
		}
		out[id] = st
	}
	return out, nil
}

func (c *Client) SubmitAnswer(ctx context.Context, req AnswerRequest) (*AnswerResponse, error) {
	var out AnswerResponse
	if err := c.call(ctx, OpSubmitAnswer, 0, req, &out); err != nil {
		return nil, err
	}
	out.CardStatus = out.CardStatus.Normalize()
	if out.StatusColor == "" {
		out.StatusColor = out.CardStatus.Color()
	}
	return &out, nil
}

func (c *Client) CompleteAttempt(ctx context.Context, attemptID int) (*CompleteResponse, error) {
	var out CompleteResponse
	if err := c.call(ctx, OpCompleteAttempt, attemptID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Progress(ctx context.Context) (*Progress, error) {
	out := DefaultProgress()
	if err := c.call(ctx, OpProgress, 0, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Lesson(ctx context.Context, lessonID int) (*Lesson, error) {
	var out Lesson
	if err := c.call(ctx, OpLesson, lessonID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Lessons(ctx context.Context) ([]LessonInfo, error) {
	var out struct {
		Lessons []LessonInfo `json:"lessons"`
	}
	if err := c.call(ctx, OpLessons, 0, nil, &out); err != nil {
		return nil, err
	}
	return out.Lessons, nil
}

func (c *Client) Topics(ctx context.Context, lessonID int) ([]TopicInfo, error) {
	var out struct {
		Topics []TopicInfo `json:"topics"`
	}
	if err := c.call(ctx, OpTopics, lessonID, nil, &out); err != nil {
		return nil, err
	}
	return out.Topics, nil
}

// call performs one request and decodes a JSON response into out.
func (c *Client) call(ctx context.Context, op string, id int, body, out any) error {
	if c.token != nil {
		if _, err := c.token.Token(); err != nil {
			return err
		}
	}

	method, path := Route(op, id)
	u := c.base.JoinPath(path)

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", RequestIDFrom(ctx))

	resp, err := c.http.Do(req)
	if err != nil {
		return &ErrUnavailable{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &ErrUnavailable{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &ErrDecode{Err: err}
	}
	return nil
}

func statusError(code int, body []byte) *ErrStatus {
	e := &ErrStatus{Code: code, Body: string(body)}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Error
	}
	return e
}
