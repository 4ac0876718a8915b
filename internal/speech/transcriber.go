package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Transcriber turns recorded audio into text.
type Transcriber interface {
	// Transcribe returns the transcript of audio spoken in lang (a BCP 47
	// tag). An empty transcript means nothing intelligible was heard.
	Transcribe(ctx context.Context, audio []byte, lang string) (string, error)
}

// NewTranscriber creates the Transcriber selected by cfg.
func NewTranscriber(ctx context.Context, cfg Config) (Transcriber, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case "openai":
		return NewOpenAITranscriber(cfg.OpenAIKey, cfg.Model), nil
	case "gemini":
		return NewGeminiTranscriber(ctx, cfg.GeminiKey, cfg.Model)
	case "mock":
		return NewMockTranscriber(), nil
	default:
		return nil, fmt.Errorf("unknown speech provider: %q", cfg.Provider)
	}
}

// OpenAITranscriber uses the OpenAI audio transcription API.
type OpenAITranscriber struct {
	client *openai.Client
	model  string
}

// NewOpenAITranscriber creates a Whisper transcriber. An empty model
// selects whisper-1.
func NewOpenAITranscriber(apiKey, model string) *OpenAITranscriber {
	return newOpenAITranscriber(openai.DefaultConfig(apiKey), model)
}

func newOpenAITranscriber(config openai.ClientConfig, model string) *OpenAITranscriber {
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAITranscriber{client: openai.NewClientWithConfig(config), model: model}
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, audio []byte, lang string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: "speech.wav",
		Reader:   bytes.NewReader(audio),
		Language: baseLanguage(lang),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", mapOpenAIError(ctx, err)
	}
	return strings.TrimSpace(resp.Text), nil
}

func mapOpenAIError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return newError(ReasonAborted, err)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return newError(reasonForStatus(apiErr.HTTPStatusCode), err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return newError(reasonForStatus(reqErr.HTTPStatusCode), err)
	}
	return classifyTransportError(err)
}

// GeminiTranscriber asks a Gemini model to transcribe inline audio.
type GeminiTranscriber struct {
	client *genai.Client
	model  string
}

// NewGeminiTranscriber creates a Gemini transcriber. An empty model
// selects gemini-2.0-flash.
func NewGeminiTranscriber(ctx context.Context, apiKey, model string) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiTranscriber{client: client, model: model}, nil
}

func (t *GeminiTranscriber) Transcribe(ctx context.Context, audio []byte, lang string) (string, error) {
	prompt := fmt.Sprintf(
		"Transcribe the speech in this recording verbatim. The speaker is practicing the language %q. "+
			"Reply with the transcript only. If nothing intelligible is said, reply with an empty message.", lang)

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{MIMEType: "audio/wav", Data: audio}},
		},
	}}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, &genai.GenerateContentConfig{})
	if err != nil {
		return "", mapGeminiError(ctx, err)
	}
	return strings.Trim(strings.TrimSpace(result.Text()), `"`), nil
}

func mapGeminiError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return newError(ReasonAborted, err)
	}
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return newError(reasonForStatus(apiErr.Code), err)
	}
	return classifyTransportError(err)
}

func reasonForStatus(code int) Reason {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden,
		code == http.StatusTooManyRequests, code >= 500:
		return ReasonServiceUnavailable
	case code == 0:
		return ReasonNetwork
	default:
		return ReasonUnknown
	}
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return newError(ReasonTimeout, err)
		}
		return newError(ReasonNetwork, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return newError(ReasonNetwork, err)
	}
	return newError(ReasonServiceUnavailable, err)
}

func baseLanguage(lang string) string {
	return strings.ToLower(strings.SplitN(lang, "-", 2)[0])
}

// MockTranscriber returns canned transcripts in FIFO order and records the
// audio it was given.
type MockTranscriber struct {
	mu      sync.Mutex
	results []MockTranscript
	Calls   [][]byte
}

// MockTranscript is one canned result.
type MockTranscript struct {
	Text string
	Err  error
}

// NewMockTranscriber creates a MockTranscriber with the given results.
func NewMockTranscriber(results ...MockTranscript) *MockTranscriber {
	return &MockTranscriber{results: results}
}

// AddResult appends a canned result to the queue.
func (m *MockTranscriber) AddResult(r MockTranscript) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
}

// Transcribe returns the next canned result, or an empty transcript when
// the queue is empty.
func (m *MockTranscriber) Transcribe(_ context.Context, audio []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, audio)
	if len(m.results) == 0 {
		return "", nil
	}
	r := m.results[0]
	m.results = m.results[1:]
	return r.Text, r.Err
}

// CallCount returns the number of Transcribe calls made.
func (m *MockTranscriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
