package speech

import (
	"context"
	"errors"
	"sync"
	"time"
)

// emptyWAV is the size of a WAV header with no samples.
const emptyWAV = 44

var (
	errListenTimeout = errors.New("no speech before timeout")
	errFinished      = errors.New("recording finished")
	errStopped       = errors.New("recognition stopped")
)

// Recognizer runs one recognition session at a time: capture audio from a
// Device, then transcribe it.
type Recognizer struct {
	device      Device
	transcriber Transcriber
	language    string
	timeout     time.Duration

	mu     sync.Mutex
	active *listenSession
	nextID uint64
}

type listenSession struct {
	id     uint64
	cancel context.CancelCauseFunc
}

// NewRecognizer creates a Recognizer. A zero timeout selects 10s.
func NewRecognizer(device Device, transcriber Transcriber, language string, timeout time.Duration) *Recognizer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Recognizer{
		device:      device,
		transcriber: transcriber,
		language:    language,
		timeout:     timeout,
	}
}

// NewRecognizerFromConfig wires a CommandDevice and the configured
// Transcriber.
func NewRecognizerFromConfig(ctx context.Context, cfg Config) (*Recognizer, error) {
	t, err := NewTranscriber(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewRecognizer(NewCommandDevice(cfg.RecordCmd), t, cfg.Language, cfg.Timeout), nil
}

// Listen records one utterance and returns its transcript. Any session
// already running is stopped first and returns ReasonAborted. Recording ends
// on Finish, on Stop, or when the timeout elapses.
func (r *Recognizer) Listen(ctx context.Context) (string, error) {
	if err := r.device.CheckPermission(ctx); err != nil {
		return "", err
	}

	capture, id := r.begin(ctx)
	defer r.end(id)

	audio, err := r.device.Record(capture)
	cause := context.Cause(capture)

	switch {
	case errors.Is(cause, errStopped):
		return "", newError(ReasonAborted, cause)
	case ctx.Err() != nil:
		return "", newError(ReasonAborted, ctx.Err())
	case err != nil:
		return "", err
	}

	if len(audio) <= emptyWAV {
		if errors.Is(cause, errListenTimeout) {
			return "", newError(ReasonTimeout, cause)
		}
		return "", newError(ReasonNoSpeech, nil)
	}

	text, err := r.transcriber.Transcribe(ctx, audio, r.language)
	if err != nil {
		var se *Error
		if !errors.As(err, &se) {
			return "", newError(ReasonServiceUnavailable, err)
		}
		return "", err
	}
	if text == "" {
		return "", newError(ReasonNoSpeech, nil)
	}
	return text, nil
}

// Finish ends the current recording and lets it be transcribed.
func (r *Recognizer) Finish() {
	r.cancelActive(errFinished)
}

// Stop aborts the current session, if any.
func (r *Recognizer) Stop() {
	r.cancelActive(errStopped)
}

// Active reports whether a session is running.
func (r *Recognizer) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

func (r *Recognizer) begin(ctx context.Context) (context.Context, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		r.active.cancel(errStopped)
	}

	capture, cancel := context.WithCancelCause(ctx)
	timer := time.AfterFunc(r.timeout, func() { cancel(errListenTimeout) })

	r.nextID++
	id := r.nextID
	r.active = &listenSession{
		id: id,
		cancel: func(cause error) {
			timer.Stop()
			cancel(cause)
		},
	}
	return capture, id
}

func (r *Recognizer) end(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil && r.active.id == id {
		r.active.cancel(nil)
		r.active = nil
	}
}

func (r *Recognizer) cancelActive(cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		r.active.cancel(cause)
	}
}
