package speech

import (
	"context"
	"errors"
	"testing"
	"time"
)

// wav returns a fake recording with a header and n bytes of samples.
func wav(n int) []byte {
	return make([]byte, emptyWAV+n)
}

// fakeDevice returns audio immediately, or blocks until the capture context
// ends when block is set.
type fakeDevice struct {
	permErr error
	audio   []byte
	err     error
	block   bool
	started chan struct{}
}

func (d *fakeDevice) CheckPermission(context.Context) error { return d.permErr }

func (d *fakeDevice) Record(ctx context.Context) ([]byte, error) {
	if d.started != nil {
		d.started <- struct{}{}
	}
	if d.block {
		<-ctx.Done()
	}
	return d.audio, d.err
}

type listenResult struct {
	text string
	err  error
}

func listenAsync(r *Recognizer) <-chan listenResult {
	ch := make(chan listenResult, 1)
	go func() {
		text, err := r.Listen(context.Background())
		ch <- listenResult{text, err}
	}()
	return ch
}

func waitResult(t *testing.T, ch <-chan listenResult) listenResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("Listen did not return")
		return listenResult{}
	}
}

func TestRecognizer_Transcribes(t *testing.T) {
	mt := NewMockTranscriber(MockTranscript{Text: "good morning"})
	r := NewRecognizer(&fakeDevice{audio: wav(100)}, mt, "en-US", time.Second)

	text, err := r.Listen(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "good morning" {
		t.Errorf("text = %q", text)
	}
	if mt.CallCount() != 1 || len(mt.Calls[0]) != emptyWAV+100 {
		t.Error("transcriber did not receive the recording")
	}
	if r.Active() {
		t.Error("session still active after Listen returned")
	}
}

func TestRecognizer_PermissionCheckedFirst(t *testing.T) {
	mt := NewMockTranscriber()
	dev := &fakeDevice{permErr: newError(ReasonPermissionDenied, errors.New("denied")), started: make(chan struct{}, 1)}
	r := NewRecognizer(dev, mt, "en-US", time.Second)

	_, err := r.Listen(context.Background())
	if ReasonOf(err) != ReasonPermissionDenied {
		t.Fatalf("reason = %v, want permission-denied", ReasonOf(err))
	}
	if len(dev.started) != 0 {
		t.Error("recording started despite denied permission")
	}
	if mt.CallCount() != 0 {
		t.Error("transcriber called despite denied permission")
	}
}

func TestRecognizer_EmptyAudioIsNoSpeech(t *testing.T) {
	r := NewRecognizer(&fakeDevice{audio: wav(0)}, NewMockTranscriber(), "en-US", time.Second)

	_, err := r.Listen(context.Background())
	if ReasonOf(err) != ReasonNoSpeech {
		t.Errorf("reason = %v, want no-speech", ReasonOf(err))
	}
}

func TestRecognizer_EmptyTranscriptIsNoSpeech(t *testing.T) {
	mt := NewMockTranscriber(MockTranscript{Text: ""})
	r := NewRecognizer(&fakeDevice{audio: wav(10)}, mt, "en-US", time.Second)

	_, err := r.Listen(context.Background())
	if ReasonOf(err) != ReasonNoSpeech {
		t.Errorf("reason = %v, want no-speech", ReasonOf(err))
	}
}

func TestRecognizer_Timeout(t *testing.T) {
	r := NewRecognizer(&fakeDevice{block: true}, NewMockTranscriber(), "en-US", 20*time.Millisecond)

	_, err := r.Listen(context.Background())
	if ReasonOf(err) != ReasonTimeout {
		t.Fatalf("reason = %v, want timeout", ReasonOf(err))
	}
	if !IsSoft(err) {
		t.Error("timeout should be soft")
	}
}

func TestRecognizer_TimeoutWithSpeechIsTranscribed(t *testing.T) {
	mt := NewMockTranscriber(MockTranscript{Text: "hello"})
	r := NewRecognizer(&fakeDevice{block: true, audio: wav(50)}, mt, "en-US", 20*time.Millisecond)

	text, err := r.Listen(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello" {
		t.Errorf("text = %q", text)
	}
}

func TestRecognizer_FinishTranscribes(t *testing.T) {
	dev := &fakeDevice{block: true, audio: wav(50), started: make(chan struct{}, 1)}
	mt := NewMockTranscriber(MockTranscript{Text: "thank you"})
	r := NewRecognizer(dev, mt, "en-US", time.Minute)

	ch := listenAsync(r)
	<-dev.started
	r.Finish()

	res := waitResult(t, ch)
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if res.text != "thank you" {
		t.Errorf("text = %q", res.text)
	}
}

func TestRecognizer_StopAborts(t *testing.T) {
	dev := &fakeDevice{block: true, audio: wav(50), started: make(chan struct{}, 1)}
	mt := NewMockTranscriber(MockTranscript{Text: "unused"})
	r := NewRecognizer(dev, mt, "en-US", time.Minute)

	ch := listenAsync(r)
	<-dev.started
	r.Stop()

	res := waitResult(t, ch)
	if ReasonOf(res.err) != ReasonAborted {
		t.Fatalf("reason = %v, want aborted", ReasonOf(res.err))
	}
	if Message(res.err) != "" {
		t.Errorf("aborted recognition should be silent, got %q", Message(res.err))
	}
	if mt.CallCount() != 0 {
		t.Error("aborted session should not be transcribed")
	}
}

func TestRecognizer_NewListenStopsActiveSession(t *testing.T) {
	dev := &fakeDevice{block: true, audio: wav(50), started: make(chan struct{}, 2)}
	mt := NewMockTranscriber(MockTranscript{Text: "second"})
	r := NewRecognizer(dev, mt, "en-US", time.Minute)

	first := listenAsync(r)
	<-dev.started
	second := listenAsync(r)

	res := waitResult(t, first)
	if ReasonOf(res.err) != ReasonAborted {
		t.Fatalf("first session reason = %v, want aborted", ReasonOf(res.err))
	}

	<-dev.started
	r.Finish()
	res = waitResult(t, second)
	if res.err != nil {
		t.Fatalf("second session error: %v", res.err)
	}
	if res.text != "second" {
		t.Errorf("text = %q", res.text)
	}
}

func TestRecognizer_UnclassifiedTranscriberError(t *testing.T) {
	mt := NewMockTranscriber(MockTranscript{Err: errors.New("boom")})
	r := NewRecognizer(&fakeDevice{audio: wav(10)}, mt, "en-US", time.Second)

	_, err := r.Listen(context.Background())
	if ReasonOf(err) != ReasonServiceUnavailable {
		t.Errorf("reason = %v, want service-unavailable", ReasonOf(err))
	}
}

func TestRecognizer_DeviceErrorPassesThrough(t *testing.T) {
	dev := &fakeDevice{err: newError(ReasonDeviceBusy, errors.New("busy"))}
	r := NewRecognizer(dev, NewMockTranscriber(), "en-US", time.Second)

	_, err := r.Listen(context.Background())
	if ReasonOf(err) != ReasonDeviceBusy {
		t.Errorf("reason = %v, want device-busy", ReasonOf(err))
	}
}
