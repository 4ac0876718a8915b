package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Device captures audio from the learner.
type Device interface {
	// CheckPermission reports whether the device can be used at all,
	// before any recording starts.
	CheckPermission(ctx context.Context) error

	// Record captures audio until ctx is done or the source ends, and
	// returns what was captured. Ending because ctx is done is not an
	// error.
	Record(ctx context.Context) ([]byte, error)
}

// CommandDevice records by running an external capture command that
// writes WAV audio to stdout (arecord, sox, ffmpeg).
type CommandDevice struct {
	Args []string

	// StopGrace is how long the command gets to flush after an interrupt
	// before it is killed. Default: 500ms.
	StopGrace time.Duration
}

// NewCommandDevice creates a CommandDevice from a whitespace-separated
// command line.
func NewCommandDevice(cmdline string) *CommandDevice {
	return &CommandDevice{Args: strings.Fields(cmdline), StopGrace: 500 * time.Millisecond}
}

func (d *CommandDevice) CheckPermission(_ context.Context) error {
	if len(d.Args) == 0 {
		return newError(ReasonNoDevice, errors.New("no record command configured"))
	}
	if _, err := exec.LookPath(d.Args[0]); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return newError(ReasonPermissionDenied, err)
		}
		return newError(ReasonNoDevice, err)
	}
	return nil
}

func (d *CommandDevice) Record(ctx context.Context) ([]byte, error) {
	if err := d.CheckPermission(ctx); err != nil {
		return nil, err
	}

	grace := d.StopGrace
	if grace <= 0 {
		grace = 500 * time.Millisecond
	}

	cmd := exec.Command(d.Args[0], d.Args[1:]...)
	cmd.WaitDelay = grace
	var (
		stdout lockedBuffer
		stderr bytes.Buffer
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, classifyRecordError(err, "")
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return stdout.Bytes(), classifyRecordError(err, stderr.String())
		}
		return stdout.Bytes(), nil
	case <-ctx.Done():
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(grace):
			_ = cmd.Process.Kill()
			<-done
		}
		return stdout.Bytes(), nil
	}
}

// classifyRecordError maps capture failures to speech reasons using the
// messages ALSA and PulseAudio tools print.
func classifyRecordError(err error, stderr string) error {
	msg := strings.ToLower(stderr)
	switch {
	case errors.Is(err, exec.ErrNotFound):
		return newError(ReasonNoDevice, err)
	case errors.Is(err, fs.ErrPermission), strings.Contains(msg, "permission denied"):
		return newError(ReasonPermissionDenied, wrapStderr(err, stderr))
	case strings.Contains(msg, "busy"):
		return newError(ReasonDeviceBusy, wrapStderr(err, stderr))
	case strings.Contains(msg, "no such file"), strings.Contains(msg, "no soundcards"),
		strings.Contains(msg, "no such device"), strings.Contains(msg, "connection refused"):
		return newError(ReasonNoDevice, wrapStderr(err, stderr))
	default:
		return newError(ReasonUnknown, wrapStderr(err, stderr))
	}
}

func wrapStderr(err error, stderr string) error {
	s := strings.TrimSpace(stderr)
	if s == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, s)
}

// lockedBuffer is a bytes.Buffer safe for the exec copy goroutine and a
// concurrent reader.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, b.buf.Len())
	copy(out, b.buf.Bytes())
	return out
}

// FileDevice replays a recorded audio file as if it had been captured.
type FileDevice struct {
	Path string
}

func (d *FileDevice) CheckPermission(_ context.Context) error {
	f, err := os.Open(d.Path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return newError(ReasonPermissionDenied, err)
		}
		return newError(ReasonNoDevice, err)
	}
	return f.Close()
}

func (d *FileDevice) Record(ctx context.Context) ([]byte, error) {
	if err := d.CheckPermission(ctx); err != nil {
		return nil, err
	}
	f, err := os.Open(d.Path)
	if err != nil {
		return nil, newError(ReasonNoDevice, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, newError(ReasonUnknown, err)
	}
	return data, nil
}
