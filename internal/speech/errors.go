package speech

import (
	"errors"
	"fmt"
)

// Reason classifies why a recognition attempt failed.
type Reason int

const (
	ReasonUnknown Reason = iota
	ReasonPermissionDenied
	ReasonNoDevice
	ReasonDeviceBusy
	ReasonNoSpeech
	ReasonTimeout
	ReasonNetwork
	ReasonServiceUnavailable
	ReasonAborted
)

func (r Reason) String() string {
	switch r {
	case ReasonPermissionDenied:
		return "permission-denied"
	case ReasonNoDevice:
		return "no-device"
	case ReasonDeviceBusy:
		return "device-busy"
	case ReasonNoSpeech:
		return "no-speech"
	case ReasonTimeout:
		return "timeout"
	case ReasonNetwork:
		return "network"
	case ReasonServiceUnavailable:
		return "service-unavailable"
	case ReasonAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Error is a classified speech failure.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("speech %s: %v", e.Reason, e.Err)
	}
	return "speech " + e.Reason.String()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(r Reason, err error) *Error {
	return &Error{Reason: r, Err: err}
}

// ReasonOf returns the classified reason of err, or ReasonUnknown.
func ReasonOf(err error) Reason {
	var se *Error
	if errors.As(err, &se) {
		return se.Reason
	}
	return ReasonUnknown
}

// Message returns the remediation shown to the learner for err. Aborted
// recognition is silent and returns "".
func Message(err error) string {
	if err == nil {
		return ""
	}
	switch ReasonOf(err) {
	case ReasonAborted:
		return ""
	case ReasonPermissionDenied:
		return "Microphone access is denied. Allow this terminal to use the microphone and try again."
	case ReasonNoDevice:
		return "No microphone found. Check that one is connected and that the recorder command is installed."
	case ReasonDeviceBusy:
		return "The microphone is in use by another application. Close it and try again."
	case ReasonNoSpeech:
		return "No speech was recognized. Speak louder and wait a moment after starting the recording."
	case ReasonTimeout:
		return "Listening timed out. Press the record key and try again."
	case ReasonNetwork:
		return "Network error. Check your internet connection."
	case ReasonServiceUnavailable:
		return "The speech recognition service is unavailable. Try again later."
	default:
		return "Recognition failed. Please try again."
	}
}

// IsSoft reports whether err is an expected outcome that needs no alert,
// only a prompt to try again.
func IsSoft(err error) bool {
	switch ReasonOf(err) {
	case ReasonTimeout, ReasonAborted:
		return true
	}
	return false
}
