package card

import (
	sess "github.com/abhisek/lingo/internal/session"
)

// answerSentMsg is sent when the backend has answered a submission.
type answerSentMsg struct {
	Verdict *sess.Verdict
	Option  int
	Err     error
}

// transcriptMsg is sent when a recognition session ends.
type transcriptMsg struct {
	Text string
	Err  error
}

// advancedMsg is sent after moving past a correct card.
type advancedMsg struct {
	More bool
	Err  error
}

// playedMsg is sent when prompt playback ends.
type playedMsg struct {
	Err error
}

// finishedMsg is sent when a retried completion ends.
type finishedMsg struct {
	Summary *sess.Summary
	Err     error
}
