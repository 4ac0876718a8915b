package cards

// Status is the per-card mastery code reported by the backend.
type Status int

const (
	StatusFailed   Status = 0
	StatusPartial  Status = 3
	StatusMastered Status = 5
)

// Color names used by the backend for each status.
const (
	ColorRed    = "red"
	ColorYellow = "yellow"
	ColorGreen  = "green"
)

// Normalize maps unknown codes to StatusFailed.
func (s Status) Normalize() Status {
	switch s {
	case StatusPartial, StatusMastered:
		return s
	default:
		return StatusFailed
	}
}

// Color returns the presentation color for the status.
func (s Status) Color() string {
	switch s {
	case StatusPartial:
		return ColorYellow
	case StatusMastered:
		return ColorGreen
	default:
		return ColorRed
	}
}

func (s Status) String() string {
	switch s {
	case StatusPartial:
		return "partial"
	case StatusMastered:
		return "mastered"
	default:
		return "failed"
	}
}

// Label returns the status label for a card, taking attempts into account
// so that a never-answered card reads as unattempted.
func Label(s Status, attempts int) string {
	if attempts == 0 && s.Normalize() == StatusFailed {
		return "unattempted"
	}
	return s.Normalize().String()
}
