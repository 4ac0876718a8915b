package session

import "time"

// Summary holds the data displayed when a lesson attempt is finished.
type Summary struct {
	LessonID    int
	LessonTitle string
	Topic       string

	// Score is the backend's score, nil when it did not compute one.
	Score        *int
	CorrectCards int
	TotalCards   int

	// Answers counts every submission, wrong ones included.
	Answers          int
	CorrectAnswers   int
	ExperienceGained int
	TotalExperience  int
	Level            int
	Duration         time.Duration
}

// Accuracy is the share of submissions the backend accepted.
func (s *Summary) Accuracy() float64 {
	if s.Answers == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.Answers)
}
