package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	err := r.insert(ctx, tableSessionEvents,
		[]string{
			"session_id", "action", "lesson_id", "lesson_title", "topic", "attempt_id",
			"cards_total", "cards_correct", "score", "experience_gained", "duration_secs",
		},
		[]any{
			data.SessionID, data.Action, data.LessonID, data.LessonTitle, data.Topic, data.AttemptID,
			data.CardsTotal, data.CardsCorrect, data.Score, data.ExperienceGained, data.DurationSecs,
		},
	)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	err := r.insert(ctx, tableAnswerEvents,
		[]string{
			"session_id", "lesson_id", "card_id", "card_type", "input_mode", "question_text",
			"answer", "precheck", "correct", "status", "attempts", "experience_gained",
		},
		[]any{
			data.SessionID, data.LessonID, data.CardID, data.CardType, data.InputMode, data.QuestionText,
			data.Answer, data.Precheck, data.Correct, data.Status, data.Attempts, data.ExperienceGained,
		},
	)
	if err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryAnswerEvents(ctx context.Context, sessionID string, opts QueryOpts) ([]AnswerEvent, error) {
	t := r.b.Table(tableAnswerEvents)
	s := r.b.Select(
		"id", "sequence", "timestamp",
		"session_id", "lesson_id", "card_id", "card_type", "input_mode", "question_text",
		"answer", "precheck", "correct", "status", "attempts", "experience_gained",
	).From(t)
	if sessionID != "" {
		s = s.Where(entsql.EQ(t.C("session_id"), sessionID))
	}
	s = applyOpts(s, opts)

	query, args := s.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	defer rows.Close()

	var events []AnswerEvent
	for rows.Next() {
		var e AnswerEvent
		err := rows.Scan(
			&e.ID, &e.Sequence, &e.Timestamp,
			&e.SessionID, &e.LessonID, &e.CardID, &e.CardType, &e.InputMode, &e.QuestionText,
			&e.Answer, &e.Precheck, &e.Correct, &e.Status, &e.Attempts, &e.ExperienceGained,
		)
		if err != nil {
			return nil, fmt.Errorf("scan answer event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Oldest first reads naturally when replaying a session.
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

func (r *eventRepo) QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummaryRecord, error) {
	t := r.b.Table(tableSessionEvents)
	s := r.b.Select(
		"sequence", "timestamp",
		"session_id", "action", "lesson_id", "lesson_title", "topic", "attempt_id",
		"cards_total", "cards_correct", "score", "experience_gained", "duration_secs",
	).From(t).Where(entsql.EQ(t.C("action"), SessionEnd))
	s = applyOpts(s, opts)

	query, args := s.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session summaries: %w", err)
	}

	var records []SessionSummaryRecord
	for rows.Next() {
		var rec SessionSummaryRecord
		err := rows.Scan(
			&rec.Sequence, &rec.Timestamp,
			&rec.SessionID, &rec.Action, &rec.LessonID, &rec.LessonTitle, &rec.Topic, &rec.AttemptID,
			&rec.CardsTotal, &rec.CardsCorrect, &rec.Score, &rec.ExperienceGained, &rec.DurationSecs,
		)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan session summary: %w", err)
		}
		records = append(records, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// The answer counts need their own queries; the sqlite store runs on a
	// single connection, so the rows above must be closed first.
	for i := range records {
		n, err := r.countAnswers(ctx, records[i].SessionID)
		if err != nil {
			return nil, err
		}
		records[i].Answers = n
	}
	return records, nil
}

func (r *eventRepo) countAnswers(ctx context.Context, sessionID string) (int, error) {
	t := r.b.Table(tableAnswerEvents)
	query, args := r.b.Select(entsql.Count("*")).From(t).
		Where(entsql.EQ(t.C("session_id"), sessionID)).
		Query()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count answers: %w", err)
	}
	return n, nil
}
