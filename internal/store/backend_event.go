package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var backendEventFields = []string{
	"id", "sequence", "timestamp",
	"operation", "method", "path", "request_id", "status_code",
	"latency_ms", "success", "error_message", "request_body", "response_body",
}

func (r *eventRepo) AppendBackendCall(ctx context.Context, data BackendCallData) error {
	err := r.insert(ctx, tableBackendEvents,
		[]string{
			"operation", "method", "path", "request_id", "status_code",
			"latency_ms", "success", "error_message", "request_body", "response_body",
		},
		[]any{
			data.Operation, data.Method, data.Path, data.RequestID, data.StatusCode,
			data.LatencyMs, data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody,
		},
	)
	if err != nil {
		return fmt.Errorf("save backend call event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryBackendCalls(ctx context.Context, opts QueryOpts) ([]BackendCallEvent, error) {
	t := r.b.Table(tableBackendEvents)
	s := applyOpts(r.b.Select(backendEventFields...).From(t), opts)

	query, args := s.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query backend calls: %w", err)
	}
	defer rows.Close()

	var events []BackendCallEvent
	for rows.Next() {
		e, err := scanBackendCall(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backend call: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *eventRepo) GetBackendCall(ctx context.Context, id int) (*BackendCallEvent, error) {
	t := r.b.Table(tableBackendEvents)
	s := r.b.Select(backendEventFields...).From(t).Where(entsql.EQ(t.C("id"), id))

	query, args := s.Query()
	e, err := scanBackendCall(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backend call %d: %w", id, err)
	}
	return e, nil
}

func (r *eventRepo) BackendCallStats(ctx context.Context) ([]BackendCallStat, error) {
	t := r.b.Table(tableBackendEvents)
	s := r.b.Select(
		t.C("operation"),
		t.C("success"),
		entsql.Count("*"),
		entsql.Sum(t.C("latency_ms")),
	).From(t).
		GroupBy(t.C("operation"), t.C("success")).
		OrderBy(t.C("operation"))

	query, args := s.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query backend call stats: %w", err)
	}
	defer rows.Close()

	var (
		stats   []BackendCallStat
		latency []float64
	)
	for rows.Next() {
		var (
			op      string
			success bool
			calls   int
			sum     sql.NullFloat64
		)
		if err := rows.Scan(&op, &success, &calls, &sum); err != nil {
			return nil, fmt.Errorf("scan backend call stats: %w", err)
		}
		if n := len(stats); n == 0 || stats[n-1].Operation != op {
			stats = append(stats, BackendCallStat{Operation: op})
			latency = append(latency, 0)
		}
		st := &stats[len(stats)-1]
		st.Calls += calls
		if !success {
			st.Failures += calls
		}
		latency[len(latency)-1] += sum.Float64
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range stats {
		if stats[i].Calls > 0 {
			stats[i].AvgLatencyMs = int64(latency[i] / float64(stats[i].Calls))
		}
	}
	return stats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBackendCall(row scanner) (*BackendCallEvent, error) {
	var e BackendCallEvent
	err := row.Scan(
		&e.ID, &e.Sequence, &e.Timestamp,
		&e.Operation, &e.Method, &e.Path, &e.RequestID, &e.StatusCode,
		&e.LatencyMs, &e.Success, &e.ErrorMessage, &e.RequestBody, &e.ResponseBody,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
