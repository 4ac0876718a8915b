package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo with ent's SQL builder and the global
// sequence counter.
type eventRepo struct {
	db  *sql.DB
	b   *entsql.DialectBuilder
	seq *sequenceCounter
}

// insert appends one row stamped with the next global sequence.
func (r *eventRepo) insert(ctx context.Context, table string, cols []string, vals []any) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	cols = append([]string{"sequence", "timestamp"}, cols...)
	vals = append([]any{seqNum, time.Now().UTC()}, vals...)

	query, args := r.b.Insert(table).Columns(cols...).Values(vals...).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return nil
}

// applyOpts narrows and orders an event selector, newest first.
func applyOpts(s *entsql.Selector, opts QueryOpts) *entsql.Selector {
	if opts.After > 0 {
		s = s.Where(entsql.GT(s.C("sequence"), opts.After))
	}
	if opts.Before > 0 {
		s = s.Where(entsql.LT(s.C("sequence"), opts.Before))
	}
	if !opts.From.IsZero() {
		s = s.Where(entsql.GTE(s.C("timestamp"), opts.From))
	}
	if !opts.To.IsZero() {
		s = s.Where(entsql.LTE(s.C("timestamp"), opts.To))
	}
	s = s.OrderBy(entsql.Desc(s.C("sequence")))
	if opts.Limit > 0 {
		s = s.Limit(opts.Limit)
	}
	return s
}
