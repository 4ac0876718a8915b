package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// snapshotRepo implements SnapshotRepo with ent's SQL builder.
type snapshotRepo struct {
	db *sql.DB
	b  *entsql.DialectBuilder
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("marshal snapshot data: %w", err)
	}

	query, args := r.b.Insert(tableSnapshots).
		Columns("sequence", "timestamp", "data").
		Values(snap.Sequence, snap.Timestamp, string(data)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context) (*Snapshot, error) {
	t := r.b.Table(tableSnapshots)
	query, args := r.b.Select("id", "sequence", "timestamp", "data").From(t).
		OrderBy(entsql.Desc(t.C("timestamp")), entsql.Desc(t.C("id"))).
		Limit(1).
		Query()

	var (
		s   Snapshot
		raw string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.Sequence, &s.Timestamp, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &s.Data); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot data: %w", err)
	}
	return &s, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, keep int) error {
	// Find the threshold: the Nth most recent snapshot.
	t := r.b.Table(tableSnapshots)
	query, args := r.b.Select("id").From(t).
		OrderBy(entsql.Desc(t.C("timestamp")), entsql.Desc(t.C("id"))).
		Offset(keep).
		Limit(1).
		Query()

	var threshold int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // fewer than keep snapshots exist
	}
	if err != nil {
		return fmt.Errorf("query snapshots for prune: %w", err)
	}

	query, args = r.b.Delete(tableSnapshots).
		Where(entsql.LTE("id", threshold)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}
