package store

import (
	"context"
	"fmt"
	"time"
)

func (r *eventRepo) AppendLearnEvent(ctx context.Context, e LearnEvent) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO learn_events (
			sequence, timestamp, user_id, goal_id, concept_id,
			event_type, text, affect, discrepancy, score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, ts.UnixMilli(), e.UserID, e.GoalID, e.ConceptID,
		e.Type, e.Text, e.Affect, e.Discrepancy, e.Score,
	)
	if err != nil {
		return &ErrUnavailable{Op: "append learn event", Err: err}
	}
	return nil
}

func (r *eventRepo) QueryLearnEvents(ctx context.Context, opts QueryOpts) ([]LearnEvent, error) {
	query := `SELECT sequence, timestamp, user_id, goal_id, concept_id,
		event_type, text, affect, discrepancy, score
		FROM learn_events WHERE 1=1`
	var args []any

	if opts.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, opts.UserID)
	}
	if opts.GoalID != "" {
		query += ` AND goal_id = ?`
		args = append(args, opts.GoalID)
	}
	if opts.After > 0 {
		query += ` AND sequence > ?`
		args = append(args, opts.After)
	}
	query += ` ORDER BY sequence DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &ErrUnavailable{Op: "query learn events", Err: err}
	}
	defer rows.Close()

	var events []LearnEvent
	for rows.Next() {
		var e LearnEvent
		var ts int64
		if err := rows.Scan(&e.Sequence, &ts, &e.UserID, &e.GoalID, &e.ConceptID,
			&e.Type, &e.Text, &e.Affect, &e.Discrepancy, &e.Score); err != nil {
			return nil, fmt.Errorf("scan learn event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		events = append(events, e)
	}
	return events, rows.Err()
}
