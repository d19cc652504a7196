package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// seqAllocator hands out the monotonic sequence numbers shared by the
// learn_events and llm_events tables. Per-table auto-increment IDs cannot
// order events across tables, so every event draws from this single counter
// instead. That gives the journal one total order (was the path surgery
// before or after that LLM call?) and keeps it append-only.
//
// The mutex serializes allocation within the process; the RETURNING clause
// makes the increment atomic at the database level.
type seqAllocator struct {
	mu sync.Mutex
	db *sql.DB
}

// newSeqAllocator creates the counter, materializing its single-row
// tracking table on first use.
func newSeqAllocator(db *sql.DB) (*seqAllocator, error) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS event_sequence (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			next_seq INTEGER NOT NULL DEFAULT 1
		)`,
		`INSERT OR IGNORE INTO event_sequence (id, next_seq) VALUES (1, 1)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("init event sequence: %w", err)
		}
	}
	return &seqAllocator{db: db}, nil
}

// Next returns the next sequence number, atomically advancing the counter.
func (a *seqAllocator) Next(ctx context.Context) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var seq int64
	err := a.db.QueryRowContext(ctx,
		`UPDATE event_sequence SET next_seq = next_seq + 1 WHERE id = 1 RETURNING next_seq - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
