package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// SessionRecord is a frozen learning session: which phase the learner was
// in and the serialized engine state needed to resume there. One record
// per (user, goal); saving again overwrites the previous snapshot.
type SessionRecord struct {
	UserID  string          `json:"user_id"`
	GoalID  string          `json:"goal_id"`
	Name    string          `json:"name"`
	Phase   string          `json:"phase"`
	SavedAt time.Time       `json:"saved_at"`
	State   json.RawMessage `json:"state"`
}

// SaveSession upserts a session snapshot.
func (s *Store) SaveSession(ctx context.Context, rec *SessionRecord) error {
	savedAt := rec.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (user_id, goal_id, name, phase, state, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, goal_id) DO UPDATE SET
			name = excluded.name,
			phase = excluded.phase,
			state = excluded.state,
			saved_at = excluded.saved_at`,
		rec.UserID, rec.GoalID, rec.Name, rec.Phase, string(rec.State), savedAt.UnixMilli(),
	)
	if err != nil {
		return &ErrUnavailable{Op: "save session", Err: err}
	}
	return nil
}

// GetSession loads the saved session for a (user, goal) pair. The second
// return value reports whether a snapshot existed.
func (s *Store) GetSession(ctx context.Context, userID, goalID string) (*SessionRecord, bool, error) {
	var (
		rec     SessionRecord
		state   string
		savedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, goal_id, name, phase, state, saved_at
		FROM sessions WHERE user_id = ? AND goal_id = ?`,
		userID, goalID,
	).Scan(&rec.UserID, &rec.GoalID, &rec.Name, &rec.Phase, &state, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &ErrUnavailable{Op: "get session", Err: err}
	}
	rec.State = json.RawMessage(state)
	rec.SavedAt = time.UnixMilli(savedAt)
	return &rec, true, nil
}

// ListSessions returns all saved sessions for a user, newest first.
// The State payload is included so callers can resume without a second read.
func (s *Store) ListSessions(ctx context.Context, userID string) ([]*SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, goal_id, name, phase, state, saved_at
		FROM sessions WHERE user_id = ? ORDER BY saved_at DESC`, userID)
	if err != nil {
		return nil, &ErrUnavailable{Op: "list sessions", Err: err}
	}
	defer rows.Close()

	var recs []*SessionRecord
	for rows.Next() {
		var (
			rec     SessionRecord
			state   string
			savedAt int64
		)
		if err := rows.Scan(&rec.UserID, &rec.GoalID, &rec.Name, &rec.Phase, &state, &savedAt); err != nil {
			return nil, &ErrUnavailable{Op: "scan session", Err: err}
		}
		rec.State = json.RawMessage(state)
		rec.SavedAt = time.UnixMilli(savedAt)
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

// DeleteSession removes a saved session. Deleting a session that does not
// exist is a no-op.
func (s *Store) DeleteSession(ctx context.Context, userID, goalID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE user_id = ? AND goal_id = ?`, userID, goalID)
	if err != nil {
		return &ErrUnavailable{Op: "delete session", Err: err}
	}
	return nil
}
