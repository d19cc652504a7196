package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/lernpath/internal/path"
)

// SaveGoal upserts the whole goal document in a single statement.
// The path and any current-position bookkeeping inside it are replaced
// together, so a reader never observes a half-applied surgery.
func (s *Store) SaveGoal(ctx context.Context, g *path.Goal) error {
	doc, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal goal: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO goals (goal_id, user_id, status, doc, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (goal_id) DO UPDATE SET
			user_id = excluded.user_id,
			status = excluded.status,
			doc = excluded.doc,
			updated_at = excluded.updated_at`,
		g.GoalID, g.UserID, string(g.Status), string(doc), time.Now().UnixMilli(),
	)
	if err != nil {
		return &ErrUnavailable{Op: "save goal", Err: err}
	}
	return nil
}

// GetGoal loads a goal document by ID.
func (s *Store) GetGoal(ctx context.Context, goalID string) (*path.Goal, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM goals WHERE goal_id = ?`, goalID,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &ErrGoalNotFound{GoalID: goalID}
	}
	if err != nil {
		return nil, &ErrUnavailable{Op: "get goal", Err: err}
	}

	var g path.Goal
	if err := json.Unmarshal([]byte(doc), &g); err != nil {
		return nil, fmt.Errorf("unmarshal goal %s: %w", goalID, err)
	}
	return &g, nil
}

// ListGoals returns all goals for a user, most recently updated first.
func (s *Store) ListGoals(ctx context.Context, userID string) ([]*path.Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM goals WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, &ErrUnavailable{Op: "list goals", Err: err}
	}
	defer rows.Close()

	var goals []*path.Goal
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan goal row: %w", err)
		}
		var g path.Goal
		if err := json.Unmarshal([]byte(doc), &g); err != nil {
			return nil, fmt.Errorf("unmarshal goal: %w", err)
		}
		goals = append(goals, &g)
	}
	return goals, rows.Err()
}

// UpdateConceptStatus changes one concept's status inside a goal's path.
// The change is validated against the status lifecycle; writing the same
// status a concept already has is a no-op. The read-modify-write runs in
// an immediate transaction so concurrent writers serialize.
func (s *Store) UpdateConceptStatus(ctx context.Context, goalID, conceptID string, status path.Status) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &ErrUnavailable{Op: "begin update status", Err: err}
	}
	defer tx.Rollback()

	var doc string
	err = tx.QueryRowContext(ctx,
		`SELECT doc FROM goals WHERE goal_id = ?`, goalID,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return &ErrGoalNotFound{GoalID: goalID}
	}
	if err != nil {
		return &ErrUnavailable{Op: "read goal for status update", Err: err}
	}

	var g path.Goal
	if err := json.Unmarshal([]byte(doc), &g); err != nil {
		return fmt.Errorf("unmarshal goal %s: %w", goalID, err)
	}

	idx := path.FindByID(g.Path, conceptID)
	if idx == -1 {
		return &path.ErrConceptNotFound{ID: conceptID}
	}
	if g.Path[idx].Status == status {
		return nil
	}
	if err := path.ValidateTransition(g.Path[idx], status); err != nil {
		return err
	}
	g.Path[idx].Status = status

	updated, err := json.Marshal(&g)
	if err != nil {
		return fmt.Errorf("marshal goal: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE goals SET doc = ?, updated_at = ? WHERE goal_id = ?`,
		string(updated), time.Now().UnixMilli(), goalID)
	if err != nil {
		return &ErrUnavailable{Op: "write status update", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &ErrUnavailable{Op: "commit status update", Err: err}
	}
	return nil
}
