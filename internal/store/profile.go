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

// SaveUserProfile upserts the learner profile document.
func (s *Store) SaveUserProfile(ctx context.Context, p *path.UserProfile) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, doc, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			doc = excluded.doc,
			updated_at = excluded.updated_at`,
		p.UserID, string(doc), time.Now().UnixMilli(),
	)
	if err != nil {
		return &ErrUnavailable{Op: "save profile", Err: err}
	}
	return nil
}

// GetUserProfile loads a learner profile. The second return value reports
// whether a profile existed; a missing profile is not an error, callers
// start from defaults.
func (s *Store) GetUserProfile(ctx context.Context, userID string) (*path.UserProfile, bool, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM profiles WHERE user_id = ?`, userID,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &ErrUnavailable{Op: "get profile", Err: err}
	}

	var p path.UserProfile
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, false, fmt.Errorf("unmarshal profile %s: %w", userID, err)
	}
	return &p, true, nil
}
