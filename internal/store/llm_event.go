package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// eventRepo implements EventRepo over raw SQL and the shared sequence
// allocator.
type eventRepo struct {
	db  *sql.DB
	seq *seqAllocator
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO llm_events (
			sequence, timestamp, provider, model, purpose,
			input_tokens, output_tokens, latency_ms, success,
			error_message, request_body, response_body
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UnixMilli(), data.Provider, data.Model, data.Purpose,
		data.InputTokens, data.OutputTokens, data.LatencyMs, boolToInt(data.Success),
		data.ErrorMessage, data.RequestBody, data.ResponseBody,
	)
	if err != nil {
		return &ErrUnavailable{Op: "append llm event", Err: err}
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	query := `SELECT sequence, timestamp, provider, model, purpose,
		input_tokens, output_tokens, latency_ms, success,
		error_message, request_body, response_body
		FROM llm_events`
	var args []any

	if opts.Purpose != "" {
		query += ` WHERE purpose = ?`
		args = append(args, opts.Purpose)
	}
	query += ` ORDER BY sequence DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &ErrUnavailable{Op: "query llm events", Err: err}
	}
	defer rows.Close()

	var events []LLMEvent
	for rows.Next() {
		e, err := scanLLMEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT sequence, timestamp, provider, model, purpose,
			input_tokens, output_tokens, latency_ms, success,
			error_message, request_body, response_body
		FROM llm_events WHERE sequence = ?`, id)

	e, err := scanLLMEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT purpose, COUNT(*), COALESCE(SUM(input_tokens), 0),
			COALESCE(SUM(output_tokens), 0), COALESCE(CAST(AVG(latency_ms) AS INTEGER), 0)
		FROM llm_events GROUP BY purpose ORDER BY purpose`)
	if err != nil {
		return nil, &ErrUnavailable{Op: "llm usage by purpose", Err: err}
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var u LLMUsage
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT model, COUNT(*), COALESCE(SUM(input_tokens), 0),
			COALESCE(SUM(output_tokens), 0), COALESCE(CAST(AVG(latency_ms) AS INTEGER), 0)
		FROM llm_events GROUP BY model ORDER BY model`)
	if err != nil {
		return nil, &ErrUnavailable{Op: "llm usage by model", Err: err}
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var u LLMUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan code.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLLMEvent(row rowScanner) (LLMEvent, error) {
	var e LLMEvent
	var ts int64
	var success int
	err := row.Scan(&e.ID, &ts, &e.Provider, &e.Model, &e.Purpose,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &success,
		&e.ErrorMessage, &e.RequestBody, &e.ResponseBody)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scan llm event: %w", err)
	}
	e.Timestamp = time.UnixMilli(ts)
	e.Success = success != 0
	return e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
