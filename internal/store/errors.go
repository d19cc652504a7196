package store

import "fmt"

// ErrUnavailable indicates the database could not serve an operation.
// The core never retries these; retry policy belongs to callers that own
// the connection lifecycle.
type ErrUnavailable struct {
	Op  string
	Err error
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("store unavailable (%s): %v", e.Op, e.Err)
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// ErrGoalNotFound indicates no goal document exists for the given ID.
type ErrGoalNotFound struct {
	GoalID string
}

func (e *ErrGoalNotFound) Error() string {
	return fmt.Sprintf("goal %q not found", e.GoalID)
}
