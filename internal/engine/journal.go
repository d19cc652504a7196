package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/lernpath/internal/store"
)

// journalAppender is the slice of the event repository the journal writes to.
type journalAppender interface {
	AppendLearnEvent(ctx context.Context, e store.LearnEvent) error
}

// EventLog records the learning journal. Recording is fire-and-forget: a
// failed write is logged and dropped, it never blocks or fails a phase.
type EventLog struct {
	repo journalAppender
	log  *zap.Logger
}

// NewEventLog creates a journal writer over the event repository. A nil
// repo yields a no-op journal, which tests and dry runs use.
func NewEventLog(repo journalAppender, log *zap.Logger) *EventLog {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventLog{repo: repo, log: log}
}

// Record appends one journal entry, swallowing any store error.
func (l *EventLog) Record(ctx context.Context, e store.LearnEvent) {
	if l == nil || l.repo == nil {
		return
	}
	if err := l.repo.AppendLearnEvent(ctx, e); err != nil {
		l.log.Warn("journal write dropped",
			zap.String("event_type", e.Type),
			zap.String("goal_id", e.GoalID),
			zap.Error(err))
	}
}
