package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int    // max results, newest first (0 = unlimited)
	After   int64  // sequence > After
	UserID  string // filter by user (learn events only)
	GoalID  string // filter by goal (learn events only)
	Purpose string // filter by purpose (LLM events only)
}

// Learn event types recorded by the phase engine.
const (
	EventGoalCreated      = "goal_created"
	EventAssessmentIssued = "assessment_issued"
	EventAssessmentScored = "assessment_scored"
	EventMaterialShown    = "material_presented"
	EventLearnerMessage   = "learner_message"
	EventTutorReply       = "tutor_reply"
	EventGapReported      = "gap_reported"
	EventRemediation      = "remediation"
	EventTestIssued       = "test_generated"
	EventTestScored       = "test_evaluated"
	EventGoalCompleted    = "goal_completed"
)

// LearnEvent is one entry in the learning journal: something that happened
// in a learner's session, with optional affect and score annotations.
type LearnEvent struct {
	Sequence    int64     `json:"sequence"`
	Timestamp   time.Time `json:"timestamp"`
	UserID      string    `json:"userId,omitempty"`
	GoalID      string    `json:"goalId,omitempty"`
	ConceptID   string    `json:"conceptId,omitempty"`
	Type        string    `json:"type"`
	Text        string    `json:"text,omitempty"`
	Affect      string    `json:"affect,omitempty"`
	Discrepancy string    `json:"discrepancy,omitempty"`
	Score       *int      `json:"score,omitempty"`
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a recorded LLM request/response pair.
type LLMEvent struct {
	ID           int64
	Timestamp    time.Time
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMUsage aggregates token usage for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to the event journal.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns a single LLM event by ID, or nil if not found.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates token usage grouped by purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates token usage grouped by model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)

	// AppendLearnEvent records a learning journal entry.
	AppendLearnEvent(ctx context.Context, e LearnEvent) error

	// QueryLearnEvents returns learning journal entries, newest first.
	QueryLearnEvents(ctx context.Context, opts QueryOpts) ([]LearnEvent, error)
}
