// Package oracle is the content boundary of lernpath. Everything
// non-deterministic about tutoring -- goal decomposition, learning
// material, chat replies, test questions and their grading -- is produced
// behind the ContentOracle interface. The phase engine consumes structured
// values from it and never sees a prompt or a raw model response.
package oracle

import (
	"context"
	"fmt"

	"github.com/abhisek/lernpath/internal/path"
)

// Affect is the learner emotional state the tutor detects in a message.
type Affect string

const (
	AffectNeutral     Affect = "neutral"
	AffectFrustration Affect = "frustration"
	AffectConfusion   Affect = "confusion"
	AffectJoy         Affect = "joy"
)

// Valid reports whether a is one of the defined affect tags.
func (a Affect) Valid() bool {
	switch a {
	case AffectNeutral, AffectFrustration, AffectConfusion, AffectJoy:
		return true
	}
	return false
}

// GoalPlan is the refined goal contract plus the initial concept path.
type GoalPlan struct {
	RefinedGoal   string
	BloomLevel    int
	SuccessMetric string
	Concepts      []path.Concept
}

// Material is generated learning content for one concept.
type Material struct {
	Title   string
	Body    string   // markdown
	Sources []string // URLs backing factual claims, may be empty
}

// ChatReply is a conversational tutor response with the detected affect.
// GapDetected reports that the learner's message names a missing
// prerequisite; the engine turns it into a pending remediation.
type ChatReply struct {
	Text        string
	Affect      Affect
	GapDetected bool
}

// SurgeryPlan is the oracle's proposal for closing a prerequisite gap.
// Only the structured fields drive state changes; Message is surfaced to
// the learner verbatim.
type SurgeryPlan struct {
	Concept    path.Concept // proposed prerequisite; status and source are overridden on insert
	Supersedes []string     // IDs of skipped concepts the new prerequisite underlies
	Message    string
}

// PriorResult is the outcome of evaluating a prior-knowledge assessment.
type PriorResult struct {
	MasteredIDs []string // concept IDs the learner already commands
	Feedback    string
}

// ContentOracle produces all generated tutoring content. Implementations
// must be safe for use by one session at a time; the engine never issues
// concurrent calls for the same session.
type ContentOracle interface {
	// GenerateGoalPath turns free-form goal text into a goal contract and
	// an ordered concept path.
	GenerateGoalPath(ctx context.Context, goalText string, profile path.UserProfile) (*GoalPlan, error)

	// GeneratePriorAssessment produces questions spanning the whole path to
	// find out what the learner already knows.
	GeneratePriorAssessment(ctx context.Context, goal *path.Goal, profile path.UserProfile) ([]path.Question, error)

	// EvaluatePriorAssessment decides which concepts the answers prove mastered.
	EvaluatePriorAssessment(ctx context.Context, goal *path.Goal, questions []path.Question, answers map[string]string, profile path.UserProfile) (*PriorResult, error)

	// GenerateMaterial produces learning material for one concept,
	// optionally informed by feedback from a failed test.
	GenerateMaterial(ctx context.Context, concept path.Concept, profile path.UserProfile, failureFeedback string) (*Material, error)

	// Chat answers a learner message about the current concept.
	Chat(ctx context.Context, concept path.Concept, profile path.UserProfile, message string) (*ChatReply, error)

	// DiagnoseGap opens the diagnostic dialogue after the learner signals
	// a missing prerequisite.
	DiagnoseGap(ctx context.Context, concept path.Concept, profile path.UserProfile) (string, error)

	// PerformSurgery proposes the prerequisite concept to insert for the
	// named gap, given the current path.
	PerformSurgery(ctx context.Context, missingName string, concepts []path.Concept) (*SurgeryPlan, error)

	// GenerateTest produces comprehension questions for one concept at its
	// required Bloom level.
	GenerateTest(ctx context.Context, concept path.Concept, profile path.UserProfile) ([]path.Question, error)

	// EvaluateTest scores the learner's answers. Implementations return the
	// raw score; pass/fail derivation belongs to path.Scored.
	EvaluateTest(ctx context.Context, concept path.Concept, questions []path.Question, answers map[string]string, profile path.UserProfile) (*path.TestResult, error)
}

// ErrParse indicates the oracle's response did not match the expected
// structured shape. Callers with a deterministic fallback (remediation,
// test generation, test evaluation) catch this; everywhere else it fails
// the phase.
type ErrParse struct {
	Op  string
	Err error
}

func (e *ErrParse) Error() string {
	return fmt.Sprintf("oracle %s: unusable response: %v", e.Op, e.Err)
}

func (e *ErrParse) Unwrap() error { return e.Err }
