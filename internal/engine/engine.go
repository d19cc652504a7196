// Package engine drives the tutoring state machine: a fixed set of phases
// wired by pure transition rules, executed one at a time over a session
// state value. Phase actions call the content oracle and the store; the
// transition decisions in decide.go touch neither.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/lernpath/internal/oracle"
	"github.com/abhisek/lernpath/internal/path"
	"github.com/abhisek/lernpath/internal/remediation"
)

// DefaultMaxSteps bounds how many phases one Run may chain without
// pausing. Remediation and re-study loop back through material; a
// misbehaving oracle could keep that loop alive forever.
const DefaultMaxSteps = 50

// GoalStore is the slice of persistence the engine needs.
type GoalStore interface {
	SaveGoal(ctx context.Context, g *path.Goal) error
	SaveUserProfile(ctx context.Context, p *path.UserProfile) error
}

// Config holds engine tuning knobs.
type Config struct {
	// MaxSteps is the Run step ceiling. Zero means DefaultMaxSteps.
	MaxSteps int

	// Now supplies the clock for remediation fallback IDs. Nil means
	// time.Now.
	Now func() time.Time

	// NewID supplies goal ID suffixes. Nil means random UUIDs.
	NewID func() string
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{MaxSteps: DefaultMaxSteps}
}

// Engine executes phases for one session at a time. It is stateless
// between calls and safe for concurrent use across sessions: every step
// works on a clone and the caller's state is only replaced on success.
type Engine struct {
	oracle  oracle.ContentOracle
	goals   GoalStore
	journal *EventLog
	surgery *remediation.Protocol
	cfg     Config
}

// New creates an engine over the given collaborators.
func New(o oracle.ContentOracle, goals GoalStore, journal *EventLog, cfg Config) *Engine {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = func() string { return uuid.NewString()[:8] }
	}
	if journal == nil {
		journal = NewEventLog(nil, nil)
	}
	return &Engine{
		oracle:  o,
		goals:   goals,
		journal: journal,
		surgery: remediation.NewProtocol(o),
		cfg:     cfg,
	}
}

// Step executes exactly one phase action plus its transition decision.
// On success the returned state is the mutated clone with Next set; on
// error the input state is returned unchanged and the error carries the
// phase name.
func (e *Engine) Step(ctx context.Context, state *SessionState, phase Phase) (*SessionState, Outcome, error) {
	if phase == PhaseGoalComplete {
		return state, Outcome{Next: PhaseGoalComplete, Mode: ModeTerminal}, nil
	}

	next := state.Clone()
	if err := e.runAction(ctx, next, phase); err != nil {
		return state, Outcome{}, &ErrPhase{Phase: phase, Err: err}
	}

	out := Decide(phase, next)
	next.Next = out.Next
	return next, out, nil
}

// Run chains Steps from the entry phase until a decision awaits learner
// input or the goal completes. The chain is bounded by MaxSteps; tripping
// the bound fails the whole invocation and leaves the caller's state
// unchanged, like any other phase error.
func (e *Engine) Run(ctx context.Context, state *SessionState, entry Phase) (*SessionState, Outcome, error) {
	current := state
	phase := entry
	var out Outcome

	for step := 0; ; step++ {
		if step >= e.cfg.MaxSteps {
			return state, Outcome{}, &ErrPhase{Phase: phase, Err: &ErrStepLimit{Limit: e.cfg.MaxSteps}}
		}

		var err error
		current, out, err = e.Step(ctx, current, phase)
		if err != nil {
			// The failed step preserved its input, but earlier steps of
			// this run may have committed; hand back the original.
			return state, Outcome{}, err
		}
		if out.Mode != ModeAdvance {
			return current, out, nil
		}
		phase = out.Next
	}
}

// runAction dispatches to the phase's action. Actions mutate the given
// clone and persist what the phase owns; any returned error discards the
// clone.
func (e *Engine) runAction(ctx context.Context, s *SessionState, phase Phase) error {
	switch phase {
	case PhaseGoalCreation:
		return e.createGoal(ctx, s)
	case PhasePriorAssessment:
		return e.generatePriorAssessment(ctx, s)
	case PhasePriorEvaluation:
		return e.evaluatePriorAssessment(ctx, s)
	case PhaseMaterialGeneration:
		return e.generateMaterial(ctx, s)
	case PhaseChatWithTutor:
		return e.chat(ctx, s)
	case PhaseGapDiagnosis:
		return e.diagnoseGap(ctx, s)
	case PhaseRemediationExecution:
		return e.remediate(ctx, s)
	case PhaseTestGeneration:
		return e.generateTest(ctx, s)
	case PhaseTestEvaluation:
		return e.evaluateTest(ctx, s)
	}
	return errUnknownPhase
}
