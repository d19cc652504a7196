package engine

import (
	"errors"
	"fmt"

	"github.com/abhisek/lernpath/internal/oracle"
	"github.com/abhisek/lernpath/internal/path"
	"github.com/abhisek/lernpath/internal/store"
)

// ErrPhase wraps any failure inside a phase action with the phase it
// happened in. The caller's session state is unchanged when one is
// returned.
type ErrPhase struct {
	Phase Phase
	Err   error
}

func (e *ErrPhase) Error() string {
	return fmt.Sprintf("phase %s: %v", e.Phase, e.Err)
}

func (e *ErrPhase) Unwrap() error { return e.Err }

// ErrStepLimit indicates a Run exceeded its step ceiling; a misbehaving
// collaborator is driving the machine in circles. Fatal for the step,
// never retried.
type ErrStepLimit struct {
	Limit int
}

func (e *ErrStepLimit) Error() string {
	return fmt.Sprintf("step limit exceeded (%d steps without pausing)", e.Limit)
}

// ErrNoCurrentConcept indicates a phase that needs a current concept was
// entered without one.
type ErrNoCurrentConcept struct {
	Phase Phase
}

func (e *ErrNoCurrentConcept) Error() string {
	return fmt.Sprintf("phase %s requires a current concept", e.Phase)
}

// ErrNoGoal indicates a phase that needs an existing goal was entered
// before goal creation.
type ErrNoGoal struct {
	Phase Phase
}

func (e *ErrNoGoal) Error() string {
	return fmt.Sprintf("phase %s requires an existing goal", e.Phase)
}

// ErrNoQuestions indicates an evaluation phase was entered without
// generated questions to score against.
type ErrNoQuestions struct {
	Phase Phase
}

func (e *ErrNoQuestions) Error() string {
	return fmt.Sprintf("phase %s has no questions to evaluate", e.Phase)
}

// UserMessage renders any engine error as a sentence fit for the learner.
// Fatal paths still produce readable text, never a blank response.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var stepLimit *ErrStepLimit
	if errors.As(err, &stepLimit) {
		return "The session took too many internal steps in a row and was stopped for safety. Your progress is saved; please try again."
	}
	var parseErr *oracle.ErrParse
	if errors.As(err, &parseErr) {
		return "The generated content came back in an unusable form. Nothing was changed; please try again."
	}
	var unavailable *store.ErrUnavailable
	if errors.As(err, &unavailable) {
		return "Saving your progress failed. Nothing was changed; please try again in a moment."
	}
	var dup *path.ErrDuplicateConceptID
	var badTransition *path.ErrInvalidTransition
	if errors.As(err, &dup) || errors.As(err, &badTransition) {
		return "The learning path ended up in an inconsistent shape and the change was rejected. Your previous state is intact."
	}

	var phaseErr *ErrPhase
	if errors.As(err, &phaseErr) {
		return fmt.Sprintf("Something went wrong during %s. Your previous state is intact; please try again.", describePhase(phaseErr.Phase))
	}
	return "Something went wrong. Your previous state is intact; please try again."
}

func describePhase(p Phase) string {
	switch p {
	case PhaseGoalCreation:
		return "goal creation"
	case PhasePriorAssessment, PhasePriorEvaluation:
		return "the prior-knowledge check"
	case PhaseMaterialGeneration:
		return "material generation"
	case PhaseChatWithTutor:
		return "the tutor chat"
	case PhaseGapDiagnosis:
		return "the gap diagnosis"
	case PhaseRemediationExecution:
		return "the path update"
	case PhaseTestGeneration:
		return "test generation"
	case PhaseTestEvaluation:
		return "test evaluation"
	}
	return "this step"
}
