package engine

import "fmt"

// Phase identifies one step of the tutoring state machine. The engine
// executes exactly one phase action per step and the transition rules in
// decide.go pick the next one.
type Phase int

const (
	// PhaseGoalCreation turns the learner's free-form goal into a goal
	// contract and an initial concept path.
	PhaseGoalCreation Phase = iota

	// PhasePriorAssessment issues questions spanning the whole path to find
	// out what the learner already knows.
	PhasePriorAssessment

	// PhasePriorEvaluation scores the assessment and skips proven concepts.
	PhasePriorEvaluation

	// PhaseMaterialGeneration produces learning material for the current
	// concept and marks it active.
	PhaseMaterialGeneration

	// PhaseChatWithTutor answers one learner message about the current
	// concept.
	PhaseChatWithTutor

	// PhaseGapDiagnosis opens the diagnostic dialogue after a reported
	// prerequisite gap.
	PhaseGapDiagnosis

	// PhaseRemediationExecution performs path surgery for the named gap.
	PhaseRemediationExecution

	// PhaseTestGeneration produces comprehension questions for the current
	// concept.
	PhaseTestGeneration

	// PhaseTestEvaluation scores the learner's answers and advances or
	// re-queues the concept.
	PhaseTestEvaluation

	// PhaseGoalComplete is terminal: every concept of the path is done.
	PhaseGoalComplete
)

var phaseNames = map[Phase]string{
	PhaseGoalCreation:         "goal_creation",
	PhasePriorAssessment:      "prior_assessment",
	PhasePriorEvaluation:      "prior_evaluation",
	PhaseMaterialGeneration:   "material_generation",
	PhaseChatWithTutor:        "chat_with_tutor",
	PhaseGapDiagnosis:         "gap_diagnosis",
	PhaseRemediationExecution: "remediation_execution",
	PhaseTestGeneration:       "test_generation",
	PhaseTestEvaluation:       "test_evaluation",
	PhaseGoalComplete:         "goal_complete",
}

// String returns the stable snake_case name used in journals and saved
// sessions.
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// ParsePhase converts a stored phase name back into a Phase.
func ParsePhase(name string) (Phase, error) {
	for p, n := range phaseNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", name)
}
