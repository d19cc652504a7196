package engine

// Mode says what the engine does after a phase action succeeds.
type Mode int

const (
	// ModeAdvance continues into the next phase within the same Run.
	ModeAdvance Mode = iota

	// ModeAwait stops the run; the next phase needs learner input first.
	ModeAwait

	// ModeTerminal stops the run for good; the goal is complete.
	ModeTerminal
)

// Outcome is a transition decision: which phase comes next and whether the
// engine keeps going.
type Outcome struct {
	Next Phase
	Mode Mode
}

// Decide returns the transition out of a phase for the given state. It is a
// pure, total function: no oracle, no store, no clock; only the phase
// actions touch collaborators.
func Decide(phase Phase, s *SessionState) Outcome {
	switch phase {
	case PhaseGoalCreation:
		if s.Profile.AssessmentEnabled {
			return Outcome{Next: PhasePriorAssessment, Mode: ModeAdvance}
		}
		return Outcome{Next: PhaseMaterialGeneration, Mode: ModeAdvance}

	case PhasePriorAssessment:
		return Outcome{Next: PhasePriorEvaluation, Mode: ModeAwait}

	case PhasePriorEvaluation:
		// The assessment may prove the whole path known.
		if s.CurrentID == "" {
			return Outcome{Next: PhaseGoalComplete, Mode: ModeTerminal}
		}
		return Outcome{Next: PhaseMaterialGeneration, Mode: ModeAdvance}

	case PhaseMaterialGeneration:
		return Outcome{Next: PhaseChatWithTutor, Mode: ModeAdvance}

	case PhaseChatWithTutor:
		if s.RemediationPending {
			return Outcome{Next: PhaseGapDiagnosis, Mode: ModeAdvance}
		}
		// The learner keeps chatting or requests the test; either way the
		// next step needs their input.
		return Outcome{Next: PhaseTestGeneration, Mode: ModeAwait}

	case PhaseGapDiagnosis:
		return Outcome{Next: PhaseRemediationExecution, Mode: ModeAdvance}

	case PhaseRemediationExecution:
		return Outcome{Next: PhaseMaterialGeneration, Mode: ModeAdvance}

	case PhaseTestGeneration:
		return Outcome{Next: PhaseTestEvaluation, Mode: ModeAwait}

	case PhaseTestEvaluation:
		if s.TestPassed != nil && *s.TestPassed {
			if s.CurrentID == "" {
				return Outcome{Next: PhaseGoalComplete, Mode: ModeTerminal}
			}
			return Outcome{Next: PhaseMaterialGeneration, Mode: ModeAdvance}
		}
		// Failed: re-study the unchanged current concept.
		return Outcome{Next: PhaseMaterialGeneration, Mode: ModeAdvance}

	case PhaseGoalComplete:
		return Outcome{Next: PhaseGoalComplete, Mode: ModeTerminal}
	}

	return Outcome{Next: phase, Mode: ModeTerminal}
}
