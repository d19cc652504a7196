package engine

import (
	"github.com/abhisek/lernpath/internal/oracle"
	"github.com/abhisek/lernpath/internal/path"
)

// SessionState is the value threaded through the engine: everything one
// learner session carries between phases. States are passed by value into
// each step and the mutated clone is returned; concurrent sessions never
// share one.
type SessionState struct {
	UserID string `json:"userId"`

	// Goal owns the concept path. Nil until goal creation has run.
	Goal *path.Goal `json:"goal,omitempty"`

	// CurrentID is the concept the learner is positioned on, "" when the
	// goal is complete or not yet created.
	CurrentID string `json:"currentId,omitempty"`

	// LastInput is the learner's most recent free-text input: the goal
	// wording, a chat message, or the name of a missing prerequisite.
	LastInput string `json:"lastInput,omitempty"`

	// LastOutput is the most recent learner-facing text a phase produced.
	LastOutput string `json:"lastOutput,omitempty"`

	// LastAffect is the affect tag detected in the last chat exchange.
	LastAffect oracle.Affect `json:"lastAffect,omitempty"`

	// RemediationPending routes the next chat transition into gap
	// diagnosis. Set by the caller (gap indicator) or by the chat phase
	// when the tutor detects a named prerequisite gap.
	RemediationPending bool `json:"remediationPending,omitempty"`

	// TestPassed is the outcome of the last evaluation, nil before any.
	TestPassed *bool `json:"testPassed,omitempty"`

	Profile path.UserProfile `json:"profile"`

	// Questions holds generated test or assessment questions awaiting
	// answers; Answers holds the learner's replies keyed by question ID.
	Questions []path.Question   `json:"questions,omitempty"`
	Answers   map[string]string `json:"answers,omitempty"`

	// LastResult is the most recent test evaluation, kept so re-study
	// material can target the misunderstanding. ResultConceptID names the
	// concept it belongs to.
	LastResult      *path.TestResult `json:"lastResult,omitempty"`
	ResultConceptID string           `json:"resultConceptId,omitempty"`

	// Next is where a resumed session should re-enter the machine.
	Next Phase `json:"-"`
}

// Clone deep-copies the state so a phase can mutate freely while the
// caller's value stays untouched until the step commits.
func (s *SessionState) Clone() *SessionState {
	cp := *s
	cp.Goal = s.Goal.Clone()
	cp.Profile = s.Profile.Clone()
	cp.Questions = append([]path.Question(nil), s.Questions...)
	if s.Answers != nil {
		cp.Answers = make(map[string]string, len(s.Answers))
		for k, v := range s.Answers {
			cp.Answers[k] = v
		}
	}
	if s.TestPassed != nil {
		v := *s.TestPassed
		cp.TestPassed = &v
	}
	if s.LastResult != nil {
		r := *s.LastResult
		r.PerQuestion = append([]path.QuestionResult(nil), s.LastResult.PerQuestion...)
		cp.LastResult = &r
	}
	return &cp
}

// Current returns the concept the session is positioned on, or a zero
// concept and false when there is none.
func (s *SessionState) Current() (path.Concept, bool) {
	if s.Goal == nil || s.CurrentID == "" {
		return path.Concept{}, false
	}
	idx := path.FindByID(s.Goal.Path, s.CurrentID)
	if idx == -1 {
		return path.Concept{}, false
	}
	return s.Goal.Path[idx], true
}

// failureFeedback assembles the re-study context for the current concept:
// the evaluator's feedback plus the per-question explanations of the last
// failed test on it. Empty when the last result passed or belongs to
// another concept.
func (s *SessionState) failureFeedback() string {
	if s.LastResult == nil || s.LastResult.Passed || s.ResultConceptID != s.CurrentID {
		return ""
	}
	text := s.LastResult.Feedback
	for _, q := range s.LastResult.PerQuestion {
		if !q.Correct && q.Explanation != "" {
			text += "\n- " + q.Explanation
		}
	}
	return text
}
