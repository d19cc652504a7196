package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/lernpath/internal/path"
	"github.com/abhisek/lernpath/internal/store"
)

// priorKnowledgeSource tags concepts skipped by the prior-knowledge
// assessment. Exactly these are candidates for reactivation during
// remediation.
const priorKnowledgeSource = "prior-assessment"

var errUnknownPhase = errors.New("phase has no action")

func (e *Engine) createGoal(ctx context.Context, s *SessionState) error {
	plan, err := e.oracle.GenerateGoalPath(ctx, s.LastInput, s.Profile)
	if err != nil {
		return err
	}
	if err := path.Validate(plan.Concepts); err != nil {
		return err
	}

	goal := &path.Goal{
		GoalID:        "G-" + e.cfg.NewID(),
		UserID:        s.UserID,
		Name:          plan.RefinedGoal,
		SubjectArea:   s.LastInput,
		BloomLevel:    plan.BloomLevel,
		SuccessMetric: plan.SuccessMetric,
		Status:        path.GoalInProgress,
		Path:          plan.Concepts,
	}

	s.Goal = goal
	s.CurrentID = ""
	if idx := path.NextOpen(goal.Path, -1); idx != -1 {
		s.CurrentID = goal.Path[idx].ID
	}
	s.LastOutput = plan.RefinedGoal

	if err := e.goals.SaveGoal(ctx, goal); err != nil {
		return err
	}

	e.journal.Record(ctx, store.LearnEvent{
		UserID:    s.UserID,
		GoalID:    goal.GoalID,
		ConceptID: s.CurrentID,
		Type:      store.EventGoalCreated,
		Text:      plan.RefinedGoal,
	})
	return nil
}

func (e *Engine) generatePriorAssessment(ctx context.Context, s *SessionState) error {
	if s.Goal == nil {
		return &ErrNoGoal{Phase: PhasePriorAssessment}
	}

	questions, err := e.oracle.GeneratePriorAssessment(ctx, s.Goal, s.Profile)
	if err != nil {
		return err
	}

	s.Questions = questions
	s.Answers = nil

	e.journal.Record(ctx, store.LearnEvent{
		UserID: s.UserID,
		GoalID: s.Goal.GoalID,
		Type:   store.EventAssessmentIssued,
		Text:   fmt.Sprintf("%d prior-knowledge questions issued", len(questions)),
	})
	return nil
}

func (e *Engine) evaluatePriorAssessment(ctx context.Context, s *SessionState) error {
	if s.Goal == nil {
		return &ErrNoGoal{Phase: PhasePriorEvaluation}
	}
	if len(s.Questions) == 0 {
		return &ErrNoQuestions{Phase: PhasePriorEvaluation}
	}

	result, err := e.oracle.EvaluatePriorAssessment(ctx, s.Goal, s.Questions, s.Answers, s.Profile)
	if err != nil {
		return err
	}

	// Proven concepts leave the traversal as Skipped. Only Open concepts
	// qualify; anything else in the oracle's list is ignored, not guessed
	// about.
	for _, id := range result.MasteredIDs {
		idx := path.FindByID(s.Goal.Path, id)
		if idx == -1 || s.Goal.Path[idx].Status != path.StatusOpen {
			continue
		}
		s.Goal.Path[idx].Status = path.StatusSkipped
		s.Goal.Path[idx].ExpertiseSource = priorKnowledgeSource
	}

	s.CurrentID = ""
	if idx := path.NextOpen(s.Goal.Path, -1); idx != -1 {
		s.CurrentID = s.Goal.Path[idx].ID
	} else {
		s.Goal.Status = path.GoalCompleted
	}

	s.Questions = nil
	s.Answers = nil
	s.LastOutput = result.Feedback

	if err := e.goals.SaveGoal(ctx, s.Goal); err != nil {
		return err
	}

	e.journal.Record(ctx, store.LearnEvent{
		UserID: s.UserID,
		GoalID: s.Goal.GoalID,
		Type:   store.EventAssessmentScored,
		Text:   result.Feedback,
	})
	if s.Goal.Status == path.GoalCompleted {
		e.journal.Record(ctx, store.LearnEvent{
			UserID: s.UserID,
			GoalID: s.Goal.GoalID,
			Type:   store.EventGoalCompleted,
			Text:   "prior knowledge covered the whole path",
		})
	}
	return nil
}

func (e *Engine) generateMaterial(ctx context.Context, s *SessionState) error {
	current, ok := s.Current()
	if !ok {
		return &ErrNoCurrentConcept{Phase: PhaseMaterialGeneration}
	}

	material, err := e.oracle.GenerateMaterial(ctx, current, s.Profile, s.failureFeedback())
	if err != nil {
		return err
	}

	if err := path.SetActive(s.Goal.Path, current.ID); err != nil {
		return err
	}
	// Whole-document write: SetActive may also have demoted a stale Active,
	// and both changes must land together.
	if err := e.goals.SaveGoal(ctx, s.Goal); err != nil {
		return err
	}

	s.LastOutput = material.Body

	e.journal.Record(ctx, store.LearnEvent{
		UserID:    s.UserID,
		GoalID:    s.Goal.GoalID,
		ConceptID: current.ID,
		Type:      store.EventMaterialShown,
		Text:      material.Title,
	})
	return nil
}

func (e *Engine) chat(ctx context.Context, s *SessionState) error {
	current, ok := s.Current()
	if !ok {
		return &ErrNoCurrentConcept{Phase: PhaseChatWithTutor}
	}

	e.journal.Record(ctx, store.LearnEvent{
		UserID:    s.UserID,
		GoalID:    s.Goal.GoalID,
		ConceptID: current.ID,
		Type:      store.EventLearnerMessage,
		Text:      s.LastInput,
	})

	reply, err := e.oracle.Chat(ctx, current, s.Profile, s.LastInput)
	if err != nil {
		return err
	}

	s.LastOutput = reply.Text
	s.LastAffect = reply.Affect
	if reply.GapDetected {
		s.RemediationPending = true
	}

	e.journal.Record(ctx, store.LearnEvent{
		UserID:    s.UserID,
		GoalID:    s.Goal.GoalID,
		ConceptID: current.ID,
		Type:      store.EventTutorReply,
		Text:      reply.Text,
		Affect:    string(reply.Affect),
	})
	return nil
}

func (e *Engine) diagnoseGap(ctx context.Context, s *SessionState) error {
	current, ok := s.Current()
	if !ok {
		return &ErrNoCurrentConcept{Phase: PhaseGapDiagnosis}
	}

	question, err := e.oracle.DiagnoseGap(ctx, current, s.Profile)
	if err != nil {
		return err
	}

	s.LastOutput = question
	s.RemediationPending = true

	e.journal.Record(ctx, store.LearnEvent{
		UserID:    s.UserID,
		GoalID:    s.Goal.GoalID,
		ConceptID: current.ID,
		Type:      store.EventGapReported,
		Text:      question,
		Affect:    string(s.LastAffect),
	})
	return nil
}

func (e *Engine) remediate(ctx context.Context, s *SessionState) error {
	if s.Goal == nil {
		return &ErrNoGoal{Phase: PhaseRemediationExecution}
	}

	outcome, err := e.surgery.Apply(ctx, s.Goal, s.LastInput, e.cfg.Now())
	if err != nil {
		return err
	}

	// The position moves to the inserted concept; whatever was active is
	// no longer being studied and folds back into the open queue. The
	// demotion rides in the same atomic write as the surgery.
	for i := range outcome.Path {
		if outcome.Path[i].Status == path.StatusActive {
			outcome.Path[i].Status = path.StatusOpen
		}
	}

	s.Goal.Path = outcome.Path
	s.CurrentID = outcome.Concept.ID
	s.RemediationPending = false
	s.LastOutput = outcome.Message

	if err := e.goals.SaveGoal(ctx, s.Goal); err != nil {
		return err
	}

	e.journal.Record(ctx, store.LearnEvent{
		UserID:    s.UserID,
		GoalID:    s.Goal.GoalID,
		ConceptID: outcome.Concept.ID,
		Type:      store.EventRemediation,
		Text:      outcome.Message,
	})
	return nil
}

func (e *Engine) generateTest(ctx context.Context, s *SessionState) error {
	current, ok := s.Current()
	if !ok {
		return &ErrNoCurrentConcept{Phase: PhaseTestGeneration}
	}

	questions, err := e.oracle.GenerateTest(ctx, current, s.Profile)
	if err != nil {
		return err
	}

	s.Questions = questions
	s.Answers = nil
	s.TestPassed = nil

	e.journal.Record(ctx, store.LearnEvent{
		UserID:    s.UserID,
		GoalID:    s.Goal.GoalID,
		ConceptID: current.ID,
		Type:      store.EventTestIssued,
		Text:      fmt.Sprintf("%d questions at Bloom level %d", len(questions), current.RequiredBloomLevel),
	})
	return nil
}

func (e *Engine) evaluateTest(ctx context.Context, s *SessionState) error {
	current, ok := s.Current()
	if !ok {
		return &ErrNoCurrentConcept{Phase: PhaseTestEvaluation}
	}
	if len(s.Questions) == 0 {
		return &ErrNoQuestions{Phase: PhaseTestEvaluation}
	}

	result, err := e.oracle.EvaluateTest(ctx, current, s.Questions, s.Answers, s.Profile)
	if err != nil {
		return err
	}

	idx := path.FindByID(s.Goal.Path, current.ID)
	affect := "frustration"
	discrepancy := "high"

	if result.Passed {
		if err := path.ValidateTransition(s.Goal.Path[idx], path.StatusMastered); err != nil {
			return err
		}
		s.Goal.Path[idx].Status = path.StatusMastered
		affect = "satisfaction"
		discrepancy = "low"

		// Strictly-forward scan; bypassed concepts are never revisited.
		s.CurrentID = ""
		if next := path.NextOpen(s.Goal.Path, idx); next != -1 {
			s.CurrentID = s.Goal.Path[next].ID
		} else {
			s.Goal.Status = path.GoalCompleted
		}
	} else {
		if err := path.ValidateTransition(s.Goal.Path[idx], path.StatusReview); err != nil {
			return err
		}
		s.Goal.Path[idx].Status = path.StatusReview
		// CurrentID stays: the learner re-studies this concept.
	}

	passed := result.Passed
	s.TestPassed = &passed
	s.LastResult = result
	s.ResultConceptID = current.ID
	s.Questions = nil
	s.Answers = nil
	s.LastOutput = result.Feedback
	s.Profile.RecordScore(*result)

	if err := e.goals.SaveGoal(ctx, s.Goal); err != nil {
		return err
	}
	if err := e.goals.SaveUserProfile(ctx, &s.Profile); err != nil {
		return err
	}

	score := result.Score
	e.journal.Record(ctx, store.LearnEvent{
		UserID:      s.UserID,
		GoalID:      s.Goal.GoalID,
		ConceptID:   current.ID,
		Type:        store.EventTestScored,
		Text:        result.Feedback,
		Affect:      affect,
		Discrepancy: discrepancy,
		Score:       &score,
	})
	if s.Goal.Status == path.GoalCompleted {
		e.journal.Record(ctx, store.LearnEvent{
			UserID: s.UserID,
			GoalID: s.Goal.GoalID,
			Type:   store.EventGoalCompleted,
			Text:   "every concept of the path is mastered",
		})
	}
	return nil
}
