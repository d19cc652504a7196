package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/lernpath/internal/path"
)

// Simulator is a deterministic ContentOracle with no external calls.
// It backs --sim mode and tests: same inputs, same outputs, no network.
type Simulator struct{}

// NewSimulator creates a simulated content oracle.
func NewSimulator() *Simulator {
	return &Simulator{}
}

func (s *Simulator) GenerateGoalPath(_ context.Context, goalText string, _ path.UserProfile) (*GoalPlan, error) {
	subject := strings.TrimSpace(goalText)
	if subject == "" {
		subject = "the subject"
	}

	return &GoalPlan{
		RefinedGoal:   fmt.Sprintf("Master %s, demonstrated by passing every concept test", subject),
		BloomLevel:    3,
		SuccessMetric: "every concept test passed with a score above 70",
		Concepts: []path.Concept{
			{ID: "C1", Name: fmt.Sprintf("Foundations of %s", subject), Status: path.StatusOpen, RequiredBloomLevel: 2, EstimatedMins: 20},
			{ID: "C2", Name: fmt.Sprintf("Core concepts of %s", subject), Status: path.StatusOpen, RequiredBloomLevel: 3, EstimatedMins: 30},
			{ID: "C3", Name: fmt.Sprintf("Applying %s", subject), Status: path.StatusOpen, RequiredBloomLevel: 5, EstimatedMins: 40},
		},
	}, nil
}

func (s *Simulator) GeneratePriorAssessment(_ context.Context, goal *path.Goal, _ path.UserProfile) ([]path.Question, error) {
	var questions []path.Question
	for i, c := range goal.Path {
		if i >= 3 {
			break
		}
		questions = append(questions, path.Question{
			ID:         fmt.Sprintf("Q%d", i+1),
			Prompt:     fmt.Sprintf("In your own words: what do you already know about %s?", c.Name),
			BloomLevel: c.RequiredBloomLevel,
			ConceptID:  c.ID,
		})
	}
	return questions, nil
}

// substantiveAnswer is the simulator's stand-in for judgement: an answer
// long enough to suggest the learner engaged with the question.
func substantiveAnswer(answer string, minLen int) bool {
	return len(strings.TrimSpace(answer)) >= minLen
}

func (s *Simulator) EvaluatePriorAssessment(_ context.Context, goal *path.Goal, questions []path.Question, answers map[string]string, _ path.UserProfile) (*PriorResult, error) {
	var mastered []string
	for _, q := range questions {
		if substantiveAnswer(answers[q.ID], 40) && path.FindByID(goal.Path, q.ConceptID) != -1 {
			mastered = append(mastered, q.ConceptID)
		}
	}

	feedback := "We start from the beginning; the whole path is worth your time."
	if len(mastered) > 0 {
		feedback = fmt.Sprintf("Your answers show solid prior knowledge; %d concept(s) will be skipped.", len(mastered))
	}
	return &PriorResult{MasteredIDs: mastered, Feedback: feedback}, nil
}

func (s *Simulator) GenerateMaterial(_ context.Context, concept path.Concept, profile path.UserProfile, failureFeedback string) (*Material, error) {
	var b strings.Builder

	if failureFeedback != "" {
		b.WriteString("Let's approach this from a different angle this time.\n\n")
	}
	fmt.Fprintf(&b, "## %s\n\n", concept.Name)
	fmt.Fprintf(&b, "This unit covers %s at Bloom level %d.\n\n", concept.Name, concept.RequiredBloomLevel)
	if profile.StylePreference != "" {
		fmt.Fprintf(&b, "Presented in your preferred style: %s.\n\n", profile.StylePreference)
	}
	b.WriteString("Work through the ideas below, then ask the tutor about anything unclear.\n")

	return &Material{Title: concept.Name, Body: b.String()}, nil
}

// detectAffect maps message wording to an affect tag by keyword. Crude on
// purpose: the simulator only has to be deterministic, not clever.
func detectAffect(message string) Affect {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "stuck") || strings.Contains(m, "frustrat") || strings.Contains(m, "give up"):
		return AffectFrustration
	case strings.Contains(m, "confus") || strings.Contains(m, "don't understand") || strings.Contains(m, "lost"):
		return AffectConfusion
	case strings.Contains(m, "got it") || strings.Contains(m, "thanks") || strings.Contains(m, "great"):
		return AffectJoy
	}
	return AffectNeutral
}

// detectGap reports whether the message names a missing prerequisite rather
// than plain confusion about the current concept.
func detectGap(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "never learned") ||
		strings.Contains(m, "never had") ||
		strings.Contains(m, "missing the basics") ||
		strings.Contains(m, "don't know the basics")
}

func (s *Simulator) Chat(_ context.Context, concept path.Concept, _ path.UserProfile, message string) (*ChatReply, error) {
	affect := detectAffect(message)
	gap := detectGap(message)

	var text string
	switch {
	case gap:
		text = fmt.Sprintf("It sounds like something before %s is missing. Use the gap indicator and we'll close it properly.", concept.Name)
	case affect == AffectFrustration:
		text = fmt.Sprintf("Feeling stuck on %s is completely normal, it means you're challenging yourself. Let's take it one small step at a time.", concept.Name)
	case affect == AffectConfusion:
		text = fmt.Sprintf("Good that you're saying so! Let's untangle %s together: which part felt unclear first?", concept.Name)
	case affect == AffectJoy:
		text = fmt.Sprintf("Wonderful! You're making real progress with %s. Ready to keep going?", concept.Name)
	default:
		text = fmt.Sprintf("Good question about %s. Think of it this way: start from what the concept is for, and the mechanics follow.", concept.Name)
	}

	return &ChatReply{Text: text, Affect: affect, GapDetected: gap}, nil
}

func (s *Simulator) DiagnoseGap(_ context.Context, concept path.Concept, _ path.UserProfile) (string, error) {
	return fmt.Sprintf(
		"It sounds like something before %s is missing. Which foundation feels shaky: the terminology, or the underlying idea? Name it and I'll add it to your path.",
		concept.Name), nil
}

func (s *Simulator) PerformSurgery(_ context.Context, missingName string, concepts []path.Concept) (*SurgeryPlan, error) {
	// The simulator assumes every previously skipped concept rested on the
	// missing foundation. The protocol ignores IDs that aren't Skipped.
	var supersedes []string
	for _, c := range concepts {
		if c.Status == path.StatusSkipped {
			supersedes = append(supersedes, c.ID)
		}
	}

	return &SurgeryPlan{
		Concept: path.Concept{
			Name:               missingName,
			RequiredBloomLevel: 1,
			EstimatedMins:      15,
		},
		Supersedes: supersedes,
		Message:    fmt.Sprintf("I've added %q to your path. We continue right there!", missingName),
	}, nil
}

func (s *Simulator) GenerateTest(_ context.Context, concept path.Concept, _ path.UserProfile) ([]path.Question, error) {
	return []path.Question{
		{ID: "Q1", Prompt: fmt.Sprintf("Explain %s in your own words.", concept.Name), BloomLevel: 2, ConceptID: concept.ID},
		{ID: "Q2", Prompt: fmt.Sprintf("Give a concrete example where %s applies.", concept.Name), BloomLevel: 3, ConceptID: concept.ID},
		{ID: "Q3", Prompt: fmt.Sprintf("What would go wrong without %s?", concept.Name), BloomLevel: concept.RequiredBloomLevel, ConceptID: concept.ID},
	}, nil
}

func (s *Simulator) EvaluateTest(_ context.Context, concept path.Concept, questions []path.Question, answers map[string]string, _ path.UserProfile) (*path.TestResult, error) {
	perQuestion := make([]path.QuestionResult, len(questions))
	correct := 0
	for i, q := range questions {
		ok := substantiveAnswer(answers[q.ID], 20)
		if ok {
			correct++
		}
		explanation := "The answer engages with the question."
		if !ok {
			explanation = "The answer is missing or too thin to show understanding."
		}
		perQuestion[i] = path.QuestionResult{ID: q.ID, Correct: ok, Explanation: explanation}
	}

	score := 0
	if len(questions) > 0 {
		score = correct * 100 / len(questions)
	}

	feedback := fmt.Sprintf("You answered %d of %d questions convincingly.", correct, len(questions))
	recommendation := ""
	if score <= path.PassMark {
		recommendation = fmt.Sprintf("practice explaining %s in your own words", concept.Name)
	}

	result := path.Scored(score, feedback, recommendation, perQuestion)
	return &result, nil
}
