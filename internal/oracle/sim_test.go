package oracle

import (
	"reflect"
	"testing"

	"github.com/abhisek/lernpath/internal/path"
)

func TestSimulator_Deterministic(t *testing.T) {
	sim := NewSimulator()
	profile := path.UserProfile{UserID: "alice", StylePreference: "analogy-based"}

	a, err := sim.GenerateGoalPath(t.Context(), "Go concurrency", profile)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	b, err := sim.GenerateGoalPath(t.Context(), "Go concurrency", profile)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical plans for identical inputs")
	}
	if len(a.Concepts) != 3 {
		t.Fatalf("got %d concepts, want 3", len(a.Concepts))
	}
	if err := path.Validate(a.Concepts); err != nil {
		t.Errorf("generated path invalid: %v", err)
	}
}

func TestSimulator_SurgerySupersedesSkippedConcepts(t *testing.T) {
	sim := NewSimulator()
	concepts := []path.Concept{
		{ID: "C1", Name: "Basics", Status: path.StatusSkipped},
		{ID: "C2", Name: "Core", Status: path.StatusActive},
		{ID: "C3", Name: "Advanced", Status: path.StatusOpen},
	}

	plan, err := sim.PerformSurgery(t.Context(), "state management", concepts)
	if err != nil {
		t.Fatalf("surgery: %v", err)
	}
	if plan.Concept.Name != "state management" {
		t.Errorf("concept name = %q", plan.Concept.Name)
	}
	if plan.Concept.ID != "" {
		t.Errorf("expected empty ID (assigned by the protocol), got %q", plan.Concept.ID)
	}
	if !reflect.DeepEqual(plan.Supersedes, []string{"C1"}) {
		t.Errorf("supersedes = %v, want [C1]", plan.Supersedes)
	}
}

func TestSimulator_EvaluationCountsSubstantiveAnswers(t *testing.T) {
	sim := NewSimulator()
	concept := path.Concept{ID: "C1", Name: "Goroutines", RequiredBloomLevel: 3}

	questions, err := sim.GenerateTest(t.Context(), concept, path.UserProfile{})
	if err != nil {
		t.Fatalf("generate test: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(questions))
	}

	long := "A goroutine is a lightweight thread managed by the Go runtime."

	// Two of three substantive answers: 66, below the pass mark.
	result, err := sim.EvaluateTest(t.Context(), concept, questions, map[string]string{
		"Q1": long, "Q2": long, "Q3": "idk",
	}, path.UserProfile{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result.Score != 66 || result.Passed {
		t.Errorf("score = %d passed = %v, want 66/false", result.Score, result.Passed)
	}
	if result.Recommendation == "" {
		t.Error("expected a recommendation on a failed test")
	}

	// All three: 100, pass.
	result, err = sim.EvaluateTest(t.Context(), concept, questions, map[string]string{
		"Q1": long, "Q2": long, "Q3": long,
	}, path.UserProfile{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result.Score != 100 || !result.Passed {
		t.Errorf("score = %d passed = %v, want 100/true", result.Score, result.Passed)
	}
	if result.Recommendation != "" {
		t.Errorf("unexpected recommendation on a pass: %q", result.Recommendation)
	}
}

func TestSimulator_AffectDetection(t *testing.T) {
	tests := []struct {
		message string
		want    Affect
	}{
		{"I'm stuck on this and want to give up", AffectFrustration},
		{"this is so confusing", AffectConfusion},
		{"got it, thanks!", AffectJoy},
		{"what does the second term mean?", AffectNeutral},
	}

	sim := NewSimulator()
	concept := path.Concept{ID: "C1", Name: "Channels"}

	for _, tt := range tests {
		reply, err := sim.Chat(t.Context(), concept, path.UserProfile{}, tt.message)
		if err != nil {
			t.Fatalf("chat %q: %v", tt.message, err)
		}
		if reply.Affect != tt.want {
			t.Errorf("affect for %q = %q, want %q", tt.message, reply.Affect, tt.want)
		}
		if reply.Text == "" {
			t.Errorf("empty reply for %q", tt.message)
		}
	}
}

func TestSimulator_GapDetection(t *testing.T) {
	sim := NewSimulator()
	concept := path.Concept{ID: "C1", Name: "Channels"}

	reply, err := sim.Chat(t.Context(), concept, path.UserProfile{}, "I never learned what a goroutine is")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !reply.GapDetected {
		t.Error("expected gap detection for a named missing prerequisite")
	}

	reply, err = sim.Chat(t.Context(), concept, path.UserProfile{}, "this is so confusing")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply.GapDetected {
		t.Error("plain confusion must not count as a prerequisite gap")
	}
}

func TestSimulator_PriorAssessmentSpansPath(t *testing.T) {
	sim := NewSimulator()
	goal := testGoalFixture()

	questions, err := sim.GeneratePriorAssessment(t.Context(), goal, path.UserProfile{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want one per concept", len(questions))
	}
	for i, q := range questions {
		if q.ConceptID != goal.Path[i].ID {
			t.Errorf("question %d concept = %q, want %q", i, q.ConceptID, goal.Path[i].ID)
		}
	}

	substantive := "I have used this daily at work for the last three years, including edge cases."
	result, err := sim.EvaluatePriorAssessment(t.Context(), goal, questions, map[string]string{
		"Q1": substantive,
		"Q2": "no idea",
	}, path.UserProfile{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(result.MasteredIDs) != 1 || result.MasteredIDs[0] != "C1" {
		t.Errorf("mastered = %v, want [C1]", result.MasteredIDs)
	}
}
