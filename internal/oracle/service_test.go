package oracle

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/abhisek/lernpath/internal/llm"
	"github.com/abhisek/lernpath/internal/path"
)

func testConcept() path.Concept {
	return path.Concept{
		ID:                 "C2",
		Name:               "Matrix factorization",
		Status:             path.StatusActive,
		RequiredBloomLevel: 3,
	}
}

func testGoalFixture() *path.Goal {
	return &path.Goal{
		GoalID: "g1",
		UserID: "alice",
		Name:   "Recommender systems",
		Status: path.GoalInProgress,
		Path: []path.Concept{
			{ID: "C1", Name: "Linear algebra refresher", Status: path.StatusOpen, RequiredBloomLevel: 2},
			{ID: "C2", Name: "Matrix factorization", Status: path.StatusOpen, RequiredBloomLevel: 3},
		},
	}
}

func validGoalPathJSON() json.RawMessage {
	return json.RawMessage(`{
		"goal": "Build a working recommender system within eight weeks",
		"bloomLevel": 4,
		"successMetric": "a recommender that beats a popularity baseline",
		"path": [
			{"id": "C1", "name": "Linear algebra refresher", "requiredBloomLevel": 2, "estimatedMins": 25},
			{"id": "C2", "name": "Matrix factorization", "requiredBloomLevel": 3, "estimatedMins": 35},
			{"id": "C3", "name": "Evaluation metrics", "requiredBloomLevel": 4, "estimatedMins": 30}
		]
	}`)
}

func TestService_GeneratesGoalPath(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validGoalPathJSON()})
	svc := NewService(mock, DefaultConfig())

	plan, err := svc.GenerateGoalPath(t.Context(), "learn recommender systems", path.UserProfile{UserID: "alice"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if plan.BloomLevel != 4 {
		t.Errorf("bloom level = %d, want 4", plan.BloomLevel)
	}
	if len(plan.Concepts) != 3 {
		t.Fatalf("got %d concepts, want 3", len(plan.Concepts))
	}
	for _, c := range plan.Concepts {
		if c.Status != path.StatusOpen {
			t.Errorf("concept %s status = %q, want open", c.ID, c.Status)
		}
	}

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	req := mock.Calls[0]
	if req.Schema == nil || req.Schema.Name != "goal-path" {
		t.Error("expected schema name 'goal-path'")
	}
}

func TestService_GoalPathRejectsDuplicateIDs(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{
		"goal": "g", "bloomLevel": 3, "successMetric": "m",
		"path": [
			{"id": "C1", "name": "A", "requiredBloomLevel": 2},
			{"id": "C1", "name": "B", "requiredBloomLevel": 3}
		]
	}`)})
	svc := NewService(mock, DefaultConfig())

	_, err := svc.GenerateGoalPath(t.Context(), "x", path.UserProfile{})

	var parseErr *ErrParse
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ErrParse", err)
	}
	var dup *path.ErrDuplicateConceptID
	if !errors.As(err, &dup) || dup.ID != "C1" {
		t.Errorf("expected wrapped duplicate-ID error for C1, got %v", err)
	}
}

func TestService_GoalPathRejectsEmptyPath(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"goal": "g", "bloomLevel": 3, "successMetric": "m", "path": []}`,
	)})
	svc := NewService(mock, DefaultConfig())

	_, err := svc.GenerateGoalPath(t.Context(), "x", path.UserProfile{})
	var parseErr *ErrParse
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ErrParse", err)
	}
}

func TestService_MaterialCarriesFailureFeedback(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"title": "", "body": "## Once more, differently\n..."}`,
	)})
	svc := NewService(mock, DefaultConfig())

	mat, err := svc.GenerateMaterial(t.Context(), testConcept(), path.UserProfile{}, "confused rows with columns")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// Empty title falls back to the concept name.
	if mat.Title != "Matrix factorization" {
		t.Errorf("title = %q, want concept name fallback", mat.Title)
	}

	// The failed-test feedback must reach the prompt.
	sent := mock.Calls[0].Messages[0].Content
	if !strings.Contains(sent, "confused rows with columns") {
		t.Error("expected failure feedback in the generated prompt")
	}
	if !strings.Contains(sent, "re-study") {
		t.Error("expected re-study framing in the generated prompt")
	}
}

func TestService_MaterialRejectsEmptyBody(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"title": "T", "body": ""}`,
	)})
	svc := NewService(mock, DefaultConfig())

	_, err := svc.GenerateMaterial(t.Context(), testConcept(), path.UserProfile{}, "")
	var parseErr *ErrParse
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ErrParse", err)
	}
}

func TestService_ChatNormalizesUnknownAffect(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"reply": "You're doing fine!", "affect": "excited", "gapDetected": false}`,
	)})
	svc := NewService(mock, DefaultConfig())

	reply, err := svc.Chat(t.Context(), testConcept(), path.UserProfile{}, "is this right?")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply.Affect != AffectNeutral {
		t.Errorf("affect = %q, want neutral for unknown tag", reply.Affect)
	}
	if reply.Text != "You're doing fine!" {
		t.Errorf("text = %q", reply.Text)
	}
}

func TestService_ChatCarriesGapFlag(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"reply": "Let's close that gap.", "affect": "confusion", "gapDetected": true}`,
	)})
	svc := NewService(mock, DefaultConfig())

	reply, err := svc.Chat(t.Context(), testConcept(), path.UserProfile{}, "I never learned linear algebra")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !reply.GapDetected {
		t.Error("expected the gap flag to pass through")
	}
}

func TestService_SurgeryParsesProposal(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{
		"concept": {"id": "N1", "name": "State management basics", "requiredBloomLevel": 1, "estimatedMins": 15},
		"supersedes": ["C1"],
		"message": "I added the missing foundation to your path."
	}`)})
	svc := NewService(mock, DefaultConfig())

	plan, err := svc.PerformSurgery(t.Context(), "state management", testGoalFixture().Path)
	if err != nil {
		t.Fatalf("surgery: %v", err)
	}
	if plan.Concept.Name != "State management basics" {
		t.Errorf("concept name = %q", plan.Concept.Name)
	}
	if len(plan.Supersedes) != 1 || plan.Supersedes[0] != "C1" {
		t.Errorf("supersedes = %v, want [C1]", plan.Supersedes)
	}
	if plan.Message == "" {
		t.Error("expected learner-facing message")
	}
}

func TestService_SurgeryRejectsNamelessConcept(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"concept": {"id": "N1", "name": "", "requiredBloomLevel": 1}, "supersedes": [], "message": "m"}`,
	)})
	svc := NewService(mock, DefaultConfig())

	_, err := svc.PerformSurgery(t.Context(), "x", nil)
	var parseErr *ErrParse
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ErrParse", err)
	}
}

func TestService_EvaluationDerivesPassFromScore(t *testing.T) {
	tests := []struct {
		score      int
		wantScore  int
		wantPassed bool
	}{
		{70, 70, false}, // the pass mark itself is not a pass
		{71, 71, true},
		{150, 100, true}, // clamped
		{-5, 0, false},
	}

	for _, tt := range tests {
		mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
			`{"score": ` + strconv.Itoa(tt.score) + `, "feedback": "f", "recommendation": "", "perQuestion": []}`,
		)})
		svc := NewService(mock, DefaultConfig())

		result, err := svc.EvaluateTest(t.Context(), testConcept(), nil, nil, path.UserProfile{})
		if err != nil {
			t.Fatalf("score %d: %v", tt.score, err)
		}
		if result.Score != tt.wantScore {
			t.Errorf("score %d: got %d, want %d", tt.score, result.Score, tt.wantScore)
		}
		if result.Passed != tt.wantPassed {
			t.Errorf("score %d: passed = %v, want %v", tt.score, result.Passed, tt.wantPassed)
		}
	}
}

func TestService_TestGenerationValidatesQuestions(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{
		"questions": [
			{"id": "Q1", "prompt": "a", "bloomLevel": 2},
			{"id": "Q1", "prompt": "b", "bloomLevel": 3}
		]
	}`)})
	svc := NewService(mock, DefaultConfig())

	_, err := svc.GenerateTest(t.Context(), testConcept(), path.UserProfile{})
	var parseErr *ErrParse
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ErrParse for duplicate question IDs", err)
	}
}

func TestService_TestGenerationFillsConceptID(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{
		"questions": [{"id": "Q1", "prompt": "Explain it.", "bloomLevel": 3}]
	}`)})
	svc := NewService(mock, DefaultConfig())

	questions, err := svc.GenerateTest(t.Context(), testConcept(), path.UserProfile{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if questions[0].ConceptID != "C2" {
		t.Errorf("concept ID = %q, want C2", questions[0].ConceptID)
	}
}

func TestService_PriorEvaluationDropsUnknownIDs(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"masteredConcepts": ["C1", "ZZ"], "feedback": "well done"}`,
	)})
	svc := NewService(mock, DefaultConfig())

	result, err := svc.EvaluatePriorAssessment(t.Context(), testGoalFixture(), nil, nil, path.UserProfile{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(result.MasteredIDs) != 1 || result.MasteredIDs[0] != "C1" {
		t.Errorf("mastered = %v, want [C1]", result.MasteredIDs)
	}
}

func TestService_SchemaViolationBecomesParseError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Err: &llm.ErrInvalidResponse{Err: errors.New("schema mismatch")},
	})
	svc := NewService(mock, DefaultConfig())

	_, err := svc.Chat(t.Context(), testConcept(), path.UserProfile{}, "hi")
	var parseErr *ErrParse
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ErrParse", err)
	}
}

func TestService_TransportErrorsPassThrough(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Err: &llm.ErrRateLimit{Err: errors.New("429")},
	})
	svc := NewService(mock, DefaultConfig())

	_, err := svc.Chat(t.Context(), testConcept(), path.UserProfile{}, "hi")

	var parseErr *ErrParse
	if errors.As(err, &parseErr) {
		t.Fatalf("rate limit mapped to *ErrParse: %v", err)
	}
	var rateLimited *llm.ErrRateLimit
	if !errors.As(err, &rateLimited) {
		t.Fatalf("error = %v, want wrapped *llm.ErrRateLimit", err)
	}
}

func TestService_GermanLanguageDirective(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"reply": "Gern!", "affect": "neutral"}`,
	)})
	svc := NewService(mock, DefaultConfig())

	_, err := svc.Chat(t.Context(), testConcept(), path.UserProfile{Language: "de"}, "Hilfe bitte")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !strings.Contains(mock.Calls[0].System, "Answer in German") {
		t.Error("expected German language directive in system prompt")
	}
}
