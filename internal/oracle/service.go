package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/lernpath/internal/llm"
	"github.com/abhisek/lernpath/internal/path"
)

// Config holds generation settings for the LLM-backed oracle.
type Config struct {
	MaxTokens         int     // budget for conversational and scoring calls
	LongFormMaxTokens int     // budget for material and path generation
	Temperature       float64 // 0.0 - 1.0
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:         1024,
		LongFormMaxTokens: 4096,
		Temperature:       0.4,
	}
}

// Service implements ContentOracle over an llm.Provider.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates an LLM-backed content oracle.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

// generate runs one structured LLM call and decodes the response into out.
// Schema violations and truncation become *ErrParse; transport errors pass
// through for the caller's error policy.
func (s *Service) generate(ctx context.Context, purpose, system, user string, schema *llm.Schema, maxTokens int, out any) error {
	ctx = llm.WithPurpose(ctx, purpose)

	req := llm.Request{
		System: system,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: user},
		},
		Schema:      schema,
		MaxTokens:   maxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		var invalid *llm.ErrInvalidResponse
		var truncated *llm.ErrMaxTokensExceeded
		if errors.As(err, &invalid) || errors.As(err, &truncated) {
			return &ErrParse{Op: purpose, Err: err}
		}
		return fmt.Errorf("%s generation: %w", purpose, err)
	}

	if err := json.Unmarshal(resp.Content, out); err != nil {
		return &ErrParse{Op: purpose, Err: err}
	}
	return nil
}

type conceptOutput struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	RequiredBloomLevel int    `json:"requiredBloomLevel"`
	EstimatedMins      int    `json:"estimatedMins"`
}

type goalPathOutput struct {
	Goal          string          `json:"goal"`
	BloomLevel    int             `json:"bloomLevel"`
	SuccessMetric string          `json:"successMetric"`
	Path          []conceptOutput `json:"path"`
}

func (s *Service) GenerateGoalPath(ctx context.Context, goalText string, profile path.UserProfile) (*GoalPlan, error) {
	system := architectSystemPrompt + languageDirective(profile.Language)
	userMsg := buildGoalPathMessage(goalText, profile)

	var out goalPathOutput
	if err := s.generate(ctx, "goal-path", system, userMsg, GoalPathSchema, s.cfg.LongFormMaxTokens, &out); err != nil {
		return nil, err
	}
	if len(out.Path) == 0 {
		return nil, &ErrParse{Op: "goal-path", Err: fmt.Errorf("empty concept path")}
	}

	concepts := make([]path.Concept, len(out.Path))
	for i, c := range out.Path {
		concepts[i] = path.Concept{
			ID:                 c.ID,
			Name:               c.Name,
			Status:             path.StatusOpen,
			RequiredBloomLevel: c.RequiredBloomLevel,
			EstimatedMins:      c.EstimatedMins,
		}
	}
	if err := path.Validate(concepts); err != nil {
		return nil, &ErrParse{Op: "goal-path", Err: err}
	}

	return &GoalPlan{
		RefinedGoal:   out.Goal,
		BloomLevel:    out.BloomLevel,
		SuccessMetric: out.SuccessMetric,
		Concepts:      concepts,
	}, nil
}

type questionsOutput struct {
	Questions []path.Question `json:"questions"`
}

// validateQuestions rejects question sets whose IDs can't key an answers map.
func validateQuestions(op string, questions []path.Question) error {
	if len(questions) == 0 {
		return &ErrParse{Op: op, Err: fmt.Errorf("no questions generated")}
	}
	seen := make(map[string]bool, len(questions))
	for _, q := range questions {
		if q.ID == "" {
			return &ErrParse{Op: op, Err: fmt.Errorf("question with empty ID")}
		}
		if seen[q.ID] {
			return &ErrParse{Op: op, Err: fmt.Errorf("duplicate question ID %q", q.ID)}
		}
		seen[q.ID] = true
	}
	return nil
}

func (s *Service) GeneratePriorAssessment(ctx context.Context, goal *path.Goal, profile path.UserProfile) ([]path.Question, error) {
	system := assessorSystemPrompt + languageDirective(profile.Language)
	userMsg := buildAssessmentMessage(goal)

	var out questionsOutput
	if err := s.generate(ctx, "prior-assess", system, userMsg, AssessmentSchema, s.cfg.MaxTokens, &out); err != nil {
		return nil, err
	}
	if err := validateQuestions("prior-assess", out.Questions); err != nil {
		return nil, err
	}
	for _, q := range out.Questions {
		if path.FindByID(goal.Path, q.ConceptID) == -1 {
			return nil, &ErrParse{Op: "prior-assess", Err: fmt.Errorf("question %s references unknown concept %q", q.ID, q.ConceptID)}
		}
	}
	return out.Questions, nil
}

type priorEvalOutput struct {
	MasteredConcepts []string `json:"masteredConcepts"`
	Feedback         string   `json:"feedback"`
}

func (s *Service) EvaluatePriorAssessment(ctx context.Context, goal *path.Goal, questions []path.Question, answers map[string]string, profile path.UserProfile) (*PriorResult, error) {
	system := assessorSystemPrompt + languageDirective(profile.Language)
	userMsg := buildPriorEvaluationMessage(goal, questions, answers)

	var out priorEvalOutput
	if err := s.generate(ctx, "prior-eval", system, userMsg, PriorEvaluationSchema, s.cfg.MaxTokens, &out); err != nil {
		return nil, err
	}

	// IDs outside the path are dropped, never guessed at. Marking fewer
	// concepts mastered is always safe.
	var mastered []string
	for _, id := range out.MasteredConcepts {
		if path.FindByID(goal.Path, id) != -1 {
			mastered = append(mastered, id)
		}
	}

	return &PriorResult{MasteredIDs: mastered, Feedback: out.Feedback}, nil
}

type materialOutput struct {
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	Sources []string `json:"sources"`
}

func (s *Service) GenerateMaterial(ctx context.Context, concept path.Concept, profile path.UserProfile, failureFeedback string) (*Material, error) {
	system := curatorSystemPrompt + languageDirective(profile.Language)
	userMsg := buildMaterialMessage(concept, profile, failureFeedback)

	var out materialOutput
	if err := s.generate(ctx, "material", system, userMsg, MaterialSchema, s.cfg.LongFormMaxTokens, &out); err != nil {
		return nil, err
	}
	if out.Body == "" {
		return nil, &ErrParse{Op: "material", Err: fmt.Errorf("empty material body")}
	}
	if out.Title == "" {
		out.Title = concept.Name
	}

	return &Material{Title: out.Title, Body: out.Body, Sources: out.Sources}, nil
}

type chatOutput struct {
	Reply       string `json:"reply"`
	Affect      string `json:"affect"`
	GapDetected bool   `json:"gapDetected"`
}

func (s *Service) Chat(ctx context.Context, concept path.Concept, profile path.UserProfile, message string) (*ChatReply, error) {
	system := tutorSystemPrompt + languageDirective(profile.Language)
	userMsg := buildChatMessage(concept, profile, message)

	var out chatOutput
	if err := s.generate(ctx, "chat", system, userMsg, ChatSchema, s.cfg.MaxTokens, &out); err != nil {
		return nil, err
	}
	if out.Reply == "" {
		return nil, &ErrParse{Op: "chat", Err: fmt.Errorf("empty reply")}
	}

	affect := Affect(out.Affect)
	if !affect.Valid() {
		affect = AffectNeutral
	}
	return &ChatReply{Text: out.Reply, Affect: affect, GapDetected: out.GapDetected}, nil
}

type diagnosisOutput struct {
	Question string `json:"question"`
}

func (s *Service) DiagnoseGap(ctx context.Context, concept path.Concept, profile path.UserProfile) (string, error) {
	system := tutorSystemPrompt + languageDirective(profile.Language)
	userMsg := buildDiagnosisMessage(concept)

	var out diagnosisOutput
	if err := s.generate(ctx, "diagnosis", system, userMsg, DiagnosisSchema, s.cfg.MaxTokens, &out); err != nil {
		return "", err
	}
	if out.Question == "" {
		return "", &ErrParse{Op: "diagnosis", Err: fmt.Errorf("empty diagnostic question")}
	}
	return out.Question, nil
}

type surgeryOutput struct {
	Concept    conceptOutput `json:"concept"`
	Supersedes []string      `json:"supersedes"`
	Message    string        `json:"message"`
}

func (s *Service) PerformSurgery(ctx context.Context, missingName string, concepts []path.Concept) (*SurgeryPlan, error) {
	system := architectSystemPrompt
	userMsg := buildSurgeryMessage(missingName, concepts)

	var out surgeryOutput
	if err := s.generate(ctx, "surgery", system, userMsg, SurgerySchema, s.cfg.MaxTokens, &out); err != nil {
		return nil, err
	}
	if out.Concept.Name == "" {
		return nil, &ErrParse{Op: "surgery", Err: fmt.Errorf("proposal without concept name")}
	}

	return &SurgeryPlan{
		Concept: path.Concept{
			ID:                 out.Concept.ID,
			Name:               out.Concept.Name,
			RequiredBloomLevel: out.Concept.RequiredBloomLevel,
			EstimatedMins:      out.Concept.EstimatedMins,
		},
		Supersedes: out.Supersedes,
		Message:    out.Message,
	}, nil
}

func (s *Service) GenerateTest(ctx context.Context, concept path.Concept, profile path.UserProfile) ([]path.Question, error) {
	system := curatorSystemPrompt + languageDirective(profile.Language)
	userMsg := buildTestMessage(concept, profile)

	var out questionsOutput
	if err := s.generate(ctx, "test-gen", system, userMsg, TestSchema, s.cfg.MaxTokens, &out); err != nil {
		return nil, err
	}
	if err := validateQuestions("test-gen", out.Questions); err != nil {
		return nil, err
	}
	for i := range out.Questions {
		if out.Questions[i].ConceptID == "" {
			out.Questions[i].ConceptID = concept.ID
		}
	}
	return out.Questions, nil
}

type evaluationOutput struct {
	Score          int                   `json:"score"`
	Feedback       string                `json:"feedback"`
	Recommendation string                `json:"recommendation"`
	PerQuestion    []path.QuestionResult `json:"perQuestion"`
}

func (s *Service) EvaluateTest(ctx context.Context, concept path.Concept, questions []path.Question, answers map[string]string, profile path.UserProfile) (*path.TestResult, error) {
	system := curatorSystemPrompt + languageDirective(profile.Language)
	userMsg := buildEvaluationMessage(concept, questions, answers)

	var out evaluationOutput
	if err := s.generate(ctx, "test-eval", system, userMsg, EvaluationSchema, s.cfg.MaxTokens, &out); err != nil {
		return nil, err
	}

	result := path.Scored(out.Score, out.Feedback, out.Recommendation, out.PerQuestion)
	return &result, nil
}
