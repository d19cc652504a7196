package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/lernpath/internal/path"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testGoal(id, userID string) *path.Goal {
	return &path.Goal{
		GoalID:        id,
		UserID:        userID,
		Name:          "Linear Algebra Basics",
		SubjectArea:   "mathematics",
		BloomLevel:    3,
		SuccessMetric: "pass all concept tests",
		Status:        path.GoalInProgress,
		Path: []path.Concept{
			{ID: "C1", Name: "Vectors", Status: path.StatusOpen, RequiredBloomLevel: 2},
			{ID: "C2", Name: "Matrices", Status: path.StatusOpen, RequiredBloomLevel: 3},
			{ID: "C3", Name: "Determinants", Status: path.StatusOpen, RequiredBloomLevel: 3},
		},
	}
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil database handle")
	}
	if s.EventRepo() == nil {
		t.Fatal("expected non-nil event repo")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here. It is tested with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"goals", "profiles", "sessions", "learn_events", "llm_events"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
			continue
		}
		if name != table {
			t.Errorf("table name = %q, want %q", name, table)
		}
	}
}

func TestGoalSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	g := testGoal("g1", "alice")
	if err := s.SaveGoal(ctx, g); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.GetGoal(ctx, "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != g.Name {
		t.Errorf("name = %q, want %q", got.Name, g.Name)
	}
	if len(got.Path) != 3 {
		t.Fatalf("path length = %d, want 3", len(got.Path))
	}
	if got.Path[1].ID != "C2" || got.Path[1].Status != path.StatusOpen {
		t.Errorf("path[1] = %+v, want C2/open", got.Path[1])
	}

	// Saving again replaces the whole document.
	g.Path[0].Status = path.StatusMastered
	if err := s.SaveGoal(ctx, g); err != nil {
		t.Fatalf("resave: %v", err)
	}
	got, err = s.GetGoal(ctx, "g1")
	if err != nil {
		t.Fatalf("get after resave: %v", err)
	}
	if got.Path[0].Status != path.StatusMastered {
		t.Errorf("path[0].status = %q, want mastered", got.Path[0].Status)
	}
}

func TestGoalNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetGoal(context.Background(), "missing")
	var notFound *ErrGoalNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *ErrGoalNotFound", err)
	}
	if notFound.GoalID != "missing" {
		t.Errorf("goal id = %q, want 'missing'", notFound.GoalID)
	}
}

func TestListGoalsByUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveGoal(ctx, testGoal("g1", "alice")); err != nil {
		t.Fatalf("save g1: %v", err)
	}
	time.Sleep(5 * time.Millisecond) // distinct updated_at
	if err := s.SaveGoal(ctx, testGoal("g2", "alice")); err != nil {
		t.Fatalf("save g2: %v", err)
	}
	if err := s.SaveGoal(ctx, testGoal("g3", "bob")); err != nil {
		t.Fatalf("save g3: %v", err)
	}

	goals, err := s.ListGoals(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(goals) != 2 {
		t.Fatalf("got %d goals, want 2", len(goals))
	}
	// Most recently updated first.
	if goals[0].GoalID != "g2" || goals[1].GoalID != "g1" {
		t.Errorf("order = [%s %s], want [g2 g1]", goals[0].GoalID, goals[1].GoalID)
	}
}

func TestUpdateConceptStatus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveGoal(ctx, testGoal("g1", "alice")); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := s.UpdateConceptStatus(ctx, "g1", "C1", path.StatusActive); err != nil {
		t.Fatalf("open -> active: %v", err)
	}
	got, err := s.GetGoal(ctx, "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Path[0].Status != path.StatusActive {
		t.Errorf("status = %q, want active", got.Path[0].Status)
	}

	// Same status again is a no-op, not an error.
	if err := s.UpdateConceptStatus(ctx, "g1", "C1", path.StatusActive); err != nil {
		t.Errorf("idempotent write: %v", err)
	}
}

func TestUpdateConceptStatusRejectsInvalidTransition(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveGoal(ctx, testGoal("g1", "alice")); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Open -> reactivated is not in the lifecycle.
	err := s.UpdateConceptStatus(ctx, "g1", "C1", path.StatusReactivated)
	var invalid *path.ErrInvalidTransition
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want *path.ErrInvalidTransition", err)
	}

	// The stored document is untouched.
	got, err := s.GetGoal(ctx, "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Path[0].Status != path.StatusOpen {
		t.Errorf("status = %q, want open after rejected transition", got.Path[0].Status)
	}
}

func TestUpdateConceptStatusUnknownConcept(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveGoal(ctx, testGoal("g1", "alice")); err != nil {
		t.Fatalf("save: %v", err)
	}

	err := s.UpdateConceptStatus(ctx, "g1", "nope", path.StatusActive)
	var notFound *path.ErrConceptNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *path.ErrConceptNotFound", err)
	}
}

func TestProfileSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Missing profile is not an error.
	_, found, err := s.GetUserProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("get (empty): %v", err)
	}
	if found {
		t.Fatal("expected no profile before save")
	}

	score := 84
	p := &path.UserProfile{
		UserID:          "alice",
		StylePreference: "visual",
		ComplexityLevel: "detailed",
		Language:        "de",
		LastTestScore:   &score,
		ErrorPatterns:   []string{"confuses rows and columns"},
	}
	if err := s.SaveUserProfile(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, found, err := s.GetUserProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found {
		t.Fatal("expected profile after save")
	}
	if got.Language != "de" {
		t.Errorf("language = %q, want 'de'", got.Language)
	}
	if got.LastTestScore == nil || *got.LastTestScore != 84 {
		t.Errorf("last test score = %v, want 84", got.LastTestScore)
	}
	if len(got.ErrorPatterns) != 1 {
		t.Errorf("error patterns = %v, want one entry", got.ErrorPatterns)
	}
}

func TestSessionSaveLoadDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	state, _ := json.Marshal(map[string]string{"currentId": "C2"})
	rec := &SessionRecord{
		UserID: "alice",
		GoalID: "g1",
		Name:   "evening session",
		Phase:  "chat_with_tutor",
		State:  state,
	}
	if err := s.SaveSession(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, found, err := s.GetSession(ctx, "alice", "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found {
		t.Fatal("expected saved session")
	}
	if got.Phase != "chat_with_tutor" {
		t.Errorf("phase = %q, want chat_with_tutor", got.Phase)
	}
	if got.SavedAt.IsZero() {
		t.Error("expected SavedAt to be populated")
	}

	// Re-saving overwrites the snapshot for the same (user, goal).
	rec.Phase = "test_generation"
	if err := s.SaveSession(ctx, rec); err != nil {
		t.Fatalf("resave: %v", err)
	}
	list, err := s.ListSessions(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d sessions, want 1", len(list))
	}
	if list[0].Phase != "test_generation" {
		t.Errorf("phase after resave = %q, want test_generation", list[0].Phase)
	}

	if err := s.DeleteSession(ctx, "alice", "g1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, found, err = s.GetSession(ctx, "alice", "g1")
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if found {
		t.Error("expected session gone after delete")
	}

	// Deleting again is a no-op.
	if err := s.DeleteSession(ctx, "alice", "g1"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()
	ctx := context.Background()

	sc, err := newSeqAllocator(db)
	if err != nil {
		t.Fatalf("new sequence allocator: %v", err)
	}

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestLearnEventAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	score := 45
	events := []LearnEvent{
		{UserID: "alice", GoalID: "g1", Type: EventGoalCreated, Text: "Linear Algebra Basics"},
		{UserID: "alice", GoalID: "g1", ConceptID: "C1", Type: EventMaterialShown},
		{UserID: "alice", GoalID: "g1", ConceptID: "C1", Type: EventTestScored, Score: &score},
		{UserID: "bob", GoalID: "g9", Type: EventGoalCreated},
	}
	for i, e := range events {
		if err := repo.AppendLearnEvent(ctx, e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got, err := repo.QueryLearnEvents(ctx, QueryOpts{UserID: "alice", GoalID: "g1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	// Newest first.
	if got[0].Type != EventTestScored {
		t.Errorf("first event = %q, want %q", got[0].Type, EventTestScored)
	}
	if got[0].Score == nil || *got[0].Score != 45 {
		t.Errorf("score = %v, want 45", got[0].Score)
	}
	if got[2].Type != EventGoalCreated {
		t.Errorf("last event = %q, want %q", got[2].Type, EventGoalCreated)
	}

	// Limit applies after ordering.
	got, err = repo.QueryLearnEvents(ctx, QueryOpts{UserID: "alice", Limit: 1})
	if err != nil {
		t.Fatalf("query with limit: %v", err)
	}
	if len(got) != 1 || got[0].Type != EventTestScored {
		t.Errorf("limited query = %+v, want single newest event", got)
	}
}

func TestLLMEventAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider:     "anthropic",
		Model:        "claude-sonnet-4-5",
		Purpose:      "material",
		InputTokens:  1200,
		OutputTokens: 450,
		LatencyMs:    2100,
		Success:      true,
		RequestBody:  `{"system":"..."}`,
		ResponseBody: `{"title":"..."}`,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	err = repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider:     "anthropic",
		Model:        "claude-sonnet-4-5",
		Purpose:      "diagnosis",
		Success:      false,
		ErrorMessage: "rate limited",
	})
	if err != nil {
		t.Fatalf("append failure event: %v", err)
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Purpose != "diagnosis" || events[0].Success {
		t.Errorf("newest event = %+v, want failed diagnosis", events[0])
	}

	// Purpose filter.
	events, err = repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "material"})
	if err != nil {
		t.Fatalf("query by purpose: %v", err)
	}
	if len(events) != 1 || events[0].InputTokens != 1200 {
		t.Errorf("filtered query = %+v, want the material event", events)
	}

	// Lookup by ID.
	e, err := repo.GetLLMEvent(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil || e.ResponseBody != `{"title":"..."}` {
		t.Errorf("get by id = %+v, want stored bodies", e)
	}

	// Missing ID returns nil, not an error.
	e, err = repo.GetLLMEvent(ctx, 999999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if e != nil {
		t.Errorf("expected nil for missing event, got %+v", e)
	}
}

func TestLLMUsageAggregation(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider: "openai", Model: "gpt-5-mini", Purpose: "chat",
			InputTokens: 100, OutputTokens: 50, LatencyMs: 1000, Success: true,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "openai", Model: "gpt-5", Purpose: "test-eval",
		InputTokens: 500, OutputTokens: 200, LatencyMs: 3000, Success: true,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("got %d purposes, want 2", len(byPurpose))
	}
	// Ordered by purpose: chat, test-eval.
	if byPurpose[0].Purpose != "chat" || byPurpose[0].Calls != 3 || byPurpose[0].InputTokens != 300 {
		t.Errorf("chat usage = %+v, want 3 calls / 300 input tokens", byPurpose[0])
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 {
		t.Fatalf("got %d models, want 2", len(byModel))
	}
	if byModel[0].Model != "gpt-5" || byModel[0].AvgLatencyMs != 3000 {
		t.Errorf("gpt-5 usage = %+v, want avg latency 3000", byModel[0])
	}
}

func TestSequenceSharedAcrossEventKinds(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	// Interleave learn and LLM events; the shared counter must order them
	// globally, not per table.
	if err := repo.AppendLearnEvent(ctx, LearnEvent{UserID: "alice", Type: EventGoalCreated}); err != nil {
		t.Fatalf("append learn: %v", err)
	}
	if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "m", Purpose: "chat", Success: true}); err != nil {
		t.Fatalf("append llm: %v", err)
	}
	if err := repo.AppendLearnEvent(ctx, LearnEvent{UserID: "alice", Type: EventTutorReply}); err != nil {
		t.Fatalf("append learn: %v", err)
	}

	learn, err := repo.QueryLearnEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query learn: %v", err)
	}
	llm, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query llm: %v", err)
	}
	if len(learn) != 2 || len(llm) != 1 {
		t.Fatalf("got %d learn / %d llm events, want 2 / 1", len(learn), len(llm))
	}

	// learn[1] (oldest) < llm[0] < learn[0] (newest).
	if !(learn[1].Sequence < llm[0].ID && llm[0].ID < learn[0].Sequence) {
		t.Errorf("sequences not interleaved: learn=[%d %d] llm=[%d]",
			learn[0].Sequence, learn[1].Sequence, llm[0].ID)
	}
}
