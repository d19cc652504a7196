package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/abhisek/lernpath/internal/engine"
	"github.com/abhisek/lernpath/internal/oracle"
	"github.com/abhisek/lernpath/internal/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	// The genai dependency chain starts an opencensus stats worker in an
	// init() that never exits.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// newTestServer wires a real engine over the simulated oracle and a
// throwaway SQLite store, so handler tests cover the full stack.
func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "server_test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	eng := engine.New(oracle.NewSimulator(), st, engine.NewEventLog(st.EventRepo(), nil), engine.DefaultConfig())
	return New(eng, st, zap.NewNop(), Config{}), st
}

func doJSON(t *testing.T, h http.Handler, method, url string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var envelope map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w.Code, envelope
}

func dataOf(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	if envelope["status"] != "success" {
		t.Fatalf("envelope = %v, want success", envelope)
	}
	data, ok := envelope["data"].(map[string]any)
	if !ok {
		t.Fatalf("envelope data = %v, want an object", envelope["data"])
	}
	return data
}

// startTestGoal drives POST /api/goals and returns the goal ID.
func startTestGoal(t *testing.T, h http.Handler, userID string) string {
	t.Helper()

	code, envelope := doJSON(t, h, http.MethodPost, "/api/goals",
		gin.H{"userId": userID, "goalText": "algebra"})
	if code != http.StatusCreated {
		t.Fatalf("start goal status = %d, body %v", code, envelope)
	}

	data := dataOf(t, envelope)
	goal := data["goal"].(map[string]any)
	id, _ := goal["goalId"].(string)
	if id == "" {
		t.Fatal("no goal ID in response")
	}
	return id
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	code, envelope := doJSON(t, srv.Router(), http.MethodGet, "/healthz", nil)
	if code != http.StatusOK || envelope["status"] != "ok" {
		t.Fatalf("healthz = %d %v", code, envelope)
	}
}

func TestStartGoal_PresentsFirstMaterial(t *testing.T) {
	srv, st := newTestServer(t)
	router := srv.Router()

	code, envelope := doJSON(t, router, http.MethodPost, "/api/goals",
		gin.H{"userId": "alice", "goalText": "algebra"})
	if code != http.StatusCreated {
		t.Fatalf("status = %d, body %v", code, envelope)
	}

	data := dataOf(t, envelope)
	goal := data["goal"].(map[string]any)
	goalID, _ := goal["goalId"].(string)
	if !strings.HasPrefix(goalID, "G-") {
		t.Errorf("goalId = %q, want G- prefix", goalID)
	}

	material, _ := data["material"].(string)
	if !strings.Contains(material, "Foundations of algebra") {
		t.Errorf("material = %q, want the first concept's content", material)
	}
	current := data["currentConcept"].(map[string]any)
	if current["id"] != "C1" {
		t.Errorf("currentConcept = %v, want C1", current)
	}
	if data["nextPhase"] != "chat_with_tutor" {
		t.Errorf("nextPhase = %v, want chat_with_tutor", data["nextPhase"])
	}

	// The session snapshot is in place for the follow-up endpoints.
	if _, ok, err := st.GetSession(t.Context(), "alice", goalID); err != nil || !ok {
		t.Errorf("session not saved (ok=%v err=%v)", ok, err)
	}
}

func TestStartGoal_AssessmentDetour(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	code, envelope := doJSON(t, router, http.MethodPost, "/api/goals",
		gin.H{"userId": "alice", "goalText": "algebra", "assessment": true})
	if code != http.StatusCreated {
		t.Fatalf("status = %d, body %v", code, envelope)
	}

	data := dataOf(t, envelope)
	questions, _ := data["questions"].([]any)
	if len(questions) != 3 {
		t.Fatalf("questions = %d, want 3", len(questions))
	}
	if data["nextPhase"] != "prior_evaluation" {
		t.Fatalf("nextPhase = %v, want prior_evaluation", data["nextPhase"])
	}
	goalID := data["goal"].(map[string]any)["goalId"].(string)

	// A substantive answer on the first question proves that concept; the
	// flow resumes with material for the next one.
	code, envelope = doJSON(t, router, http.MethodPost, "/api/goals/"+goalID+"/assessment/answers",
		gin.H{
			"userId": "alice",
			"answers": gin.H{
				"Q1": "I have used the foundations for years and can explain each rule in my own words.",
				"Q2": "no idea",
				"Q3": "",
			},
		})
	if code != http.StatusOK {
		t.Fatalf("score status = %d, body %v", code, envelope)
	}

	data = dataOf(t, envelope)
	if feedback, _ := data["feedback"].(string); !strings.Contains(feedback, "solid prior knowledge") {
		t.Errorf("feedback = %q", feedback)
	}

	pathArr := data["path"].([]any)
	first := pathArr[0].(map[string]any)
	if first["status"] != "skipped" || first["expertiseSource"] != "prior-assessment" {
		t.Errorf("first concept = %v, want skipped via prior-assessment", first)
	}
	current := data["currentConcept"].(map[string]any)
	if current["id"] != "C2" {
		t.Errorf("currentConcept = %v, want C2", current)
	}
}

func TestChatGapRemediationFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()
	goalID := startTestGoal(t, router, "alice")
	base := "/api/goals/" + goalID

	code, envelope := doJSON(t, router, http.MethodPost, base+"/chat",
		gin.H{"userId": "alice", "message": "I think I never learned the basics behind this"})
	if code != http.StatusOK {
		t.Fatalf("chat status = %d, body %v", code, envelope)
	}
	data := dataOf(t, envelope)
	if data["gapDetected"] != true {
		t.Fatalf("gapDetected = %v, want true", data["gapDetected"])
	}
	if data["nextPhase"] != "gap_diagnosis" {
		t.Fatalf("nextPhase = %v, want gap_diagnosis", data["nextPhase"])
	}

	code, envelope = doJSON(t, router, http.MethodPost, base+"/gap", gin.H{"userId": "alice"})
	if code != http.StatusOK {
		t.Fatalf("gap status = %d, body %v", code, envelope)
	}
	data = dataOf(t, envelope)
	if question, _ := data["question"].(string); question == "" {
		t.Error("no diagnostic question")
	}
	if data["nextPhase"] != "remediation_execution" {
		t.Fatalf("nextPhase = %v, want remediation_execution", data["nextPhase"])
	}

	code, envelope = doJSON(t, router, http.MethodPost, base+"/remediate",
		gin.H{"userId": "alice", "missingConcept": "fractions"})
	if code != http.StatusOK {
		t.Fatalf("remediate status = %d, body %v", code, envelope)
	}
	data = dataOf(t, envelope)
	if message, _ := data["message"].(string); !strings.Contains(message, "fractions") {
		t.Errorf("message = %q, want it to name the gap", message)
	}

	pathArr := data["path"].([]any)
	if len(pathArr) != 4 {
		t.Fatalf("path length = %d, want 4 after insertion", len(pathArr))
	}
	head := pathArr[0].(map[string]any)
	if head["name"] != "fractions" || head["expertiseSource"] != "remediation" {
		t.Errorf("head = %v, want the inserted prerequisite", head)
	}
	current := data["currentConcept"].(map[string]any)
	if current["name"] != "fractions" {
		t.Errorf("currentConcept = %v, want the prerequisite", current)
	}
	if material, _ := data["material"].(string); !strings.Contains(material, "fractions") {
		t.Errorf("material = %q, want prerequisite material", material)
	}
}

func TestTestFlow_PassAdvances(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()
	goalID := startTestGoal(t, router, "alice")
	base := "/api/goals/" + goalID

	code, envelope := doJSON(t, router, http.MethodPost, base+"/test", gin.H{"userId": "alice"})
	if code != http.StatusOK {
		t.Fatalf("test status = %d, body %v", code, envelope)
	}
	questions := dataOf(t, envelope)["questions"].([]any)
	if len(questions) != 3 {
		t.Fatalf("questions = %d, want 3", len(questions))
	}

	code, envelope = doJSON(t, router, http.MethodPost, base+"/test/answers",
		gin.H{
			"userId": "alice",
			"answers": gin.H{
				"Q1": "It is the system of rules for rewriting expressions with unknowns.",
				"Q2": "Solving for the break-even point of a business plan uses exactly this.",
				"Q3": "Without it every equation would need guesswork instead of method.",
			},
		})
	if code != http.StatusOK {
		t.Fatalf("answers status = %d, body %v", code, envelope)
	}

	data := dataOf(t, envelope)
	result := data["result"].(map[string]any)
	if result["score"].(float64) != 100 || result["passed"] != true {
		t.Errorf("result = %v, want a full pass", result)
	}
	current := data["currentConcept"].(map[string]any)
	if current["id"] != "C2" {
		t.Errorf("currentConcept = %v, want advance to C2", current)
	}
	if data["goalStatus"] != "in_progress" {
		t.Errorf("goalStatus = %v", data["goalStatus"])
	}
	if data["nextPhase"] != "material_generation" {
		t.Errorf("nextPhase = %v, want material_generation", data["nextPhase"])
	}
}

func TestTestFlow_FailHoldsPosition(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()
	goalID := startTestGoal(t, router, "alice")
	base := "/api/goals/" + goalID

	if code, _ := doJSON(t, router, http.MethodPost, base+"/test", gin.H{"userId": "alice"}); code != http.StatusOK {
		t.Fatalf("test status = %d", code)
	}

	code, envelope := doJSON(t, router, http.MethodPost, base+"/test/answers",
		gin.H{"userId": "alice", "answers": gin.H{"Q1": "dunno", "Q2": "", "Q3": "?"}})
	if code != http.StatusOK {
		t.Fatalf("answers status = %d, body %v", code, envelope)
	}

	data := dataOf(t, envelope)
	result := data["result"].(map[string]any)
	if result["passed"] != false {
		t.Errorf("result = %v, want a fail", result)
	}
	current := data["currentConcept"].(map[string]any)
	if current["id"] != "C1" {
		t.Errorf("currentConcept = %v, want to stay on C1", current)
	}
	if current["status"] != "review" {
		t.Errorf("concept status = %v, want review", current["status"])
	}
	if data["nextPhase"] != "material_generation" {
		t.Errorf("nextPhase = %v, want re-study material", data["nextPhase"])
	}
}

func TestSessions_ListGetDelete(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()
	goalID := startTestGoal(t, router, "alice")

	code, envelope := doJSON(t, router, http.MethodGet, "/api/sessions?userId=alice", nil)
	if code != http.StatusOK {
		t.Fatalf("list status = %d", code)
	}
	sessions := dataOf(t, envelope)["sessions"].([]any)
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions))
	}
	first := sessions[0].(map[string]any)
	if first["goalId"] != goalID || first["phase"] != "chat_with_tutor" {
		t.Errorf("summary = %v", first)
	}
	if _, hasState := first["state"]; hasState {
		t.Error("list leaks state payloads")
	}

	code, envelope = doJSON(t, router, http.MethodGet, "/api/sessions/"+goalID+"?userId=alice", nil)
	if code != http.StatusOK {
		t.Fatalf("get status = %d", code)
	}
	rec := dataOf(t, envelope)
	if rec["state"] == nil {
		t.Error("get must include the resumable state")
	}

	code, envelope = doJSON(t, router, http.MethodDelete, "/api/sessions/"+goalID+"?userId=alice", nil)
	if code != http.StatusOK || dataOf(t, envelope)["deleted"] != true {
		t.Fatalf("delete = %d %v", code, envelope)
	}

	code, envelope = doJSON(t, router, http.MethodPost, "/api/goals/"+goalID+"/chat",
		gin.H{"userId": "alice", "message": "hello?"})
	if code != http.StatusNotFound {
		t.Fatalf("chat after delete = %d, want 404", code)
	}
	if envelope["status"] != "error" {
		t.Errorf("envelope = %v, want error status", envelope)
	}
	if message, _ := envelope["message"].(string); !strings.Contains(message, "No active session") {
		t.Errorf("message = %q", message)
	}
}

func TestValidation_RejectsIncompleteRequests(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	code, envelope := doJSON(t, router, http.MethodPost, "/api/goals", gin.H{"userId": "alice"})
	if code != http.StatusBadRequest || envelope["status"] != "error" {
		t.Errorf("missing goalText = %d %v", code, envelope)
	}

	goalID := startTestGoal(t, router, "alice")
	code, envelope = doJSON(t, router, http.MethodPost, "/api/goals/"+goalID+"/chat",
		gin.H{"userId": "alice"})
	if code != http.StatusBadRequest || envelope["status"] != "error" {
		t.Errorf("missing message = %d %v", code, envelope)
	}

	code, _ = doJSON(t, router, http.MethodGet, "/api/goals/"+goalID+"/material", nil)
	if code != http.StatusBadRequest {
		t.Errorf("material without userId = %d, want 400", code)
	}
}
