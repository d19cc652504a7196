package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/lernpath/internal/engine"
	"github.com/abhisek/lernpath/internal/path"
)

type startGoalRequest struct {
	UserID     string `json:"userId" binding:"required"`
	GoalText   string `json:"goalText" binding:"required"`
	Language   string `json:"language" binding:"omitempty,oneof=en de"`
	Assessment bool   `json:"assessment"`
}

type userRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type chatRequest struct {
	UserID  string `json:"userId" binding:"required"`
	Message string `json:"message" binding:"required"`
}

type remediateRequest struct {
	UserID         string `json:"userId" binding:"required"`
	MissingConcept string `json:"missingConcept" binding:"required"`
}

type answersRequest struct {
	UserID  string            `json:"userId" binding:"required"`
	Answers map[string]string `json:"answers" binding:"required"`
}

// startGoal creates a goal and either issues the prior-knowledge
// assessment or presents the first material, mirroring the engine's
// entry transition.
func (s *Server) startGoal(c *gin.Context) {
	var req startGoalRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "userId and goalText are required")
		return
	}
	ctx := c.Request.Context()

	profile, found, err := s.store.GetUserProfile(ctx, req.UserID)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !found {
		profile = &path.UserProfile{UserID: req.UserID, Language: "en"}
	}
	if req.Language != "" {
		profile.Language = req.Language
	}
	profile.AssessmentEnabled = req.Assessment
	if err := s.store.SaveUserProfile(ctx, profile); err != nil {
		s.fail(c, err)
		return
	}

	state := &engine.SessionState{
		UserID:    req.UserID,
		LastInput: req.GoalText,
		Profile:   *profile,
	}

	state, out, err := s.engine.Step(ctx, state, engine.PhaseGoalCreation)
	if err != nil {
		s.fail(c, err)
		return
	}

	data := gin.H{
		"goal":        state.Goal,
		"refinedGoal": state.LastOutput,
	}

	// The entry transition either detours through the assessment or goes
	// straight to the first material; run that one step too so the client
	// always has something to show.
	state, out, err = s.engine.Step(ctx, state, out.Next)
	if err != nil {
		s.fail(c, err)
		return
	}
	if len(state.Questions) > 0 {
		data["questions"] = state.Questions
	} else {
		data["material"] = state.LastOutput
		data["currentConcept"] = currentConcept(state)
	}
	data["nextPhase"] = out.Next.String()

	if err := s.saveSession(ctx, state); err != nil {
		s.fail(c, err)
		return
	}
	respondCreated(c, data)
}

// issueAssessment (re)creates the prior-knowledge questions.
func (s *Server) issueAssessment(c *gin.Context) {
	var req userRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "userId is required")
		return
	}
	s.drive(c, req.UserID, func(st *engine.SessionState) {}, engine.PhasePriorAssessment,
		func(st *engine.SessionState, out engine.Outcome) gin.H {
			return gin.H{"questions": st.Questions, "nextPhase": out.Next.String()}
		})
}

// scoreAssessment evaluates the answers, skips proven concepts and, when
// the path is not already covered, presents material for the first real
// concept.
func (s *Server) scoreAssessment(c *gin.Context) {
	var req answersRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "userId and answers are required")
		return
	}
	ctx := c.Request.Context()

	state, err := s.loadSession(ctx, req.UserID, c.Param("goalID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	state.Answers = req.Answers

	state, out, err := s.engine.Step(ctx, state, engine.PhasePriorEvaluation)
	if err != nil {
		s.fail(c, err)
		return
	}

	data := gin.H{
		"feedback":   state.LastOutput,
		"path":       state.Goal.Path,
		"goalStatus": state.Goal.Status,
	}

	if out.Mode != engine.ModeTerminal {
		state, out, err = s.engine.Step(ctx, state, out.Next)
		if err != nil {
			s.fail(c, err)
			return
		}
		data["material"] = state.LastOutput
		data["currentConcept"] = currentConcept(state)
	}
	data["nextPhase"] = out.Next.String()

	if err := s.saveSession(ctx, state); err != nil {
		s.fail(c, err)
		return
	}
	respondOK(c, data)
}

// getMaterial generates (or regenerates) material for the current concept.
func (s *Server) getMaterial(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		respondError(c, http.StatusBadRequest, "userId query parameter is required")
		return
	}
	s.drive(c, userID, func(st *engine.SessionState) {}, engine.PhaseMaterialGeneration,
		func(st *engine.SessionState, out engine.Outcome) gin.H {
			return gin.H{
				"material":       st.LastOutput,
				"currentConcept": currentConcept(st),
				"nextPhase":      out.Next.String(),
			}
		})
}

// chat runs one tutor exchange. When the reply exposes a prerequisite gap
// the response says so and the client follows up on /gap.
func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "userId and message are required")
		return
	}
	s.drive(c, req.UserID, func(st *engine.SessionState) { st.LastInput = req.Message },
		engine.PhaseChatWithTutor,
		func(st *engine.SessionState, out engine.Outcome) gin.H {
			return gin.H{
				"reply":       st.LastOutput,
				"affect":      st.LastAffect,
				"gapDetected": st.RemediationPending,
				"nextPhase":   out.Next.String(),
			}
		})
}

// reportGap opens the diagnostic dialogue, whether the learner raised the
// gap indicator or the tutor detected one in chat.
func (s *Server) reportGap(c *gin.Context) {
	var req userRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "userId is required")
		return
	}
	s.drive(c, req.UserID, func(st *engine.SessionState) {}, engine.PhaseGapDiagnosis,
		func(st *engine.SessionState, out engine.Outcome) gin.H {
			return gin.H{"question": st.LastOutput, "nextPhase": out.Next.String()}
		})
}

// remediate performs path surgery for the named missing concept and
// presents material for the inserted prerequisite.
func (s *Server) remediate(c *gin.Context) {
	var req remediateRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "userId and missingConcept are required")
		return
	}
	ctx := c.Request.Context()

	state, err := s.loadSession(ctx, req.UserID, c.Param("goalID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	state.LastInput = req.MissingConcept

	state, _, err = s.engine.Step(ctx, state, engine.PhaseRemediationExecution)
	if err != nil {
		s.fail(c, err)
		return
	}
	message := state.LastOutput

	state, out, err := s.engine.Step(ctx, state, engine.PhaseMaterialGeneration)
	if err != nil {
		s.fail(c, err)
		return
	}

	if err := s.saveSession(ctx, state); err != nil {
		s.fail(c, err)
		return
	}
	respondOK(c, gin.H{
		"message":        message,
		"path":           state.Goal.Path,
		"currentConcept": currentConcept(state),
		"material":       state.LastOutput,
		"nextPhase":      out.Next.String(),
	})
}

// issueTest generates the comprehension test for the current concept.
func (s *Server) issueTest(c *gin.Context) {
	var req userRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "userId is required")
		return
	}
	s.drive(c, req.UserID, func(st *engine.SessionState) {}, engine.PhaseTestGeneration,
		func(st *engine.SessionState, out engine.Outcome) gin.H {
			return gin.H{"questions": st.Questions, "nextPhase": out.Next.String()}
		})
}

// scoreTest evaluates the answers and reports the progression outcome.
func (s *Server) scoreTest(c *gin.Context) {
	var req answersRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "userId and answers are required")
		return
	}
	s.drive(c, req.UserID, func(st *engine.SessionState) { st.Answers = req.Answers },
		engine.PhaseTestEvaluation,
		func(st *engine.SessionState, out engine.Outcome) gin.H {
			data := gin.H{
				"result":     st.LastResult,
				"goalStatus": st.Goal.Status,
				"nextPhase":  out.Next.String(),
			}
			if concept := currentConcept(st); concept != nil {
				data["currentConcept"] = concept
			}
			return data
		})
}

// drive is the shared single-step handler skeleton: load the session,
// apply the request's input, run one phase, snapshot, respond.
func (s *Server) drive(c *gin.Context, userID string, prepare func(*engine.SessionState), phase engine.Phase, render func(*engine.SessionState, engine.Outcome) gin.H) {
	ctx := c.Request.Context()

	state, err := s.loadSession(ctx, userID, c.Param("goalID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	prepare(state)

	state, out, err := s.engine.Step(ctx, state, phase)
	if err != nil {
		s.fail(c, err)
		return
	}

	if err := s.saveSession(ctx, state); err != nil {
		s.fail(c, err)
		return
	}
	respondOK(c, render(state, out))
}

// currentConcept returns the concept the session is positioned on, nil
// when the goal is complete.
func currentConcept(state *engine.SessionState) *path.Concept {
	if concept, ok := state.Current(); ok {
		return &concept
	}
	return nil
}
