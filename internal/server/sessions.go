package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type sessionSummary struct {
	GoalID  string `json:"goalId"`
	Name    string `json:"name"`
	Phase   string `json:"phase"`
	SavedAt string `json:"savedAt"`
}

// listSessions returns the user's saved sessions, newest first, without
// the state payloads.
func (s *Server) listSessions(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		respondError(c, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	recs, err := s.store.ListSessions(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}

	summaries := make([]sessionSummary, 0, len(recs))
	for _, rec := range recs {
		summaries = append(summaries, sessionSummary{
			GoalID:  rec.GoalID,
			Name:    rec.Name,
			Phase:   rec.Phase,
			SavedAt: rec.SavedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	respondOK(c, gin.H{"sessions": summaries})
}

// getSession returns one saved session including the resumable state.
func (s *Server) getSession(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		respondError(c, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	rec, ok, err := s.store.GetSession(c.Request.Context(), userID, c.Param("goalID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if !ok {
		respondError(c, http.StatusNotFound, "no saved session for this goal")
		return
	}
	respondOK(c, rec)
}

// deleteSession discards a saved session. The goal itself stays.
func (s *Server) deleteSession(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		respondError(c, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	if err := s.store.DeleteSession(c.Request.Context(), userID, c.Param("goalID")); err != nil {
		s.fail(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}
