// Package server exposes the tutoring engine over HTTP. Every learn-flow
// endpoint drives one or two engine phases against the session snapshot
// stored per (user, goal), so the API stays stateless between requests.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/lernpath/internal/engine"
	"github.com/abhisek/lernpath/internal/oracle"
	"github.com/abhisek/lernpath/internal/store"
)

const shutdownGrace = 10 * time.Second

// Config holds server settings.
type Config struct {
	Addr string // listen address, e.g. ":8080"
}

// Server wires the engine and store into a gin router.
type Server struct {
	engine *engine.Engine
	store  *store.Store
	log    *zap.Logger
	cfg    Config
}

// New creates a Server. A nil logger disables request logging.
func New(eng *engine.Engine, st *store.Store, log *zap.Logger, cfg Config) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	return &Server{engine: eng, store: st, log: log, cfg: cfg}
}

// Router builds the HTTP routing table.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/goals", s.startGoal)

		goal := api.Group("/goals/:goalID")
		{
			goal.POST("/assessment", s.issueAssessment)
			goal.POST("/assessment/answers", s.scoreAssessment)
			goal.GET("/material", s.getMaterial)
			goal.POST("/chat", s.chat)
			goal.POST("/gap", s.reportGap)
			goal.POST("/remediate", s.remediate)
			goal.POST("/test", s.issueTest)
			goal.POST("/test/answers", s.scoreTest)
		}

		sessions := api.Group("/sessions")
		{
			sessions.GET("", s.listSessions)
			sessions.GET("/:goalID", s.getSession)
			sessions.DELETE("/:goalID", s.deleteSession)
		}
	}

	return r
}

// Serve runs the HTTP server until ctx is canceled, then drains in-flight
// requests within the shutdown grace period.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	return g.Wait()
}

// requestLog emits one structured line per request.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Response envelope shared by every endpoint.

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": "error", "message": message})
}

// fail logs the technical cause and sends the learner-readable message.
func (s *Server) fail(c *gin.Context, err error) {
	s.log.Warn("request failed",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	if errors.Is(err, errNoSession) {
		respondError(c, http.StatusNotFound, "No active session for this goal. Start the goal first.")
		return
	}
	respondError(c, httpStatus(err), engine.UserMessage(err))
}

// httpStatus maps the error taxonomy onto HTTP codes: missing documents
// are 404, phase preconditions 409, unusable oracle output 502, a failing
// store 503, everything else 500.
func httpStatus(err error) int {
	var notFound *store.ErrGoalNotFound
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	var noCurrent *engine.ErrNoCurrentConcept
	var noGoal *engine.ErrNoGoal
	var noQuestions *engine.ErrNoQuestions
	if errors.As(err, &noCurrent) || errors.As(err, &noGoal) || errors.As(err, &noQuestions) {
		return http.StatusConflict
	}
	var parseErr *oracle.ErrParse
	if errors.As(err, &parseErr) {
		return http.StatusBadGateway
	}
	var unavailable *store.ErrUnavailable
	if errors.As(err, &unavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// loadSession restores the engine state saved for (user, goal).
func (s *Server) loadSession(ctx context.Context, userID, goalID string) (*engine.SessionState, error) {
	rec, ok, err := s.store.GetSession(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNoSession
	}

	var state engine.SessionState
	if err := json.Unmarshal(rec.State, &state); err != nil {
		return nil, err
	}
	if phase, err := engine.ParsePhase(rec.Phase); err == nil {
		state.Next = phase
	}
	return &state, nil
}

// saveSession snapshots the engine state after a successful step chain.
func (s *Server) saveSession(ctx context.Context, state *engine.SessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}

	name := ""
	goalID := ""
	if state.Goal != nil {
		name = state.Goal.Name
		goalID = state.Goal.GoalID
	}
	return s.store.SaveSession(ctx, &store.SessionRecord{
		UserID: state.UserID,
		GoalID: goalID,
		Name:   name,
		Phase:  state.Next.String(),
		State:  raw,
	})
}

var errNoSession = errors.New("no saved session for this goal")
