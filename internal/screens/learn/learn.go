package learn

import (
	"context"
	"encoding/json"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lernpath/internal/engine"
	"github.com/abhisek/lernpath/internal/path"
	"github.com/abhisek/lernpath/internal/router"
	"github.com/abhisek/lernpath/internal/screen"
	"github.com/abhisek/lernpath/internal/store"
	"github.com/abhisek/lernpath/internal/ui/components"
	"github.com/abhisek/lernpath/internal/ui/layout"
)

// mode is what the screen is currently asking of the learner.
type mode int

const (
	modeGoal       mode = iota // typing the learning goal
	modeWorking                // an engine step is in flight
	modeAssessment             // answering the prior knowledge check
	modeChat                   // reading material, chatting with the tutor
	modeGap                    // naming the missing prerequisite
	modeTest                   // answering test questions
	modeResult                 // showing the evaluation
	modeDone                   // goal complete
)

// transcript roles
const (
	roleTutor = "tutor"
	roleYou   = "you"
	roleNote  = "note"
)

// entry is one transcript line group.
type entry struct {
	role string
	text string
}

// maxTranscript bounds the kept history; old exchanges live in the journal.
const maxTranscript = 200

// sessionStore is the slice of persistence the screen needs for snapshots.
type sessionStore interface {
	SaveSession(ctx context.Context, rec *store.SessionRecord) error
	DeleteSession(ctx context.Context, userID, goalID string) error
}

// LearnScreen drives one learning session: goal creation, material, tutor
// chat, gap remediation and tests, one engine step per learner action.
// Every successful step snapshots the session, so Esc never loses work.
type LearnScreen struct {
	engine   *engine.Engine
	sessions sessionStore

	state       *engine.SessionState
	mode        mode
	pending     engine.Outcome // transition held back while showing a result
	quitConfirm bool

	input      components.TextInput
	transcript []entry
	scroll     int // lines scrolled up from the transcript bottom
	qIndex     int
	answers    map[string]string

	working  string // progress note while a step runs
	saveNote string // set when the last snapshot write failed
}

var _ screen.Screen = (*LearnScreen)(nil)
var _ screen.KeyHintProvider = (*LearnScreen)(nil)
var _ screen.EscCapturer = (*LearnScreen)(nil)

// New creates the screen for starting a fresh goal.
func New(eng *engine.Engine, sessions sessionStore, profile path.UserProfile) *LearnScreen {
	return &LearnScreen{
		engine:   eng,
		sessions: sessions,
		state: &engine.SessionState{
			UserID:  profile.UserID,
			Profile: profile,
		},
		mode:  modeGoal,
		input: components.NewTextInput("What do you want to learn?", 300),
	}
}

// Resume recreates the screen from a saved session snapshot.
func Resume(eng *engine.Engine, sessions sessionStore, rec *store.SessionRecord) (*LearnScreen, error) {
	var state engine.SessionState
	if err := json.Unmarshal(rec.State, &state); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}
	phase, err := engine.ParsePhase(rec.Phase)
	if err != nil {
		return nil, fmt.Errorf("saved session: %w", err)
	}
	state.Next = phase

	s := &LearnScreen{
		engine:   eng,
		sessions: sessions,
		state:    &state,
		input:    components.NewTextInput("", 300),
	}
	s.restoreAt(phase)
	return s, nil
}

// restoreAt picks the mode a resumed session re-enters in, based on the
// phase the snapshot was waiting for.
func (s *LearnScreen) restoreAt(phase engine.Phase) {
	if s.state.Goal != nil {
		s.note(fmt.Sprintf("Welcome back to %q.", s.state.Goal.Name))
	}

	switch phase {
	case engine.PhasePriorEvaluation:
		s.beginQuestions(modeAssessment)
	case engine.PhaseTestEvaluation:
		s.beginQuestions(modeTest)
	case engine.PhaseRemediationExecution:
		if s.state.LastOutput != "" {
			s.say(roleTutor, s.state.LastOutput)
		}
		s.enterGapMode()
	case engine.PhaseChatWithTutor:
		if s.state.LastOutput != "" {
			s.say(roleTutor, s.state.LastOutput)
		}
		s.enterChatMode()
	case engine.PhaseGoalComplete:
		s.mode = modeDone
	default:
		// Mid-chain snapshot: run the pending phase on entry.
		s.mode = modeWorking
		s.working = workingNote(phase)
	}
}

func (s *LearnScreen) Title() string {
	if s.state.Goal != nil {
		return s.state.Goal.Name
	}
	return "New Goal"
}

func (s *LearnScreen) CapturesEsc() bool { return true }

func (s *LearnScreen) Init() tea.Cmd {
	if s.mode == modeWorking {
		return tea.Batch(s.input.Init(), s.step(s.state.Next, nil))
	}
	return s.input.Init()
}

func (s *LearnScreen) KeyHints() []layout.KeyHint {
	if s.quitConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "Pause and exit"},
			{Key: "N", Description: "Keep going"},
		}
	}
	switch s.mode {
	case modeGoal:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Back"},
		}
	case modeChat:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Send"},
			{Key: "Ctrl+T", Description: "Take the test"},
			{Key: "Ctrl+G", Description: "Something's missing"},
			{Key: "Esc", Description: "Pause"},
		}
	case modeAssessment, modeTest:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit (blank = skip)"},
			{Key: "Esc", Description: "Pause"},
		}
	case modeGap:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Add to my path"},
			{Key: "Esc", Description: "Pause"},
		}
	case modeResult, modeDone:
		return []layout.KeyHint{
			{Key: "any key", Description: "Continue"},
		}
	}
	return []layout.KeyHint{
		{Key: "Esc", Description: "Pause"},
	}
}

func (s *LearnScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case stepDoneMsg:
		return s.handleStepDone(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.acceptsTyping() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// acceptsTyping reports whether the input line is live.
func (s *LearnScreen) acceptsTyping() bool {
	if s.quitConfirm {
		return false
	}
	switch s.mode {
	case modeGoal, modeChat, modeGap, modeAssessment, modeTest:
		return true
	}
	return false
}

func (s *LearnScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.quitConfirm {
		switch key {
		case "y", "Y":
			return s, popCmd()
		case "n", "N", "esc":
			s.quitConfirm = false
		}
		return s, nil
	}

	switch s.mode {
	case modeGoal:
		switch key {
		case "esc":
			return s, popCmd()
		case "enter":
			return s.submitGoal()
		}

	case modeChat:
		switch key {
		case "esc":
			s.quitConfirm = true
			return s, nil
		case "enter":
			return s.submitChat()
		case "ctrl+t":
			return s.begin(engine.PhaseTestGeneration, nil)
		case "ctrl+g":
			return s.begin(engine.PhaseGapDiagnosis, nil)
		case "up":
			s.scroll++
			return s, nil
		case "down":
			if s.scroll > 0 {
				s.scroll--
			}
			return s, nil
		}

	case modeAssessment, modeTest:
		switch key {
		case "esc":
			s.quitConfirm = true
			return s, nil
		case "enter":
			return s.submitAnswer()
		}

	case modeGap:
		switch key {
		case "esc":
			s.quitConfirm = true
			return s, nil
		case "enter":
			return s.submitGap()
		}

	case modeResult:
		return s.afterResult()

	case modeDone:
		return s, popCmd()

	case modeWorking:
		if key == "esc" {
			s.quitConfirm = true
		}
		return s, nil
	}

	if s.acceptsTyping() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *LearnScreen) submitGoal() (screen.Screen, tea.Cmd) {
	text := s.input.Value()
	if text == "" {
		return s, nil
	}
	s.input.Reset()
	s.say(roleYou, text)
	return s.begin(engine.PhaseGoalCreation, func(st *engine.SessionState) {
		st.LastInput = text
	})
}

func (s *LearnScreen) submitChat() (screen.Screen, tea.Cmd) {
	text := s.input.Value()
	if text == "" {
		return s, nil
	}
	s.input.Reset()
	s.say(roleYou, text)
	return s.begin(engine.PhaseChatWithTutor, func(st *engine.SessionState) {
		st.LastInput = text
	})
}

func (s *LearnScreen) submitGap() (screen.Screen, tea.Cmd) {
	text := s.input.Value()
	if text == "" {
		return s, nil
	}
	s.input.Reset()
	s.say(roleYou, text)
	return s.begin(engine.PhaseRemediationExecution, func(st *engine.SessionState) {
		st.LastInput = text
	})
}

// submitAnswer records the answer for the current question and either
// moves to the next one or hands the full set to the evaluator. Once all
// questions are answered, Enter resubmits, so a failed evaluation can be
// retried without retyping.
func (s *LearnScreen) submitAnswer() (screen.Screen, tea.Cmd) {
	if s.qIndex < len(s.state.Questions) {
		q := s.state.Questions[s.qIndex]
		s.answers[q.ID] = s.input.Value()
		s.input.Reset()
		s.qIndex++

		if s.qIndex < len(s.state.Questions) {
			return s, nil
		}
	}

	answers := s.answers
	phase := engine.PhaseTestEvaluation
	if s.mode == modeAssessment {
		phase = engine.PhasePriorEvaluation
	}
	return s.begin(phase, func(st *engine.SessionState) {
		st.Answers = answers
	})
}

// afterResult resumes the flow the evaluation decided on.
func (s *LearnScreen) afterResult() (screen.Screen, tea.Cmd) {
	if s.pending.Mode == engine.ModeTerminal {
		s.mode = modeDone
		return s, nil
	}
	return s.begin(s.pending.Next, nil)
}

// begin switches to the working mode and launches one engine step.
func (s *LearnScreen) begin(phase engine.Phase, prep func(*engine.SessionState)) (screen.Screen, tea.Cmd) {
	s.mode = modeWorking
	s.working = workingNote(phase)
	return s, s.step(phase, prep)
}

// step runs one engine phase off the UI goroutine. The snapshot write
// rides in the same command so the resume point always trails the
// committed step.
func (s *LearnScreen) step(phase engine.Phase, prep func(*engine.SessionState)) tea.Cmd {
	st := s.state.Clone()
	if prep != nil {
		prep(st)
	}
	eng := s.engine
	sessions := s.sessions

	return func() tea.Msg {
		ctx := context.Background()
		next, out, err := eng.Step(ctx, st, phase)
		if err != nil {
			return stepDoneMsg{Ran: phase, Err: err}
		}
		return stepDoneMsg{
			Ran:     phase,
			State:   next,
			Out:     out,
			SaveErr: snapshot(ctx, sessions, next, out),
		}
	}
}

// snapshot persists the post-step session, or clears it once the goal is
// complete.
func snapshot(ctx context.Context, sessions sessionStore, state *engine.SessionState, out engine.Outcome) error {
	if sessions == nil || state.Goal == nil {
		return nil
	}
	if out.Mode == engine.ModeTerminal {
		return sessions.DeleteSession(ctx, state.UserID, state.Goal.GoalID)
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return sessions.SaveSession(ctx, &store.SessionRecord{
		UserID: state.UserID,
		GoalID: state.Goal.GoalID,
		Name:   state.Goal.Name,
		Phase:  state.Next.String(),
		State:  raw,
	})
}

func (s *LearnScreen) handleStepDone(msg stepDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.note(engine.UserMessage(msg.Err))
		switch msg.Ran {
		case engine.PhasePriorEvaluation:
			s.mode = modeAssessment
			s.note("Press Enter to resubmit your answers.")
		case engine.PhaseTestEvaluation:
			s.mode = modeTest
			s.note("Press Enter to resubmit your answers.")
		default:
			if s.state.Goal == nil {
				s.mode = modeGoal
				s.input.Model.Placeholder = "What do you want to learn?"
			} else {
				s.enterChatMode()
			}
		}
		return s, nil
	}

	s.state = msg.State
	s.saveNote = ""
	if msg.SaveErr != nil {
		s.saveNote = "Snapshot failed; the last step may not survive an exit."
	}

	switch msg.Ran {
	case engine.PhaseGoalCreation:
		s.say(roleTutor, s.state.LastOutput)
		if s.state.Goal != nil && s.state.Goal.SuccessMetric != "" {
			s.note("You'll know you're done when: " + s.state.Goal.SuccessMetric)
		}
		return s.chain(msg.Out)

	case engine.PhasePriorAssessment:
		s.note(fmt.Sprintf("Quick check first: %d short questions about what you may already know.", len(s.state.Questions)))
		s.beginQuestions(modeAssessment)
		return s, nil

	case engine.PhasePriorEvaluation:
		s.say(roleTutor, s.state.LastOutput)
		return s.chain(msg.Out)

	case engine.PhaseMaterialGeneration:
		if current, ok := s.state.Current(); ok {
			s.note("Now studying: " + current.Name)
		}
		s.say(roleTutor, s.state.LastOutput)
		s.enterChatMode()
		return s, nil

	case engine.PhaseChatWithTutor:
		s.say(roleTutor, s.state.LastOutput)
		if msg.Out.Next == engine.PhaseGapDiagnosis && msg.Out.Mode == engine.ModeAdvance {
			return s.chain(msg.Out)
		}
		s.enterChatMode()
		return s, nil

	case engine.PhaseGapDiagnosis:
		s.say(roleTutor, s.state.LastOutput)
		s.enterGapMode()
		return s, nil

	case engine.PhaseRemediationExecution:
		s.say(roleTutor, s.state.LastOutput)
		return s.chain(msg.Out)

	case engine.PhaseTestGeneration:
		s.note(fmt.Sprintf("Test time: %d questions on this concept.", len(s.state.Questions)))
		s.beginQuestions(modeTest)
		return s, nil

	case engine.PhaseTestEvaluation:
		s.pending = msg.Out
		s.mode = modeResult
		return s, nil
	}

	return s.chain(msg.Out)
}

// chain follows an Advance decision straight into the next phase; Await
// hands control back to the chat, Terminal ends the goal.
func (s *LearnScreen) chain(out engine.Outcome) (screen.Screen, tea.Cmd) {
	switch out.Mode {
	case engine.ModeTerminal:
		s.mode = modeDone
		return s, nil
	case engine.ModeAwait:
		s.enterChatMode()
		return s, nil
	}
	return s.begin(out.Next, nil)
}

func (s *LearnScreen) enterChatMode() {
	s.mode = modeChat
	s.input.Model.Placeholder = "Ask the tutor anything about this..."
}

func (s *LearnScreen) enterGapMode() {
	s.mode = modeGap
	s.input.Model.Placeholder = "Name the thing you're missing..."
}

// beginQuestions prepares the question loop for an assessment or a test.
func (s *LearnScreen) beginQuestions(m mode) {
	s.mode = m
	s.qIndex = 0
	s.answers = make(map[string]string, len(s.state.Questions))
	s.input.Reset()
	s.input.Model.Placeholder = "Your answer..."
}

// say appends a transcript entry and pins the view back to the bottom.
func (s *LearnScreen) say(role, text string) {
	if text == "" {
		return
	}
	s.transcript = append(s.transcript, entry{role: role, text: text})
	if len(s.transcript) > maxTranscript {
		s.transcript = s.transcript[len(s.transcript)-maxTranscript:]
	}
	s.scroll = 0
}

func (s *LearnScreen) note(text string) {
	s.say(roleNote, text)
}

func popCmd() tea.Cmd {
	return func() tea.Msg { return router.PopScreenMsg{} }
}

// workingNote is the waiting text per phase.
func workingNote(phase engine.Phase) string {
	switch phase {
	case engine.PhaseGoalCreation:
		return "Shaping your goal and building a path..."
	case engine.PhasePriorAssessment:
		return "Preparing the prior knowledge check..."
	case engine.PhasePriorEvaluation:
		return "Looking at what you already know..."
	case engine.PhaseMaterialGeneration:
		return "Writing your material..."
	case engine.PhaseChatWithTutor:
		return "The tutor is thinking..."
	case engine.PhaseGapDiagnosis:
		return "Narrowing down what's missing..."
	case engine.PhaseRemediationExecution:
		return "Adjusting your path..."
	case engine.PhaseTestGeneration:
		return "Putting a test together..."
	case engine.PhaseTestEvaluation:
		return "Scoring your answers..."
	}
	return "Working..."
}
