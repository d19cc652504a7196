package learn

import (
	"github.com/abhisek/lernpath/internal/engine"
)

// stepDoneMsg reports a finished engine step, including the outcome of the
// session snapshot written right after it.
type stepDoneMsg struct {
	Ran     engine.Phase
	State   *engine.SessionState
	Out     engine.Outcome
	Err     error
	SaveErr error
}
