// Package remediation implements path surgery: inserting a missing
// prerequisite concept into an in-flight learning path without corrupting
// ordering, identity, or position invariants. The oracle proposes; this
// package decides what actually enters the path.
package remediation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/abhisek/lernpath/internal/oracle"
	"github.com/abhisek/lernpath/internal/path"
)

// ExpertiseSource tags concepts that entered the path through surgery.
const ExpertiseSource = "remediation"

// Outcome is the result of one applied surgery. Path is a fresh slice; the
// input goal is never mutated, so a failed persist leaves no trace.
type Outcome struct {
	Path        []path.Concept
	Concept     path.Concept // the inserted prerequisite
	Reactivated []string     // previously skipped concepts pulled back in
	Message     string       // learner-facing prose
	Fallback    bool         // concept came from the deterministic fallback
}

// Surgeon is the slice of the content oracle the protocol needs.
type Surgeon interface {
	PerformSurgery(ctx context.Context, missingName string, concepts []path.Concept) (*oracle.SurgeryPlan, error)
}

// Protocol performs path surgery against a content oracle.
type Protocol struct {
	surgeon Surgeon
}

// NewProtocol creates a surgery protocol backed by the given oracle.
func NewProtocol(s Surgeon) *Protocol {
	return &Protocol{surgeon: s}
}

// Apply closes the named gap in the goal's path. The new concept is placed
// at the head of the path: the strictly-forward traversal rule must yield
// it next, and any concept reactivated by the surgery must remain ahead of
// the scan, which only head placement guarantees.
//
// An unusable oracle response degrades to the deterministic fallback
// concept; transport and store-level errors propagate. Only the returned
// Outcome carries changes; the goal passed in stays untouched.
func (p *Protocol) Apply(ctx context.Context, g *path.Goal, missingName string, now time.Time) (*Outcome, error) {
	if missingName == "" {
		return nil, fmt.Errorf("remediation: missing concept name is empty")
	}

	plan, err := p.surgeon.PerformSurgery(ctx, missingName, g.Path)
	fallback := false
	if err != nil {
		var parseErr *oracle.ErrParse
		if !errors.As(err, &parseErr) {
			return nil, fmt.Errorf("surgery proposal: %w", err)
		}
		// Unusable proposal. Synthesize the concept deterministically and
		// carry on; nothing is reactivated without an explicit supersedes set.
		fallback = true
		plan = &oracle.SurgeryPlan{
			Concept: path.Concept{Name: missingName, RequiredBloomLevel: 1},
			Message: fmt.Sprintf(
				"I couldn't map the gap precisely, so I've added %q as a fresh starting point. If it doesn't fit, raise the gap indicator again.",
				missingName),
		}
	}

	newConcept := normalizeConcept(plan.Concept, g.Path, now)

	newPath := make([]path.Concept, 0, len(g.Path)+1)
	newPath = append(newPath, newConcept)
	newPath = append(newPath, path.ClonePath(g.Path)...)

	var reactivated []string
	for _, id := range plan.Supersedes {
		if i := path.FindByID(newPath, id); i != -1 && newPath[i].Status == path.StatusSkipped {
			newPath[i].Status = path.StatusReactivated
			reactivated = append(reactivated, id)
		}
	}

	message := plan.Message
	if message == "" {
		message = fmt.Sprintf("I've added %q to your path. We continue right there!", newConcept.Name)
	}

	return &Outcome{
		Path:        newPath,
		Concept:     newConcept,
		Reactivated: reactivated,
		Message:     message,
		Fallback:    fallback,
	}, nil
}

// normalizeConcept turns an oracle proposal into a concept that upholds the
// path invariants: forced Open status and remediation source, Bloom level
// inside bounds, and an ID that is unique within the existing path.
func normalizeConcept(proposal path.Concept, existing []path.Concept, now time.Time) path.Concept {
	c := proposal
	c.Status = path.StatusOpen
	c.ExpertiseSource = ExpertiseSource

	if c.RequiredBloomLevel < path.BloomMin || c.RequiredBloomLevel > path.BloomMax {
		c.RequiredBloomLevel = path.BloomMin
	}
	if c.EstimatedMins < 0 {
		c.EstimatedMins = 0
	}

	if c.ID == "" || path.FindByID(existing, c.ID) != -1 {
		c.ID = fallbackID(existing, now)
	}
	return c
}

// fallbackID derives a concept ID from the wall clock, disambiguated with a
// numeric suffix if the second-resolution ID already exists in the path.
func fallbackID(existing []path.Concept, now time.Time) string {
	base := "N-" + strconv.FormatInt(now.Unix(), 10)
	id := base
	for n := 2; path.FindByID(existing, id) != -1; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}
