package path

import (
	"fmt"
	"strings"
)

// allowedTransitions is the explicit status lifecycle. A concept may always
// "transition" to its current status (idempotent writes); anything else must
// be listed here. Mastered is terminal. Reactivated is reachable only from
// Skipped.
var allowedTransitions = map[Status][]Status{
	StatusOpen:        {StatusActive, StatusSkipped},
	StatusActive:      {StatusOpen, StatusMastered, StatusReview},
	StatusSkipped:     {StatusReactivated},
	StatusReactivated: {StatusActive},
	StatusReview:      {StatusActive},
	StatusMastered:    {},
}

// CanTransition reports whether a status change is permitted.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns an *ErrInvalidTransition if the change from
// the concept's current status to the given status is not permitted.
func ValidateTransition(c Concept, to Status) error {
	if !to.Valid() {
		return &ErrInvalidTransition{ConceptID: c.ID, From: c.Status, To: to}
	}
	if !CanTransition(c.Status, to) {
		return &ErrInvalidTransition{ConceptID: c.ID, From: c.Status, To: to}
	}
	return nil
}

// Validate performs all structural checks on a path. The first duplicate ID
// is returned as an *ErrDuplicateConceptID so callers can match on it; all
// remaining problems are collected into a combined error.
func Validate(concepts []Concept) error {
	idSet := make(map[string]bool, len(concepts))
	for _, c := range concepts {
		if idSet[c.ID] {
			return &ErrDuplicateConceptID{ID: c.ID}
		}
		idSet[c.ID] = true
	}

	var errs []string

	for i, c := range concepts {
		if c.ID == "" {
			errs = append(errs, fmt.Sprintf("concept at index %d has empty ID", i))
		}
		if c.Name == "" {
			errs = append(errs, fmt.Sprintf("concept %q has empty name", c.ID))
		}
		if !c.Status.Valid() {
			errs = append(errs, fmt.Sprintf("concept %q has unknown status %q", c.ID, c.Status))
		}
		if c.RequiredBloomLevel < BloomMin || c.RequiredBloomLevel > BloomMax {
			errs = append(errs, fmt.Sprintf("concept %q: requiredBloomLevel must be %d-%d, got %d",
				c.ID, BloomMin, BloomMax, c.RequiredBloomLevel))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("path validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
