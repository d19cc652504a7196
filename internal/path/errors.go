package path

import "fmt"

// ErrDuplicateConceptID indicates two concepts in one path share an ID.
// Always fatal; never auto-corrected.
type ErrDuplicateConceptID struct {
	ID string
}

func (e *ErrDuplicateConceptID) Error() string {
	return fmt.Sprintf("duplicate concept ID %q", e.ID)
}

// ErrInvalidTransition indicates a concept status change that the lifecycle
// does not permit (e.g. Reactivated from anything but Skipped).
type ErrInvalidTransition struct {
	ConceptID string
	From      Status
	To        Status
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("concept %q: invalid status transition %s -> %s", e.ConceptID, e.From, e.To)
}

// ErrConceptNotFound indicates a concept ID that is not in the path.
type ErrConceptNotFound struct {
	ID string
}

func (e *ErrConceptNotFound) Error() string {
	return fmt.Sprintf("concept %q not found in path", e.ID)
}
