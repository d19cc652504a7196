package path

// FindByID returns the index of the concept with the given ID, or -1.
func FindByID(concepts []Concept, id string) int {
	for i, c := range concepts {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// NextOpen scans strictly forward from fromIndex+1 and returns the index of
// the first concept whose status is Open or Reactivated, or -1 if none
// remain. This defines traversal order: concepts that are neither Open nor
// Reactivated are bypassed and never revisited. Pass fromIndex = -1 to scan
// the whole path.
func NextOpen(concepts []Concept, fromIndex int) int {
	for i := fromIndex + 1; i < len(concepts); i++ {
		switch concepts[i].Status {
		case StatusOpen, StatusReactivated:
			return i
		}
	}
	return -1
}

// SetActive marks the concept with the given ID Active and demotes any other
// Active concept back to Open, keeping at most one concept Active at a time.
// Remediation can move the current position away from an Active concept;
// without the demotion that concept would be stranded invisible to NextOpen.
func SetActive(concepts []Concept, id string) error {
	idx := FindByID(concepts, id)
	if idx == -1 {
		return &ErrConceptNotFound{ID: id}
	}
	if err := ValidateTransition(concepts[idx], StatusActive); err != nil {
		return err
	}
	for i := range concepts {
		if i != idx && concepts[i].Status == StatusActive {
			concepts[i].Status = StatusOpen
		}
	}
	concepts[idx].Status = StatusActive
	return nil
}

// ClonePath returns a copy of the path backed by a fresh slice.
func ClonePath(concepts []Concept) []Concept {
	if concepts == nil {
		return nil
	}
	return append([]Concept(nil), concepts...)
}
