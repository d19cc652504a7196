package path

import (
	"errors"
	"strings"
	"testing"
)

func makeOpenPath(ids ...string) []Concept {
	concepts := make([]Concept, len(ids))
	for i, id := range ids {
		concepts[i] = Concept{ID: id, Name: "Concept " + id, Status: StatusOpen, RequiredBloomLevel: 2}
	}
	return concepts
}

func TestValidate_AcceptsWellFormedPath(t *testing.T) {
	if err := Validate(makeOpenPath("K1", "K2", "K3")); err != nil {
		t.Fatalf("valid path rejected: %v", err)
	}
}

func TestValidate_RejectsDuplicateID(t *testing.T) {
	p := makeOpenPath("K1", "K2")
	p[1].ID = "K1"

	err := Validate(p)
	if err == nil {
		t.Fatal("expected error for duplicate ID, got nil")
	}

	var dup *ErrDuplicateConceptID
	if !errors.As(err, &dup) {
		t.Fatalf("expected ErrDuplicateConceptID, got %T: %v", err, err)
	}
	if dup.ID != "K1" {
		t.Errorf("duplicate ID = %q, want K1", dup.ID)
	}
}

func TestValidate_RejectsEmptyID(t *testing.T) {
	p := makeOpenPath("K1")
	p[0].ID = ""
	err := Validate(p)
	if err == nil {
		t.Fatal("expected error for empty ID, got nil")
	}
	if !strings.Contains(err.Error(), "empty ID") {
		t.Errorf("error should mention empty ID, got: %v", err)
	}
}

func TestValidate_RejectsUnknownStatus(t *testing.T) {
	p := makeOpenPath("K1")
	p[0].Status = Status("abandoned")
	err := Validate(p)
	if err == nil {
		t.Fatal("expected error for unknown status, got nil")
	}
	if !strings.Contains(err.Error(), "unknown status") {
		t.Errorf("error should mention unknown status, got: %v", err)
	}
}

func TestValidate_RejectsBloomOutOfRange(t *testing.T) {
	for _, level := range []int{0, 7, -1} {
		p := makeOpenPath("K1")
		p[0].RequiredBloomLevel = level
		if err := Validate(p); err == nil {
			t.Errorf("bloom level %d accepted, want error", level)
		}
	}
}

func TestCanTransition_SameStatusAlwaysAllowed(t *testing.T) {
	for _, s := range AllStatuses() {
		if !CanTransition(s, s) {
			t.Errorf("CanTransition(%s, %s) = false, want true", s, s)
		}
	}
}

func TestCanTransition_ReactivatedOnlyFromSkipped(t *testing.T) {
	for _, s := range AllStatuses() {
		got := CanTransition(s, StatusReactivated)
		want := s == StatusSkipped || s == StatusReactivated
		if got != want {
			t.Errorf("CanTransition(%s, reactivated) = %v, want %v", s, got, want)
		}
	}
}

func TestCanTransition_MasteredIsTerminal(t *testing.T) {
	for _, to := range AllStatuses() {
		if to == StatusMastered {
			continue
		}
		if CanTransition(StatusMastered, to) {
			t.Errorf("CanTransition(mastered, %s) = true, want false", to)
		}
	}
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		ok   bool
	}{
		{"open to active", StatusOpen, StatusActive, true},
		{"open to skipped", StatusOpen, StatusSkipped, true},
		{"active to mastered", StatusActive, StatusMastered, true},
		{"active to review", StatusActive, StatusReview, true},
		{"active demoted to open", StatusActive, StatusOpen, true},
		{"skipped to reactivated", StatusSkipped, StatusReactivated, true},
		{"reactivated to active", StatusReactivated, StatusActive, true},
		{"review to active", StatusReview, StatusActive, true},
		{"open to reactivated", StatusOpen, StatusReactivated, false},
		{"review to reactivated", StatusReview, StatusReactivated, false},
		{"mastered to open", StatusMastered, StatusOpen, false},
		{"open to mastered", StatusOpen, StatusMastered, false},
		{"skipped to active", StatusSkipped, StatusActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Concept{ID: "K1", Status: tt.from}
			err := ValidateTransition(c, tt.to)
			if tt.ok && err != nil {
				t.Errorf("ValidateTransition(%s -> %s) = %v, want nil", tt.from, tt.to, err)
			}
			if !tt.ok {
				var inv *ErrInvalidTransition
				if !errors.As(err, &inv) {
					t.Errorf("ValidateTransition(%s -> %s) = %v, want ErrInvalidTransition", tt.from, tt.to, err)
				}
			}
		})
	}
}
