// Package path holds the learning-path data model: goals, concepts, the
// status lifecycle, and the traversal and validation rules over an ordered
// concept sequence. Everything here is pure data and pure functions; phases
// and persistence live elsewhere.
package path

// Status represents a concept's position in the path lifecycle.
type Status string

const (
	StatusOpen        Status = "open"        // Not yet studied
	StatusActive      Status = "active"      // Currently being studied
	StatusSkipped     Status = "skipped"     // Bypassed (e.g. prior knowledge); may be reactivated
	StatusReactivated Status = "reactivated" // Previously skipped, pulled back into traversal
	StatusMastered    Status = "mastered"    // Passed its test; terminal
	StatusReview      Status = "review"      // Failed its test; awaiting re-study
)

// AllStatuses returns every valid status.
func AllStatuses() []Status {
	return []Status{
		StatusOpen,
		StatusActive,
		StatusSkipped,
		StatusReactivated,
		StatusMastered,
		StatusReview,
	}
}

// Label returns a human-readable name for a status.
func (s Status) Label() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusActive:
		return "Active"
	case StatusSkipped:
		return "Skipped"
	case StatusReactivated:
		return "Reactivated"
	case StatusMastered:
		return "Mastered"
	case StatusReview:
		return "Review"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusActive, StatusSkipped, StatusReactivated, StatusMastered, StatusReview:
		return true
	}
	return false
}

// Bloom level bounds (Bloom's taxonomy depth-of-understanding target).
const (
	BloomMin = 1
	BloomMax = 6
)

// Concept is one learning unit in a goal's path. Identity is the ID, which
// must be unique within a path for the path's whole lifetime; slice order in
// Goal.Path is the traversal order.
type Concept struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Status             Status `json:"status"`
	ExpertiseSource    string `json:"expertiseSource,omitempty"` // provenance tag, e.g. "remediation", "prior-assessment"
	RequiredBloomLevel int    `json:"requiredBloomLevel"`
	EstimatedMins      int    `json:"estimatedMins,omitempty"`
}

// GoalStatus represents a goal's overall lifecycle state.
type GoalStatus string

const (
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
)

// Goal is a learning goal and the ordered concept path that realizes it.
// A goal owns its path exclusively; concepts never exist outside one.
// Concepts are retired via status, never removed, so indexes only grow.
type Goal struct {
	GoalID        string     `json:"goalId"`
	UserID        string     `json:"userId"`
	Name          string     `json:"name"`
	SubjectArea   string     `json:"subjectArea"`
	TargetDate    string     `json:"targetDate,omitempty"`
	BloomLevel    int        `json:"bloomLevel"`
	SuccessMetric string     `json:"successMetric"`
	Status        GoalStatus `json:"status"`
	Path          []Concept  `json:"path"`
}

// Clone returns a deep copy of the goal with its own path slice.
func (g *Goal) Clone() *Goal {
	if g == nil {
		return nil
	}
	cp := *g
	cp.Path = ClonePath(g.Path)
	return &cp
}

// UserProfile holds per-learner preferences and evaluation history.
// One profile is shared across all of a user's goals.
type UserProfile struct {
	UserID            string   `json:"userId"`
	StylePreference   string   `json:"stylePreference,omitempty"`
	ComplexityLevel   string   `json:"complexityLevel,omitempty"`
	PaceWPM           int      `json:"paceWPM,omitempty"`
	Language          string   `json:"language,omitempty"` // "en" (default) or "de"
	AssessmentEnabled bool     `json:"assessmentEnabled,omitempty"`
	LastTestScore     *int     `json:"lastTestScore,omitempty"` // 0..100, nil until first evaluation
	ErrorPatterns     []string `json:"errorPatterns,omitempty"`
}

// Clone returns a deep copy of the profile.
func (p UserProfile) Clone() UserProfile {
	cp := p
	if p.LastTestScore != nil {
		v := *p.LastTestScore
		cp.LastTestScore = &v
	}
	cp.ErrorPatterns = append([]string(nil), p.ErrorPatterns...)
	return cp
}

// RecordScore sets the last test score and, on a failing result, appends the
// recommendation to the error patterns (deduplicated).
func (p *UserProfile) RecordScore(result TestResult) {
	score := result.Score
	p.LastTestScore = &score
	if result.Passed || result.Recommendation == "" {
		return
	}
	for _, pat := range p.ErrorPatterns {
		if pat == result.Recommendation {
			return
		}
	}
	p.ErrorPatterns = append(p.ErrorPatterns, result.Recommendation)
}
