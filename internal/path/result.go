package path

// PassMark is the score threshold for passing a concept test.
// A test is passed when the score is strictly greater than this.
const PassMark = 70

// Question is a single generated test or assessment question.
type Question struct {
	ID         string `json:"id"`
	Prompt     string `json:"prompt"`
	BloomLevel int    `json:"bloomLevel"`
	ConceptID  string `json:"conceptId,omitempty"` // set for assessment questions spanning a path
}

// QuestionResult is the per-question outcome of an evaluation.
type QuestionResult struct {
	ID          string `json:"id"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}

// TestResult is the outcome of evaluating a learner's test answers.
// It is transient: produced per evaluation call, folded into profile and
// concept status, never stored as-is.
type TestResult struct {
	Score          int              `json:"score"` // 0..100
	Passed         bool             `json:"passed"`
	Feedback       string           `json:"feedback"`
	Recommendation string           `json:"recommendation"`
	PerQuestion    []QuestionResult `json:"perQuestion"`
}

// Scored returns a TestResult with Passed derived from the score, clamped
// into the valid range. The oracle's own pass/fail claim is never trusted.
func Scored(score int, feedback, recommendation string, perQuestion []QuestionResult) TestResult {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return TestResult{
		Score:          score,
		Passed:         score > PassMark,
		Feedback:       feedback,
		Recommendation: recommendation,
		PerQuestion:    perQuestion,
	}
}
