package oracle

import (
	"fmt"
	"strings"

	"github.com/abhisek/lernpath/internal/path"
)

// The four personas behind the oracle calls. Architect owns structure
// (goal contract, path, surgery), Curator owns content (material, tests,
// scoring), Tutor owns conversation, Assessor owns prior knowledge.

const architectSystemPrompt = `You are the Architect of an adaptive learning system. You are precise, structured, and methodical. You convert a learner's intent into a formal, measurable learning contract and maintain the structural integrity of the learning path.

Rules:
- Refine the stated goal into a SMART objective (specific, measurable, achievable, relevant, time-bound) with a Bloom level (1-6) and a success metric.
- Decompose the goal into 5-10 concepts in learning order. Give each a unique ID (C1, C2, ...), a name, a required Bloom level, and an estimated study time in minutes.
- During path surgery, define exactly the one missing prerequisite concept and name which skipped concepts logically depend on it. Do not restructure the rest of the path.`

const curatorSystemPrompt = `You are the Curator of an adaptive learning system. You are a subject-matter expert and didactic content creator. You generate custom-tailored, factually correct learning material and assessments.

Rules:
- Tailor material to the learner profile (style preference, complexity level, reading pace) and the concept's required Bloom level. For an analogy-based style preference, use metaphors and real-world examples.
- Write material in Markdown. List the URLs of primary sources when you rely on specific facts or figures.
- Test questions must probe at the concept's required Bloom level: level 4 (analyzing) means breaking things into parts, not recalling facts.
- When scoring, judge only what the answers demonstrate. Be objective; do not inflate scores to be kind.`

const tutorSystemPrompt = `You are the Tutor of an adaptive learning system: an empathetic, encouraging learning companion. You address the learner directly as "you" and foster a growth mindset.

Rules:
- Read the learner's emotional state from their message (neutral, frustration, confusion, joy) and validate it before addressing content.
- Set gapDetected true only when the message reports a missing prerequisite ("I never learned...", "I don't know the basics of..."), not for ordinary confusion about the current concept.
- Use the learner's known error patterns to anticipate and clarify common mistakes.
- In gap diagnosis, ask one clarifying question that narrows down which prerequisite is missing.
- Keep replies conversational. No headings, no bullet lists.`

const assessorSystemPrompt = `You are the Assessor of an adaptive learning system: an impartial, precise evaluator. You determine what a learner already knows so their path can skip it.

Rules:
- Generate 3-5 targeted questions that together span the key concepts of the whole path. Tie each question to one concept ID.
- When evaluating, mark a concept mastered only if the answers demonstrate it confidently. When in doubt, leave the concept in the path.`

// languageDirective returns the system-prompt suffix pinning the output
// language. JSON keys stay English either way.
func languageDirective(lang string) string {
	if lang == "de" {
		return "\n\nAnswer in German. All explanations, feedback, and material text must be German; JSON keys stay English."
	}
	return "\n\nAnswer in English. All explanations, feedback, and material text must be English; JSON keys stay English."
}

func profileSummary(p path.UserProfile) string {
	var b strings.Builder
	if p.StylePreference != "" {
		fmt.Fprintf(&b, "Style preference: %s\n", p.StylePreference)
	}
	if p.ComplexityLevel != "" {
		fmt.Fprintf(&b, "Complexity level: %s\n", p.ComplexityLevel)
	}
	if p.PaceWPM > 0 {
		fmt.Fprintf(&b, "Reading pace: %d words per minute\n", p.PaceWPM)
	}
	if p.LastTestScore != nil {
		fmt.Fprintf(&b, "Last test score: %d\n", *p.LastTestScore)
	}
	if len(p.ErrorPatterns) > 0 {
		b.WriteString("Known error patterns:\n")
		for _, pat := range p.ErrorPatterns {
			fmt.Fprintf(&b, "- %s\n", pat)
		}
	}
	if b.Len() == 0 {
		return "No profile data yet.\n"
	}
	return b.String()
}

func pathSummary(concepts []path.Concept) string {
	var b strings.Builder
	for _, c := range concepts {
		fmt.Fprintf(&b, "- %s: %s (status %s, Bloom %d)\n", c.ID, c.Name, c.Status, c.RequiredBloomLevel)
	}
	return b.String()
}

func buildGoalPathMessage(goalText string, profile path.UserProfile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Learner's goal: %q\n\n", goalText)
	b.WriteString("Learner profile:\n")
	b.WriteString(profileSummary(profile))

	b.WriteString(`
Instructions:
Create the SMART goal contract and the initial learning path for this goal:
1. Refine the goal into one measurable sentence.
2. Set a Bloom level (1-6) for the goal and a concrete success metric.
3. Decompose into 5-10 concepts in the order they should be learned. Number the IDs C1, C2, and so on.
4. Set each concept's required Bloom level no higher than the goal's, and estimate its study time in minutes.`)

	return b.String()
}

func buildAssessmentMessage(g *path.Goal) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Goal: %s\n\nPath:\n", g.Name)
	b.WriteString(pathSummary(g.Path))

	b.WriteString(`
Instructions:
Generate 3-5 questions that together span the key concepts of this path. Each question carries the ID of the concept it probes. The purpose is to find out which concepts the learner already commands, so prefer questions whose answers are decisive.`)

	return b.String()
}

func buildPriorEvaluationMessage(g *path.Goal, questions []path.Question, answers map[string]string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Goal: %s\n\nPath:\n", g.Name)
	b.WriteString(pathSummary(g.Path))

	b.WriteString("\nQuestions and answers:\n")
	for _, q := range questions {
		answer := answers[q.ID]
		if answer == "" {
			answer = "(no answer)"
		}
		fmt.Fprintf(&b, "- [%s, concept %s] %s\n  Answer: %s\n", q.ID, q.ConceptID, q.Prompt, answer)
	}

	b.WriteString(`
Instructions:
Decide which concepts these answers prove already mastered. Return their IDs and a short learner-facing summary. Only IDs from the path above are valid. When an answer is missing or unconvincing, keep the concept in the path.`)

	return b.String()
}

func buildMaterialMessage(c path.Concept, profile path.UserProfile, failureFeedback string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Concept: %s\nRequired Bloom level: %d\n\n", c.Name, c.RequiredBloomLevel)
	b.WriteString("Learner profile:\n")
	b.WriteString(profileSummary(profile))

	if failureFeedback != "" {
		fmt.Fprintf(&b, "\nThe learner failed the previous test on this concept. Evaluator feedback:\n%s\n", failureFeedback)
	}

	b.WriteString(`
Instructions:
Write learning material for this concept:
1. Match the depth to the required Bloom level and the length to the learner's reading pace.
2. Follow the learner's style preference where one is given.
3. Address the known error patterns where they touch this concept.`)
	if failureFeedback != "" {
		b.WriteString("\n4. This is a re-study after a failed test. Approach the concept from a different angle than a first explanation would, and address the evaluator feedback directly.")
	}

	return b.String()
}

func buildChatMessage(c path.Concept, profile path.UserProfile, message string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Current concept: %s\n\n", c.Name)
	b.WriteString("Learner profile:\n")
	b.WriteString(profileSummary(profile))
	fmt.Fprintf(&b, "\nThe learner says: %q\n", message)

	b.WriteString(`
Respond helpfully and warmly, and tag the emotional state you read in the message.`)

	return b.String()
}

func buildDiagnosisMessage(c path.Concept) string {
	return fmt.Sprintf(
		"The learner signalled a missing prerequisite while studying %q. "+
			"Open the diagnostic dialogue: ask one clarifying question that narrows down which foundation is missing.",
		c.Name)
}

func buildSurgeryMessage(missingName string, concepts []path.Concept) string {
	var b strings.Builder

	fmt.Fprintf(&b, "The missing foundation is: %q\n\nCurrent path:\n", missingName)
	b.WriteString(pathSummary(concepts))

	b.WriteString(`
Instructions:
Perform path surgery for this gap:
1. Define the one prerequisite concept that closes it: ID (N1, N2, ... not colliding with the path above), name, required Bloom level, estimated minutes.
2. List the IDs of skipped path concepts that logically depend on the new prerequisite, so they can be reactivated. List only IDs from the path above; an empty list is valid.
3. Write one short learner-facing sentence about the change.`)

	return b.String()
}

func buildTestMessage(c path.Concept, profile path.UserProfile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Concept: %s\nRequired Bloom level: %d\n\n", c.Name, c.RequiredBloomLevel)
	b.WriteString("Learner profile:\n")
	b.WriteString(profileSummary(profile))

	b.WriteString(`
Instructions:
Generate 3-5 comprehension questions for this concept at its required Bloom level. Free-text questions; no multiple choice. Number the IDs Q1, Q2, and so on.`)

	return b.String()
}

func buildEvaluationMessage(c path.Concept, questions []path.Question, answers map[string]string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Concept: %s\nRequired Bloom level: %d\n\nQuestions and answers:\n", c.Name, c.RequiredBloomLevel)
	for _, q := range questions {
		answer := answers[q.ID]
		if answer == "" {
			answer = "(no answer)"
		}
		fmt.Fprintf(&b, "- [%s] %s\n  Answer: %s\n", q.ID, q.Prompt, answer)
	}

	b.WriteString(`
Instructions:
Score the answers objectively:
1. Judge each answer against what the question demands at its Bloom level, and mark it correct or not with a one-sentence explanation.
2. Give an overall score from 0 to 100. An unanswered question scores zero.
3. Write 2-4 sentences of learner-facing feedback.
4. If the result is weak, name the one error pattern most worth addressing in the recommendation field; otherwise leave it empty.`)

	return b.String()
}
