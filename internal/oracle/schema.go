package oracle

import "github.com/abhisek/lernpath/internal/llm"

// conceptSchema is the shared shape of one path concept in oracle output.
var conceptSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": map[string]any{
			"type":        "string",
			"description": "Unique concept ID, e.g. 'C1'",
		},
		"name": map[string]any{
			"type":        "string",
			"description": "Concept name (2-6 words)",
		},
		"requiredBloomLevel": map[string]any{
			"type":        "integer",
			"description": "Bloom's taxonomy depth required, 1-6",
		},
		"estimatedMins": map[string]any{
			"type":        "integer",
			"description": "Estimated study time in minutes",
		},
	},
	"required":             []any{"id", "name", "requiredBloomLevel"},
	"additionalProperties": false,
}

// GoalPathSchema defines the JSON schema for goal contract and path generation.
var GoalPathSchema = &llm.Schema{
	Name:        "goal-path",
	Description: "A refined SMART learning goal with its ordered concept path",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"goal": map[string]any{
				"type":        "string",
				"description": "The refined SMART goal (one sentence)",
			},
			"bloomLevel": map[string]any{
				"type":        "integer",
				"description": "Target Bloom level for the overall goal, 1-6",
			},
			"successMetric": map[string]any{
				"type":        "string",
				"description": "How final success is measured",
			},
			"path": map[string]any{
				"type":        "array",
				"items":       conceptSchema,
				"description": "5-10 concepts in learning order",
			},
		},
		"required":             []any{"goal", "bloomLevel", "successMetric", "path"},
		"additionalProperties": false,
	},
}

// questionSchema is the shared shape of one generated question.
var questionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": map[string]any{
			"type":        "string",
			"description": "Question ID, e.g. 'Q1'",
		},
		"prompt": map[string]any{
			"type":        "string",
			"description": "The question text",
		},
		"bloomLevel": map[string]any{
			"type":        "integer",
			"description": "Cognitive level this question probes, 1-6",
		},
		"conceptId": map[string]any{
			"type":        "string",
			"description": "ID of the concept this question covers",
		},
	},
	"required":             []any{"id", "prompt", "bloomLevel"},
	"additionalProperties": false,
}

// AssessmentSchema defines the JSON schema for prior-knowledge assessments.
var AssessmentSchema = &llm.Schema{
	Name:        "prior-assessment",
	Description: "Targeted questions spanning the learning path to detect prior knowledge",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":        "array",
				"items":       questionSchema,
				"description": "3-5 questions, each tied to a path concept",
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// PriorEvaluationSchema defines the JSON schema for prior-assessment scoring.
var PriorEvaluationSchema = &llm.Schema{
	Name:        "prior-evaluation",
	Description: "Which path concepts the assessment answers prove already mastered",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"masteredConcepts": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "IDs of concepts answered well enough to skip",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Short learner-facing summary of the result",
			},
		},
		"required":             []any{"masteredConcepts", "feedback"},
		"additionalProperties": false,
	},
}

// MaterialSchema defines the JSON schema for learning material generation.
var MaterialSchema = &llm.Schema{
	Name:        "learning-material",
	Description: "Tailored learning material for one concept",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Material title (3-8 words)",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "The learning material in Markdown",
			},
			"sources": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "URLs of primary sources backing factual claims",
			},
		},
		"required":             []any{"title", "body"},
		"additionalProperties": false,
	},
}

// ChatSchema defines the JSON schema for tutor chat replies.
var ChatSchema = &llm.Schema{
	Name:        "tutor-reply",
	Description: "Conversational tutor reply with the detected learner affect",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reply": map[string]any{
				"type":        "string",
				"description": "Natural, conversational reply text",
			},
			"affect": map[string]any{
				"type":        "string",
				"enum":        []any{"neutral", "frustration", "confusion", "joy"},
				"description": "Emotional state detected in the learner's message",
			},
			"gapDetected": map[string]any{
				"type":        "boolean",
				"description": "True when the message reports a missing prerequisite",
			},
		},
		"required":             []any{"reply", "affect", "gapDetected"},
		"additionalProperties": false,
	},
}

// DiagnosisSchema defines the JSON schema for gap-diagnosis openings.
var DiagnosisSchema = &llm.Schema{
	Name:        "gap-diagnosis",
	Description: "Opening question of the diagnostic dialogue for a prerequisite gap",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "Clarifying question that narrows down the missing prerequisite",
			},
		},
		"required":             []any{"question"},
		"additionalProperties": false,
	},
}

// SurgerySchema defines the JSON schema for path-surgery proposals.
var SurgerySchema = &llm.Schema{
	Name:        "path-surgery",
	Description: "The prerequisite concept to insert for an identified knowledge gap",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"concept": conceptSchema,
			"supersedes": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "IDs of skipped path concepts that depend on the new prerequisite",
			},
			"message": map[string]any{
				"type":        "string",
				"description": "Short learner-facing note about the path change",
			},
		},
		"required":             []any{"concept", "supersedes", "message"},
		"additionalProperties": false,
	},
}

// TestSchema defines the JSON schema for comprehension test generation.
var TestSchema = &llm.Schema{
	Name:        "concept-test",
	Description: "Comprehension test questions for one concept at its required Bloom level",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":        "array",
				"items":       questionSchema,
				"description": "3-5 test questions",
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// EvaluationSchema defines the JSON schema for test scoring.
var EvaluationSchema = &llm.Schema{
	Name:        "test-evaluation",
	Description: "Objective scoring of a learner's test answers",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "integer",
				"description": "Overall score 0-100",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Learner-facing feedback (2-4 sentences)",
			},
			"recommendation": map[string]any{
				"type":        "string",
				"description": "On a weak result, the error pattern to address; empty otherwise",
			},
			"perQuestion": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type": "string",
						},
						"correct": map[string]any{
							"type": "boolean",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "One-sentence explanation of the judgement",
						},
					},
					"required":             []any{"id", "correct", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"score", "feedback", "recommendation", "perQuestion"},
		"additionalProperties": false,
	},
}
