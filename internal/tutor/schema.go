package tutor

import (
	"github.com/Dimaray2024/xiaona/internal/llm"
	"github.com/Dimaray2024/xiaona/internal/subject"
)

func sectionsDefinition(subtitleDesc, contentDesc string) map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"subtitle": map[string]any{"type": "string", "description": subtitleDesc},
				"content":  map[string]any{"type": "string", "description": contentDesc},
			},
			"required":             []any{"subtitle", "content"},
			"additionalProperties": false,
		},
	}
}

// AnalysisSchema is the response shape of AnalyzeProblem.
var AnalysisSchema = &llm.Schema{
	Name:        "problem-analysis",
	Description: "Step-by-step guidance for a problem, without the final answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":    map[string]any{"type": "string", "description": "主标题"},
			"sections": sectionsDefinition("步骤的小标题", "步骤的详细说明"),
		},
		"required":             []any{"title", "sections"},
		"additionalProperties": false,
	},
}

// ChatSchema is the response shape of ChatTurn.
var ChatSchema = &llm.Schema{
	Name:        "chat-reply",
	Description: "A tutor reply split into titled points",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":    map[string]any{"type": "string", "description": "为你的回复起一个简短的标题"},
			"sections": sectionsDefinition("步骤或要点的小标题", "对步骤或要点的详细说明"),
		},
		"required":             []any{"title", "sections"},
		"additionalProperties": false,
	},
}

// GradingSchema is the response shape of GradeHomework.
var GradingSchema = &llm.Schema{
	Name:        "homework-grading",
	Description: "Whether the homework is blank, and every incorrect item",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"isBlank": map[string]any{"type": "boolean"},
			"mistakes": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"problemDescription": map[string]any{"type": "string"},
						"reasonForError":     map[string]any{"type": "string"},
						"correctSteps":       map[string]any{"type": "string"},
						"subject": map[string]any{
							"type": "string",
							"enum": subject.EnumValues(),
						},
					},
					"required":             []any{"problemDescription", "reasonForError", "correctSteps", "subject"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"isBlank", "mistakes"},
		"additionalProperties": false,
	},
}
