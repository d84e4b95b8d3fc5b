package quiz

import "github.com/abhisek/eduai/internal/llm"

// QuestionBankSchema describes the question bank JSON the test prompt asks
// for. Responses are checked against it for warnings only.
var QuestionBankSchema = &llm.Schema{
	Name:        "question-bank",
	Description: "Test questions grouped by category and difficulty band",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"mcqs": bandsSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question": map[string]any{"type": "string"},
					"options": map[string]any{
						"type":     "array",
						"items":    map[string]any{"type": "string"},
						"minItems": 4,
						"maxItems": 4,
					},
					"answer":      map[string]any{"type": "string"},
					"explanation": map[string]any{"type": "string"},
				},
				"required": []any{"question", "options", "answer"},
			}),
			"true_false": bandsSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"statement":   map[string]any{"type": "string"},
					"answer":      map[string]any{"type": []any{"boolean", "string"}},
					"explanation": map[string]any{"type": "string"},
				},
				"required": []any{"statement", "answer"},
			}),
			"fill_blanks": bandsSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question":    map[string]any{"type": "string"},
					"answer":      map[string]any{"type": "string"},
					"explanation": map[string]any{"type": "string"},
				},
				"required": []any{"question", "answer"},
			}),
			"short_qa":  bandsSchema(qaSchema),
			"medium_qa": bandsSchema(qaSchema),
			"long_qa":   bandsSchema(qaSchema),
		},
	},
}

var qaSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"question": map[string]any{"type": "string"},
		"answer":   map[string]any{"type": "string"},
		"points":   map[string]any{"type": []any{"number", "string"}},
	},
	"required": []any{"question", "answer"},
}

// bandsSchema wraps an item schema in the difficulty band object.
func bandsSchema(item map[string]any) map[string]any {
	band := map[string]any{"type": "array", "items": item}
	props := make(map[string]any, len(Difficulties))
	for _, d := range Difficulties {
		props[string(d)] = band
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
}

// CorrectionsSchema describes the grader's reply: one correction per
// answer key.
var CorrectionsSchema = &llm.Schema{
	Name:        "corrections",
	Description: "Per-answer corrections keyed by answer key",
	Definition: map[string]any{
		"type": "object",
		"additionalProperties": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"is_correct":     map[string]any{"type": "boolean"},
				"score":          map[string]any{"type": []any{"number", "string"}},
				"feedback":       map[string]any{"type": "string"},
				"correct_answer": map[string]any{"type": "string"},
			},
			"required": []any{"is_correct"},
		},
	},
}
