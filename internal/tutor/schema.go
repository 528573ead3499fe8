package tutor

import "github.com/abhisek/mathstep/internal/llm"

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

// SolutionSchema is the structured output schema for a worked solution. It
// is strict-mode compatible: every property is required and no extras are
// allowed, so equation is "-" when there is none.
var SolutionSchema = &llm.Schema{
	Name:        "math-solution",
	Description: "A math problem analysis with ordered solution steps",
	Definition: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"topic", "analysis", "equation", "steps"},
		"properties": map[string]any{
			"topic": stringProp("Topic or type of problem"),
			"analysis": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []any{"given", "find", "keywords", "logic"},
				"properties": map[string]any{
					"given":    stringProp("What the problem tells us"),
					"find":     stringProp("What the problem asks for"),
					"keywords": stringProp("Clues that hint at the method"),
					"logic":    stringProp("Why this approach works"),
				},
			},
			"equation": stringProp("The equation set up, or - when none"),
			"steps": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"title", "explanation"},
					"properties": map[string]any{
						"title":       stringProp("Short step title"),
						"explanation": stringProp("Step explanation with colored span markup"),
					},
				},
			},
		},
	},
}
