package solution

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrResponseParse is returned when model output cannot be read as a Solution.
var ErrResponseParse = errors.New("could not read model response")

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_-]*\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
)

// StripFences removes an optional leading ``` (with optional language tag)
// and trailing ``` around raw, trimming surrounding whitespace.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Parse strips code fences from raw and decodes it into a Solution.
// All failures wrap ErrResponseParse.
func Parse(raw string) (*Solution, error) {
	body := StripFences(raw)

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseParse, err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("%w: compile schema: %v", ErrResponseParse, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseParse, err)
	}

	var sol Solution
	if err := json.Unmarshal([]byte(body), &sol); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseParse, err)
	}
	return &sol, nil
}

// shapeSchema only checks the structural shape the presentation layer
// relies on: every field is optional, but a present steps value must be a
// list of objects and text fields must be strings.
var shapeSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"topic": nullableString,
		"analysis": map[string]any{
			"type": []any{"object", "null"},
			"properties": map[string]any{
				"given":    nullableString,
				"find":     nullableString,
				"keywords": nullableString,
				"logic":    nullableString,
			},
		},
		"equation": nullableString,
		"steps": map[string]any{
			"type": []any{"array", "null"},
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":       nullableString,
					"explanation": nullableString,
				},
			},
		},
	},
}

var nullableString = map[string]any{"type": []any{"string", "null"}}

var (
	schemaOnce sync.Once
	schemaVal  *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		const url = "schema://solution-shape.json"
		if err := c.AddResource(url, shapeSchema); err != nil {
			schemaErr = err
			return
		}
		schemaVal, schemaErr = c.Compile(url)
	})
	return schemaVal, schemaErr
}
