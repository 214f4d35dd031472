package catalog

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationResult reports the outcome of the catalog integrity check.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// ValidateToolSchemas checks the static integrity of a tool list: name
// presence and uniqueness, schema well-formedness (the rendered JSON Schema
// must itself compile), and required ⊆ properties. It runs once at process
// start, not on the request path; a failing catalog must prevent the plan
// generator from starting.
func ValidateToolSchemas(tools []Tool) ValidationResult {
	res := ValidationResult{Valid: true}
	fail := func(format string, args ...any) {
		res.Valid = false
		res.Errors = append(res.Errors, fmt.Sprintf(format, args...))
	}

	seen := make(map[string]bool, len(tools))
	for _, t := range tools {
		if t.Name == "" {
			fail("tool with empty name")
			continue
		}
		if seen[t.Name] {
			fail("duplicate tool name: %s", t.Name)
			continue
		}
		seen[t.Name] = true

		schemaJSON, err := t.InputSchema.JSON()
		if err != nil {
			fail("tool %s: %v", t.Name, err)
			continue
		}
		if _, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON)); err != nil {
			fail("tool %s: invalid input schema: %v", t.Name, err)
			continue
		}

		for _, req := range t.InputSchema.Required {
			if _, ok := t.InputSchema.Properties[req]; !ok {
				fail("tool %s: required parameter %q not declared in properties", t.Name, req)
			}
		}
	}
	return res
}
