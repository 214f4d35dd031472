package planner

import (
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"github.com/mehdi-bk/stevedore/internal/catalog"
)

// ValidatePlan checks a plan candidate for structural correctness against
// the catalog: unique step ids, resolvable dependencies, an acyclic
// dependency graph, known tools, and schema-valid parameters. It returns
// every problem found rather than stopping at the first, so a refinement
// round can correct them all at once.
func ValidatePlan(p *Plan, cat *catalog.Catalog) []string {
	var problems []string

	if len(p.Steps) == 0 {
		return []string{"plan has no steps"}
	}

	ids := make(map[string]bool, len(p.Steps))
	for _, s := range p.Steps {
		if s.ID == "" {
			problems = append(problems, "step with empty id")
			continue
		}
		if ids[s.ID] {
			problems = append(problems, fmt.Sprintf("duplicate step id %q", s.ID))
			continue
		}
		ids[s.ID] = true
	}

	for _, s := range p.Steps {
		for _, dep := range s.DependsOn {
			if !ids[dep] {
				problems = append(problems, fmt.Sprintf("step %q depends on unknown step %q", s.ID, dep))
			}
			if dep == s.ID {
				problems = append(problems, fmt.Sprintf("step %q depends on itself", s.ID))
			}
		}
	}

	if cycErr := CheckAcyclic(p.Steps); cycErr != nil {
		problems = append(problems, cycErr.Error())
	}

	for _, s := range p.Steps {
		tool, ok := cat.Get(s.Tool)
		if !ok {
			problems = append(problems, (&ToolNotFoundError{StepID: s.ID, Tool: s.Tool}).Error())
			continue
		}
		problems = append(problems, validateStepParams(s, tool)...)
	}

	return problems
}

// validateStepParams checks a step's loosely-typed params against the tool's
// input schema. Missing required keys are reported explicitly; everything
// else is delegated to the JSON Schema validator.
func validateStepParams(s Step, tool catalog.Tool) []string {
	var problems []string

	for _, req := range tool.InputSchema.Required {
		if _, ok := s.Params[req]; !ok {
			problems = append(problems, fmt.Sprintf("step %q missing required parameter %q for tool %s", s.ID, req, tool.Name))
		}
	}

	schemaJSON, err := tool.InputSchema.JSON()
	if err != nil {
		// The catalog integrity gate makes this unreachable in practice.
		problems = append(problems, fmt.Sprintf("step %q: tool %s schema error: %v", s.ID, tool.Name, err))
		return problems
	}

	params := s.Params
	if params == nil {
		params = map[string]any{}
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewGoLoader(params),
	)
	if err != nil {
		problems = append(problems, fmt.Sprintf("step %q: schema validation failed: %v", s.ID, err))
		return problems
	}
	if !result.Valid() {
		for _, verr := range result.Errors() {
			problems = append(problems, fmt.Sprintf("step %q: %s", s.ID, verr.String()))
		}
	}
	return problems
}

// CheckAcyclic runs Kahn's algorithm over the step-dependency graph and
// returns a CyclicDependencyError naming the steps left unresolved if the
// graph has a cycle. Dependencies on unknown steps are ignored here; they
// are reported separately.
func CheckAcyclic(steps []Step) *CyclicDependencyError {
	known := make(map[string]bool, len(steps))
	for _, s := range steps {
		known[s.ID] = true
	}

	indegree := make(map[string]int, len(steps))
	dependents := make(map[string][]string, len(steps))
	for _, s := range steps {
		if _, ok := indegree[s.ID]; !ok {
			indegree[s.ID] = 0
		}
		for _, dep := range s.DependsOn {
			if !known[dep] {
				continue
			}
			indegree[s.ID]++
			dependents[dep] = append(dependents[dep], s.ID)
		}
	}

	var queue []string
	for id, d := range indegree {
		if d == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	resolved := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		resolved++
		for _, next := range dependents[id] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if resolved == len(indegree) {
		return nil
	}

	var stuck []string
	for id, d := range indegree {
		if d > 0 {
			stuck = append(stuck, id)
		}
	}
	sort.Strings(stuck)
	return &CyclicDependencyError{Steps: stuck}
}
