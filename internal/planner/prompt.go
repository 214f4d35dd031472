package planner

import (
	"fmt"
	"strings"

	"github.com/mehdi-bk/stevedore/internal/catalog"
	"github.com/mehdi-bk/stevedore/internal/complexity"
)

// buildPrompt constructs the completion request: the candidate tools with
// their schemas, the strategy constraints, the output contract, the user
// query, and any feedback accumulated from failed refinement rounds.
func buildPrompt(query string, tools []catalog.Tool, strat complexity.ExecutionStrategy, feedback []string) string {
	var sb strings.Builder

	sb.WriteString("You are a planning assistant for a logistics operations system. ")
	sb.WriteString("Translate the user's request into an execution plan of tool invocations.\n\n")

	sb.WriteString("# Available Tools\n\n")
	for _, t := range tools {
		sb.WriteString(fmt.Sprintf("- **%s**: %s\n", t.Name, t.Description))
		if schemaJSON, err := t.InputSchema.JSON(); err == nil {
			sb.WriteString(fmt.Sprintf("  Input schema: %s\n", schemaJSON))
		}
	}
	sb.WriteString("\n")

	sb.WriteString("# Output Format\n\n")
	sb.WriteString("Respond ONLY with a JSON object following this exact schema, no other text:\n\n")
	sb.WriteString("{\n")
	sb.WriteString("  \"steps\": [\n")
	sb.WriteString("    {\n")
	sb.WriteString("      \"id\": \"step-1\",\n")
	sb.WriteString("      \"tool\": \"tool name from the list above\",\n")
	sb.WriteString("      \"params\": {},\n")
	sb.WriteString("      \"dependsOn\": [\"ids of steps that must finish first\"],\n")
	sb.WriteString("      \"parallel\": true\n")
	sb.WriteString("    }\n")
	sb.WriteString("  ]\n")
	sb.WriteString("}\n\n")

	sb.WriteString("# Planning Rules\n\n")
	sb.WriteString("- Use only tools from the list above and include every required parameter.\n")
	sb.WriteString("- Step ids must be unique. dependsOn may only reference step ids in this plan.\n")
	sb.WriteString("- Declare dependsOn accurately: list a dependency whenever a step consumes another step's output.\n")
	sb.WriteString("- Set parallel to true only when a step has no ordering requirement beyond dependsOn.\n")
	sb.WriteString("- The dependency graph must not contain cycles.\n")
	sb.WriteString(fmt.Sprintf("- Execution strategy is %q: at most %d steps run concurrently, so order the plan accordingly.\n",
		strat.Strategy, strat.MaxParallelSteps))
	sb.WriteString("\n")

	if len(feedback) > 0 {
		sb.WriteString("# Previous Attempt Failed\n\n")
		sb.WriteString("Your earlier plan was rejected for the reasons below. Produce a corrected plan:\n")
		for _, f := range feedback {
			sb.WriteString(fmt.Sprintf("- %s\n", f))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("# Request\n\n")
	sb.WriteString(query)

	return sb.String()
}
