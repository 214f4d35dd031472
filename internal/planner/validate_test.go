package planner

import (
	"strings"
	"testing"

	"github.com/mehdi-bk/stevedore/internal/catalog"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Tool{
		{
			Name:        "shipments_list",
			Description: "List shipments",
			InputSchema: catalog.InputSchema{
				Properties: map[string]map[string]any{
					"status": {"type": "string"},
				},
			},
		},
		{
			Name:        "documents_get",
			Description: "Fetch one document",
			InputSchema: catalog.InputSchema{
				Properties: map[string]map[string]any{
					"id": {"type": "string"},
				},
				Required: []string{"id"},
			},
		},
	})
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return c
}

func TestValidatePlan(t *testing.T) {
	cat := testCatalog(t)

	tests := []struct {
		name     string
		steps    []Step
		wantOK   bool
		wantHint string
	}{
		{
			name: "valid two step plan",
			steps: []Step{
				{ID: "a", Tool: "shipments_list"},
				{ID: "b", Tool: "documents_get", Params: map[string]any{"id": "doc-1"}, DependsOn: []string{"a"}},
			},
			wantOK: true,
		},
		{
			name:     "empty plan",
			steps:    nil,
			wantHint: "no steps",
		},
		{
			name: "duplicate step ids",
			steps: []Step{
				{ID: "a", Tool: "shipments_list"},
				{ID: "a", Tool: "shipments_list"},
			},
			wantHint: "duplicate step id",
		},
		{
			name: "unknown dependency",
			steps: []Step{
				{ID: "a", Tool: "shipments_list", DependsOn: []string{"ghost"}},
			},
			wantHint: "unknown step",
		},
		{
			name: "two step cycle",
			steps: []Step{
				{ID: "a", Tool: "shipments_list", DependsOn: []string{"b"}},
				{ID: "b", Tool: "shipments_list", DependsOn: []string{"a"}},
			},
			wantHint: "cyclic dependency",
		},
		{
			name: "unregistered tool",
			steps: []Step{
				{ID: "a", Tool: "carriers_list"},
			},
			wantHint: `unknown tool "carriers_list"`,
		},
		{
			name: "missing required parameter",
			steps: []Step{
				{ID: "a", Tool: "documents_get"},
			},
			wantHint: `missing required parameter "id"`,
		},
		{
			name: "parameter type mismatch",
			steps: []Step{
				{ID: "a", Tool: "documents_get", Params: map[string]any{"id": 42}},
			},
			wantHint: "Invalid type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := &Plan{Steps: tt.steps}
			problems := ValidatePlan(plan, cat)

			if tt.wantOK {
				if len(problems) != 0 {
					t.Fatalf("ValidatePlan() problems = %v, want none", problems)
				}
				return
			}
			if len(problems) == 0 {
				t.Fatal("ValidatePlan() found no problems, expected some")
			}
			joined := strings.Join(problems, "\n")
			if !strings.Contains(joined, tt.wantHint) {
				t.Errorf("problems %q missing %q", joined, tt.wantHint)
			}
		})
	}
}

func TestCheckAcyclic(t *testing.T) {
	tests := []struct {
		name      string
		steps     []Step
		wantCycle bool
	}{
		{
			name: "diamond is acyclic",
			steps: []Step{
				{ID: "a"},
				{ID: "b", DependsOn: []string{"a"}},
				{ID: "c", DependsOn: []string{"a"}},
				{ID: "d", DependsOn: []string{"b", "c"}},
			},
		},
		{
			name: "self dependency",
			steps: []Step{
				{ID: "a", DependsOn: []string{"a"}},
			},
			wantCycle: true,
		},
		{
			name: "three step cycle",
			steps: []Step{
				{ID: "a", DependsOn: []string{"c"}},
				{ID: "b", DependsOn: []string{"a"}},
				{ID: "c", DependsOn: []string{"b"}},
			},
			wantCycle: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAcyclic(tt.steps)
			if (err != nil) != tt.wantCycle {
				t.Errorf("CheckAcyclic() = %v, wantCycle %v", err, tt.wantCycle)
			}
		})
	}
}
