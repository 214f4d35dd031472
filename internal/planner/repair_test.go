package planner

import (
	"encoding/json"
	"testing"
)

func TestRepairFixtures(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "trailing comma in array",
			in:   `{"steps": [1,2,3,]}`,
			want: `{"steps": [1,2,3]}`,
		},
		{
			name: "trailing comma in object",
			in:   `{"a": 1,}`,
			want: `{"a": 1}`,
		},
		{
			name: "markdown preamble and suffix",
			in:   "Here is the plan:\n{\"steps\": []}\nLet me know if you need changes.",
			want: `{"steps": []}`,
		},
		{
			name: "unclosed array and object",
			in:   `{"steps": [{"id": "step-1"`,
			want: `{"steps": [{"id": "step-1"}]}`,
		},
		{
			name: "excess closing brace",
			in:   `{"steps": []}}`,
			want: `{"steps": []}`,
		},
		{
			name: "valid json unchanged",
			in:   `{"steps": [{"id": "step-1", "params": {"note": "a,]}"}}]}`,
			want: `{"steps": [{"id": "step-1", "params": {"note": "a,]}"}}]}`,
		},
		{
			name: "control character normalized",
			in:   "{\"a\": \x01 1,}",
			want: `{"a":   1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Repair(tt.in)
			if got != tt.want {
				t.Errorf("Repair(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRepairIsIdempotent(t *testing.T) {
	inputs := []string{
		`{"steps": [1,2,3,]}`,
		`{"a": 1}`,
		"no json here at all",
		"```json\n{\"steps\": [\n```",
		`{"unterminated": "string`,
		"",
	}

	for _, in := range inputs {
		once := Repair(in)
		twice := Repair(once)
		if once != twice {
			t.Errorf("Repair not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestRepairPreservesValidJSON(t *testing.T) {
	valid := []string{
		`{}`,
		`[]`,
		`{"steps": [{"id": "a", "dependsOn": ["b"], "params": {"q": "x,y,]"}}]}`,
		`  {"padded": true}  `,
	}

	for _, in := range valid {
		if got := Repair(in); got != in {
			t.Errorf("Repair(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestRepairedOutputParses(t *testing.T) {
	in := `Sure! Here's your plan:
{"steps": [
  {"id": "step-1", "tool": "shipments_list", "params": {},},
]}`

	var doc map[string]any
	if err := json.Unmarshal([]byte(Repair(in)), &doc); err != nil {
		t.Fatalf("repaired output does not parse: %v", err)
	}
	if _, ok := doc["steps"]; !ok {
		t.Error("repaired document lost the steps field")
	}
}
