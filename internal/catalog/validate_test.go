package catalog

import (
	"strings"
	"testing"
)

func TestValidateToolSchemas(t *testing.T) {
	tests := []struct {
		name      string
		tools     []Tool
		wantValid bool
		wantErr   string
	}{
		{
			name:      "valid catalog",
			tools:     sampleTools(),
			wantValid: true,
		},
		{
			name:      "empty catalog is valid",
			tools:     nil,
			wantValid: true,
		},
		{
			name: "empty tool name",
			tools: []Tool{
				{Name: "", Description: "anonymous"},
			},
			wantValid: false,
			wantErr:   "empty name",
		},
		{
			name: "duplicate names",
			tools: []Tool{
				{Name: "shipments_list"},
				{Name: "shipments_list"},
			},
			wantValid: false,
			wantErr:   "duplicate tool name",
		},
		{
			name: "required not in properties",
			tools: []Tool{
				{
					Name: "documents_get",
					InputSchema: InputSchema{
						Properties: map[string]map[string]any{
							"id": {"type": "string"},
						},
						Required: []string{"id", "doc_type"},
					},
				},
			},
			wantValid: false,
			wantErr:   "doc_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateToolSchemas(tt.tools)
			if res.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v (errors: %v)", res.Valid, tt.wantValid, res.Errors)
			}
			if tt.wantErr != "" {
				found := false
				for _, e := range res.Errors {
					if strings.Contains(e, tt.wantErr) {
						found = true
					}
				}
				if !found {
					t.Errorf("errors %v missing %q", res.Errors, tt.wantErr)
				}
			}
		})
	}
}
