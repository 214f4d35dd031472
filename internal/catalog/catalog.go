package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// InputSchema describes the parameters a tool accepts. It mirrors the
// "object" subset of JSON Schema: named properties plus a required list.
type InputSchema struct {
	Properties map[string]map[string]any `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
}

// JSON renders the schema as a JSON Schema object document, suitable for
// gojsonschema validation and for embedding in provider prompts.
func (s InputSchema) JSON() (string, error) {
	doc := map[string]any{
		"type":       "object",
		"properties": s.Properties,
	}
	if s.Properties == nil {
		doc["properties"] = map[string]map[string]any{}
	}
	if len(s.Required) > 0 {
		doc["required"] = s.Required
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal input schema: %w", err)
	}
	return string(b), nil
}

// Tool is one invocable capability. Tools are immutable once registered.
type Tool struct {
	Name        string
	Description string
	InputSchema InputSchema
}

// Category returns the tool's category: the token before the first
// underscore ("shipments_list" -> "shipments"). This is a naming convention,
// not an enforced taxonomy; names without a delimiter are their own category.
func Category(name string) string {
	if i := strings.Index(name, "_"); i > 0 {
		return name[:i]
	}
	return name
}

// Catalog is the process-wide, read-only registry of tools. It is built once
// at startup and shared by reference; concurrent reads are safe because
// nothing mutates it after New returns.
type Catalog struct {
	tools map[string]Tool
	order []string
}

// New builds a catalog from the given tools. The schema integrity gate runs
// here: a catalog that fails validation is never constructed, so downstream
// plan validation can assume well-formed schemas.
func New(tools []Tool) (*Catalog, error) {
	if res := ValidateToolSchemas(tools); !res.Valid {
		return nil, fmt.Errorf("tool catalog failed validation: %s", strings.Join(res.Errors, "; "))
	}

	c := &Catalog{
		tools: make(map[string]Tool, len(tools)),
		order: make([]string, 0, len(tools)),
	}
	for _, t := range tools {
		c.tools[t.Name] = t
		c.order = append(c.order, t.Name)
	}
	return c, nil
}

// All returns every registered tool in registration order.
func (c *Catalog) All() []Tool {
	out := make([]Tool, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.tools[name])
	}
	return out
}

// Get looks up a tool by name.
func (c *Catalog) Get(name string) (Tool, bool) {
	t, ok := c.tools[name]
	return t, ok
}

// Names returns all tool names in registration order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Categories returns the distinct tool categories, sorted.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	for _, name := range c.order {
		seen[Category(name)] = true
	}
	out := make([]string, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered tools.
func (c *Catalog) Len() int {
	return len(c.order)
}
