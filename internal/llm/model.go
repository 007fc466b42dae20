// Package llm is the boundary to the generative language model. Components
// depend on the Model interface; concrete clients live in sub-packages.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Model generates completions for a prompt.
type Model interface {
	// GenerateJSON asks for a JSON document matching schema and returns the
	// raw response text.
	GenerateJSON(ctx context.Context, prompt string, schema *Schema) (string, error)

	// GenerateText asks for a free-text answer.
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ErrNotConfigured is returned by Unconfigured for every call.
var ErrNotConfigured = errors.New("language model API key is not configured")

// Unconfigured stands in for a model when no credentials are available, so
// that commands which never call the model still work.
type Unconfigured struct{}

// GenerateJSON implements Model.
func (Unconfigured) GenerateJSON(context.Context, string, *Schema) (string, error) {
	return "", ErrNotConfigured
}

// GenerateText implements Model.
func (Unconfigured) GenerateText(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

// Type is a schema value type.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

// Schema describes the structure a model response must have. It renders to
// JSON Schema for validation and prompting, and to provider schemas for
// response constraining.
type Schema struct {
	Type        Type
	Description string
	Format      string
	Properties  map[string]*Schema
	// Order lists property names in the order they should be produced.
	Order    []string
	Items    *Schema
	Required []string
	Enum     []string
	Nullable bool
}

// PropertyNames returns the property names in Order, then any remaining ones sorted.
func (s *Schema) PropertyNames() []string {
	seen := make(map[string]bool, len(s.Properties))
	names := make([]string, 0, len(s.Properties))
	for _, name := range s.Order {
		if _, ok := s.Properties[name]; ok && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range s.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// ToJSONSchema renders the schema as a JSON Schema document.
// Numbers also accept strings because some providers quote locale-formatted amounts.
func (s *Schema) ToJSONSchema() map[string]any {
	out := map[string]any{}
	types := []string{string(s.Type)}
	if s.Type == TypeNumber {
		types = append(types, string(TypeString))
	}
	if s.Nullable {
		types = append(types, "null")
	}
	if len(types) == 1 {
		out["type"] = types[0]
	} else {
		out["type"] = types
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.Type == TypeObject {
		props := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = prop.ToJSONSchema()
		}
		out["properties"] = props
		if len(s.Required) > 0 {
			out["required"] = s.Required
		}
	}
	if s.Type == TypeArray && s.Items != nil {
		out["items"] = s.Items.ToJSONSchema()
	}
	return out
}

// FormatInstructions tells the model how to shape its answer.
func (s *Schema) FormatInstructions() string {
	raw, err := json.MarshalIndent(s.ToJSONSchema(), "", "  ")
	if err != nil {
		// The schema is built from plain maps and strings.
		panic(fmt.Sprintf("llm: schema cannot be marshalled: %v", err))
	}

	var b strings.Builder
	b.WriteString("The output must be a single JSON object that conforms to the JSON schema below.\n")
	b.WriteString("Return ONLY the raw JSON. Do not wrap it in code fences and do not add any text.\n")
	b.WriteString("Dates use the format YYYY-MM-DD.\n\n")
	b.WriteString("Schema:\n")
	b.Write(raw)
	return b.String()
}
