package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// CleanJSON strips Markdown fences and surrounding prose from a model answer.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	// Drop prose before the document. An array stays an array so the caller
	// can reject it.
	if start := strings.IndexAny(s, "{["); start > 0 {
		s = s[start:]
	}
	if strings.HasPrefix(s, "{") {
		if end := strings.LastIndex(s, "}"); end > 0 {
			s = s[:end+1]
		}
	}
	return s
}

// DecodeObject parses a model answer that must be a JSON object.
// Arrays, scalars and malformed JSON are errors.
func DecodeObject(raw string) (map[string]any, error) {
	clean := CleanJSON(raw)
	if clean == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	dec := json.NewDecoder(strings.NewReader(clean))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("response is a JSON %s, expected an object", jsonKind(v))
	}
	return obj, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Validator validates decoded responses against a compiled schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles s.
func NewValidator(s *Schema) (*Validator, error) {
	b, err := json.Marshal(s.ToJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// MustValidator is NewValidator for schemas built in code.
func MustValidator(s *Schema) *Validator {
	v, err := NewValidator(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks a decoded document. Documents decoded with UseNumber are
// re-encoded so the validator sees plain JSON values.
func (v *Validator) Validate(doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	var plain any
	if err := json.Unmarshal(b, &plain); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	if err := v.schema.Validate(plain); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
