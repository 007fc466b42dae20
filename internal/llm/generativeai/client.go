// Package generativeai implements llm.Model on the github.com/google/generative-ai-go SDK.
package generativeai

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/doc-recognizer/internal/llm"
	"fjacquet/doc-recognizer/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-1.5-flash"

// Client sends prompts to a Gemini model through the legacy SDK.
type Client struct {
	client *genai.Client
	model  string
	logger logging.Logger
}

// New creates a Client. Extra options are passed to the SDK (endpoint, HTTP client).
func New(ctx context.Context, apiKey, model string, logger logging.Logger, opts ...option.ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("generativeai: API key is not configured")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client, model: model, logger: logging.OrDefault(logger)}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) generativeModel() *genai.GenerativeModel {
	m := c.client.GenerativeModel(c.model)
	m.SetTemperature(0)
	return m
}

// GenerateJSON implements llm.Model.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, schema *llm.Schema) (string, error) {
	m := c.generativeModel()
	m.ResponseMIMEType = "application/json"
	if schema != nil {
		m.ResponseSchema = toGenaiSchema(schema)
	}
	return c.generate(ctx, m, prompt)
}

// GenerateText implements llm.Model.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, c.generativeModel(), prompt)
}

func (c *Client) generate(ctx context.Context, m *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	c.logger.Debug("Model call completed",
		logging.F(logging.FieldProvider, "generativeai"),
		logging.F(logging.FieldModel, c.model),
		logging.F(logging.FieldChars, len(text)))
	return text, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from Gemini API")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("no response from Gemini API")
	}
	return b.String(), nil
}

func toGenaiSchema(s *llm.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genaiType(s.Type),
		Description: s.Description,
		Format:      s.Format,
		Enum:        s.Enum,
		Required:    s.Required,
		Nullable:    s.Nullable,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	if s.Items != nil {
		out.Items = toGenaiSchema(s.Items)
	}
	return out
}

func genaiType(t llm.Type) genai.Type {
	switch t {
	case llm.TypeObject:
		return genai.TypeObject
	case llm.TypeArray:
		return genai.TypeArray
	case llm.TypeNumber:
		return genai.TypeNumber
	case llm.TypeInteger:
		return genai.TypeInteger
	case llm.TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
