// Package gemini implements llm.Model on the google.golang.org/genai SDK.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/doc-recognizer/internal/llm"
	"fjacquet/doc-recognizer/internal/logging"

	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.0-flash"

// Config holds the connection settings for the Gemini API.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // overrides the API endpoint, used by tests and proxies
	Timeout time.Duration
}

// Client sends prompts to a Gemini model with temperature 0.
type Client struct {
	client *genai.Client
	model  string
	logger logging.Logger
}

// New creates a Client. The API key is required.
func New(ctx context.Context, cfg Config, logger logging.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: API key is not configured")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	httpOpts := genai.HTTPOptions{BaseURL: cfg.BaseURL}
	if cfg.Timeout > 0 {
		httpOpts.Timeout = &cfg.Timeout
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: httpOpts,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Client{
		client: client,
		model:  model,
		logger: logging.OrDefault(logger),
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// GenerateJSON implements llm.Model. The schema, when given, constrains the
// response on the provider side as well.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, schema *llm.Schema) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
	}
	if schema != nil {
		cfg.ResponseSchema = toGenaiSchema(schema)
	}
	return c.generate(ctx, prompt, cfg)
}

// GenerateText implements llm.Model.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
}

func (c *Client) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := resp.Text()
	c.logger.Debug("Model call completed",
		logging.F(logging.FieldProvider, "gemini"),
		logging.F(logging.FieldModel, c.model),
		logging.F(logging.FieldChars, len(text)),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini: empty response from model")
	}
	return text, nil
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
	}
	if s.Nullable {
		out.Nullable = genai.Ptr(true)
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
		out.PropertyOrdering = s.PropertyNames()
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
