package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"fjacquet/doc-recognizer/internal/llm"
	"fjacquet/doc-recognizer/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type recordedRequest struct {
	Path string
	Body map[string]any
}

func newTestServer(t *testing.T, answer string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var requests []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		mu.Lock()
		requests = append(requests, recordedRequest{Path: r.URL.Path, Body: body})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"role":  "model",
						"parts": []any{map[string]any{"text": answer}},
					},
				},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{}, logging.NewMockLogger())
	assert.Error(t, err)
}

func TestClient_GenerateText(t *testing.T) {
	srv, requests := newTestServer(t, "7")

	c, err := New(context.Background(), Config{APIKey: "test-key", Model: "test-model", BaseURL: srv.URL}, logging.NewMockLogger())
	require.NoError(t, err)
	assert.Equal(t, "test-model", c.Model())

	out, err := c.GenerateText(context.Background(), "classify this")
	require.NoError(t, err)
	assert.Equal(t, "7", out)

	require.Len(t, *requests, 1)
	assert.True(t, strings.HasSuffix((*requests)[0].Path, "models/test-model:generateContent"))
}

func TestClient_GenerateJSON_SendsSchema(t *testing.T) {
	srv, requests := newTestServer(t, `{"proveedor":"ACME"}`)

	c, err := New(context.Background(), Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, c.Model())

	schema := &llm.Schema{
		Type:       llm.TypeObject,
		Properties: map[string]*llm.Schema{"proveedor": {Type: llm.TypeString}},
		Required:   []string{"proveedor"},
	}
	out, err := c.GenerateJSON(context.Background(), "extract", schema)
	require.NoError(t, err)
	assert.JSONEq(t, `{"proveedor":"ACME"}`, out)

	require.Len(t, *requests, 1)
	genCfg, ok := (*requests)[0].Body["generationConfig"].(map[string]any)
	require.True(t, ok, "generationConfig missing from request")
	assert.Equal(t, "application/json", genCfg["responseMimeType"])
	assert.NotNil(t, genCfg["responseSchema"])
}

func TestClient_EmptyAnswer(t *testing.T) {
	srv, _ := newTestServer(t, "  ")

	c, err := New(context.Background(), Config{APIKey: "k", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	_, err = c.GenerateText(context.Background(), "p")
	assert.Error(t, err)
}

func TestToGenaiSchema(t *testing.T) {
	s := &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"monto":      {Type: llm.TypeNumber},
			"referencia": {Type: llm.TypeString, Nullable: true},
			"movimientos": {
				Type:  llm.TypeArray,
				Items: &llm.Schema{Type: llm.TypeObject, Properties: map[string]*llm.Schema{"tipo": {Type: llm.TypeString, Enum: []string{"cargo"}}}},
			},
		},
		Order:    []string{"monto"},
		Required: []string{"monto"},
	}

	g := toGenaiSchema(s)
	assert.Equal(t, genai.TypeObject, g.Type)
	assert.Equal(t, []string{"monto", "movimientos", "referencia"}, g.PropertyOrdering)
	assert.Equal(t, genai.TypeNumber, g.Properties["monto"].Type)
	require.NotNil(t, g.Properties["referencia"].Nullable)
	assert.True(t, *g.Properties["referencia"].Nullable)
	assert.Nil(t, g.Properties["monto"].Nullable)
	assert.Equal(t, genai.TypeArray, g.Properties["movimientos"].Type)
	assert.Equal(t, []string{"cargo"}, g.Properties["movimientos"].Items.Properties["tipo"].Enum)
	assert.Nil(t, toGenaiSchema(nil))
}
