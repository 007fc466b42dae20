package categorizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fjacquet/doc-recognizer/internal/llm"
	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"
	"fjacquet/doc-recognizer/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCatalog = models.CategoryCatalog{
	1: "Combustible",
	2: "Papelería",
	3: "Servicios financieros",
}

func TestClassify_ShortCircuits(t *testing.T) {
	tests := []struct {
		name        string
		description string
		catalog     models.CategoryCatalog
	}{
		{name: "empty description", description: "", catalog: models.CategoryCatalog{1: "Food"}},
		{name: "blank description", description: "   ", catalog: models.CategoryCatalog{1: "Food"}},
		{name: "empty catalog", description: "GASOLINA PEMEX", catalog: models.CategoryCatalog{}},
		{name: "nil catalog", description: "GASOLINA PEMEX", catalog: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &llm.MockModel{TextResponse: "1"}
			c := NewClassifier(model, logging.NewMockLogger())

			got, err := c.Classify(context.Background(), tt.description, tt.catalog)
			require.NoError(t, err)
			assert.Nil(t, got)
			assert.Equal(t, 0, model.Calls())
		})
	}
}

func TestClassify_Answers(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		expected *models.CategorySuggestion
		warns    bool
	}{
		{name: "plain id", answer: "1", expected: &models.CategorySuggestion{ID: 1, Name: "Combustible"}},
		{name: "decorated id", answer: " `3`.\n", expected: &models.CategorySuggestion{ID: 3, Name: "Servicios financieros"}},
		{name: "id prefix", answer: "ID: 2", expected: &models.CategorySuggestion{ID: 2, Name: "Papelería"}},
		{name: "NINGUNA", answer: "NINGUNA"},
		{name: "quoted ninguna", answer: `"ninguna"`},
		{name: "NONE", answer: "none"},
		{name: "N/A", answer: "N/A"},
		{name: "NO", answer: "No."},
		{name: "NO_MATCH", answer: "NO_MATCH"},
		{name: "unknown id", answer: "99", warns: true},
		{name: "category name instead of id", answer: "Combustible", warns: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := logging.NewMockLogger()
			model := &llm.MockModel{TextResponse: tt.answer}
			c := NewClassifier(model, logger)

			got, err := c.Classify(context.Background(), "GASOLINA PEMEX", testCatalog)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, 1, model.TextCalls())
			assert.Equal(t, tt.warns, logger.HasEntry("WARN", "Model returned an invalid category id"))
		})
	}
}

func TestClassify_UnknownCategoryIsLoggedAsFailure(t *testing.T) {
	logger := logging.NewMockLogger()
	c := NewClassifier(&llm.MockModel{TextResponse: "42"}, logger)

	got, err := c.Classify(context.Background(), "OXXO", testCatalog)
	require.NoError(t, err)
	assert.Nil(t, got)

	warns := logger.GetEntriesByLevel("WARN")
	require.Len(t, warns, 1)
	var failure *parsererror.ClassificationFailure
	require.ErrorAs(t, warns[0].Error, &failure)
	assert.Equal(t, "OXXO", failure.Description)
	assert.Equal(t, "42", failure.Response)
	assert.NoError(t, failure.Err)
	assert.Equal(t, `classification of "OXXO" returned unknown category "42"`, failure.Error())
}

func TestClassify_ProviderError(t *testing.T) {
	c := NewClassifier(&llm.MockModel{TextErr: errors.New("429 resource exhausted")}, logging.NewMockLogger())

	got, err := c.Classify(context.Background(), "GASOLINA PEMEX", testCatalog)
	assert.Nil(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429 resource exhausted")
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("FARMACIA GUADALAJARA", models.CategoryCatalog{7: "Salud", 2: "Papelería"})

	assert.Contains(t, prompt, `"FARMACIA GUADALAJARA"`)
	assert.Contains(t, prompt, "- 2: Papelería\n- 7: Salud")
	assert.Contains(t, prompt, "NINGUNA")
	assert.Less(t, strings.Index(prompt, "- 2:"), strings.Index(prompt, "- 7:"))
}
