package textutils_test

import (
	"testing"

	"fjacquet/doc-recognizer/internal/textutils"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "Factura", expected: "factura"},
		{name: "accents", input: "Comisión por DEPÓSITO", expected: "comision por deposito"},
		{name: "enye kept as n", input: "Año", expected: "ano"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, textutils.Fold(tt.input))
		})
	}
}

func TestMatchedKeywords(t *testing.T) {
	keywords := []string{"estado de cuenta", "deposito", "retiro", "statement"}

	found := textutils.MatchedKeywords("ESTADO DE CUENTA ... Retiro ... retiro", keywords)
	assert.Equal(t, []string{"estado de cuenta", "retiro"}, found)

	// Accents are not folded.
	assert.Empty(t, textutils.MatchedKeywords("Depósito DEPÓSITO", keywords))

	assert.Empty(t, textutils.MatchedKeywords("nothing relevant", keywords))
	assert.Empty(t, textutils.MatchedKeywords("anything", []string{""}))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "abc", textutils.Preview("abc", 5))
	assert.Equal(t, "ab...", textutils.Preview("abcdef", 2))
	assert.Equal(t, "", textutils.Preview("abc", 0))
	assert.Equal(t, "ñá...", textutils.Preview("ñáé", 2))
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "a b c", textutils.CollapseSpaces("  a \n\t b   c "))
}
