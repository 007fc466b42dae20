package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentType(t *testing.T) {
	tests := []struct {
		input    string
		expected DocumentType
		wantErr  bool
	}{
		{"", DocumentTypeAuto, false},
		{"auto", DocumentTypeAuto, false},
		{"FACTURA", DocumentTypeInvoice, false},
		{"invoice", DocumentTypeInvoice, false},
		{"estado_cuenta", DocumentTypeStatement, false},
		{" statement ", DocumentTypeStatement, false},
		{"receipt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDocumentType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	assert.True(t, DocumentType("").IsAuto())
	assert.False(t, DocumentTypeInvoice.IsAuto())
}

func TestParseMovementKind(t *testing.T) {
	tests := map[string]MovementKind{
		"cargo":     MovementCharge,
		"Abono":     MovementCredit,
		"DEPÓSITO":  MovementCredit,
		"Comisión":  MovementFee,
		"interés":   MovementInterest,
		"fee":       MovementFee,
		"something": MovementOther,
		"":          MovementOther,
	}

	for label, expected := range tests {
		assert.Equal(t, expected, ParseMovementKind(label), "label %q", label)
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, time.March, 1)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equal(d.Time))

	var empty Date
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.True(t, empty.IsZero())

	data, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	assert.Error(t, json.Unmarshal([]byte(`"01/03/2024"`), &back))
}

func TestParseLooseDate(t *testing.T) {
	for _, input := range []string{"2024-03-01", "01/03/2024", "01-MAR-2024", "1 de marzo de 2024"} {
		d, err := ParseLooseDate(input)
		require.NoError(t, err, input)
		assert.Equal(t, NewDate(2024, time.March, 1), d, input)
	}

	_, err := ParseLooseDate("marzo")
	assert.Error(t, err)
}

func TestCategoryCatalog(t *testing.T) {
	catalog := CategoryCatalog{7: "Combustible", 2: "Papelería", 5: "Fertilizantes"}

	assert.Equal(t, []int{2, 5, 7}, catalog.IDs())
	assert.Equal(t, &CategorySuggestion{ID: 5, Name: "Fertilizantes"}, catalog.Lookup(5))
	assert.Nil(t, catalog.Lookup(99))

	clone := catalog.Clone()
	clone[1] = "Nueva"
	assert.Len(t, catalog, 3)
}

func TestExtractedStatementCharges(t *testing.T) {
	st := ExtractedStatement{Movements: []StatementMovement{
		{Description: "A", Amount: decimal.RequireFromString("-10")},
		{Description: "B", Amount: decimal.RequireFromString("25")},
		{Description: "C", Amount: decimal.RequireFromString("-0.5")},
		{Description: "D", Amount: decimal.Zero},
	}}

	assert.Equal(t, []int{0, 2}, st.Charges())
	assert.Equal(t, 0, st.CategorizedCount())

	st.Movements[2].SuggestedCategory = &CategorySuggestion{ID: 1, Name: "Food"}
	assert.Equal(t, 1, st.CategorizedCount())
}

func TestRecognitionResultValidate(t *testing.T) {
	assert.NoError(t, InvoiceResult(ExtractedInvoice{Supplier: "ACME"}, false).Validate())
	assert.NoError(t, StatementResult(ExtractedStatement{Bank: "BBVA"}, true).Validate())

	assert.Error(t, RecognitionResult{Type: DocumentTypeInvoice}.Validate())
	assert.Error(t, RecognitionResult{Type: DocumentTypeAuto}.Validate())
	assert.Error(t, RecognitionResult{
		Type:      DocumentTypeStatement,
		Statement: &ExtractedStatement{},
		Invoice:   &ExtractedInvoice{},
	}.Validate())
}
