package detector

import (
	"testing"

	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"

	"github.com/stretchr/testify/assert"
)

func newTestDetector() *Detector {
	return New(nil, nil, logging.NewMockLogger())
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected models.DocumentType
	}{
		{
			name:     "statement keywords only",
			text:     "ESTADO DE CUENTA - Saldo anterior 1,000 - Movimientos del periodo",
			expected: models.DocumentTypeStatement,
		},
		{
			name:     "invoice keywords only",
			text:     "FACTURA No. 123 Proveedor: ACME Subtotal 100 IVA 16 Total a pagar 116",
			expected: models.DocumentTypeInvoice,
		},
		{
			name:     "tie goes to invoice",
			text:     "statement invoice",
			expected: models.DocumentTypeInvoice,
		},
		{
			name:     "two against two is a tie",
			text:     "transferencia retiro factura cliente",
			expected: models.DocumentTypeInvoice,
		},
		{
			name:     "nothing matches",
			text:     "lorem ipsum dolor sit amet",
			expected: models.DocumentTypeInvoice,
		},
		{
			name:     "accented words do not match unaccented keywords",
			text:     "Comisión por depósito, interés generado",
			expected: models.DocumentTypeInvoice,
		},
		{
			name:     "unaccented keywords match regardless of case",
			text:     "COMISION por DEPOSITO, INTERES generado",
			expected: models.DocumentTypeStatement,
		},
		{
			name:     "repeated keyword counts once",
			text:     "retiro retiro retiro retiro factura cliente",
			expected: models.DocumentTypeInvoice,
		},
		{
			name:     "statement strictly ahead",
			text:     "transferencia retiro deposito factura cliente",
			expected: models.DocumentTypeStatement,
		},
	}

	d := newTestDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, d.Detect(tt.text))
		})
	}
}

func TestScore(t *testing.T) {
	score := newTestDetector().Score("Estado de cuenta BALANCE retiro; factura")
	assert.Equal(t, []string{"estado de cuenta", "retiro", "balance"}, score.Statement)
	assert.Equal(t, []string{"factura"}, score.Invoice)
}

func TestScore_AccentsMustMatch(t *testing.T) {
	score := newTestDetector().Score("Comisión por depósito, interés generado")
	assert.Empty(t, score.Statement)
	assert.Empty(t, score.Invoice)
	assert.Equal(t, models.DocumentTypeInvoice, score.Type())
}

func TestDetectPages_UsesFirstTwoPages(t *testing.T) {
	pages := []string{
		"factura proveedor",
		"cliente",
		"estado de cuenta movimientos transferencia deposito retiro comision",
	}
	assert.Equal(t, models.DocumentTypeInvoice, newTestDetector().DetectPages(pages))
	assert.Equal(t, models.DocumentTypeStatement, newTestDetector().DetectPages(pages[2:]))
}

func TestResolve(t *testing.T) {
	d := newTestDetector()
	pages := []string{"estado de cuenta saldo anterior movimientos"}

	got, detected := d.Resolve(models.DocumentTypeInvoice, pages)
	assert.Equal(t, models.DocumentTypeInvoice, got)
	assert.False(t, detected)

	got, detected = d.Resolve(models.DocumentTypeAuto, pages)
	assert.Equal(t, models.DocumentTypeStatement, got)
	assert.True(t, detected)
}

func TestDetect_LogsScores(t *testing.T) {
	mock := logging.NewMockLogger()
	New(nil, nil, mock).Detect("statement")

	entries := mock.GetEntriesByLevel("INFO")
	if assert.Len(t, entries, 1) {
		v, ok := entries[0].FieldValue("statement_score")
		assert.True(t, ok)
		assert.Equal(t, 1, v)
	}
}

func TestNew_CustomKeywords(t *testing.T) {
	d := New([]string{"kontoauszug"}, []string{"rechnung"}, logging.NewMockLogger())
	assert.Equal(t, models.DocumentTypeStatement, d.Detect("Kontoauszug"))
}
