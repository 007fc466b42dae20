package common

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleStatement() models.RecognitionResult {
	return models.StatementResult(models.ExtractedStatement{
		Bank: "BBVA",
		Movements: []models.StatementMovement{
			{
				Date:              models.NewDate(2024, time.January, 3),
				Description:       "PEMEX GASOLINERA",
				Amount:            decimal.RequireFromString("-850.5"),
				Kind:              models.MovementCharge,
				SuggestedCategory: &models.CategorySuggestion{ID: 4, Name: "Combustible"},
			},
			{
				Date:        models.NewDate(2024, time.January, 5),
				Description: "DEPOSITO, CLIENTE",
				Amount:      decimal.RequireFromString("1200"),
				Kind:        models.MovementCredit,
				Reference:   "REF9",
			},
		},
	}, true)
}

func sampleInvoice() models.RecognitionResult {
	return models.InvoiceResult(models.ExtractedInvoice{
		Supplier:    "ACME",
		Date:        models.NewDate(2024, time.March, 1),
		Total:       decimal.NewFromInt(1500),
		Taxes:       decimal.NewFromInt(240),
		Description: "Materiales",
	}, false)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"CSV", FormatCSV, false},
		{" xlsx ", FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, FormatCSV, FormatFromPath("out/movements.csv"))
	assert.Equal(t, FormatXLSX, FormatFromPath("movements.XLSX"))
	assert.Equal(t, FormatJSON, FormatFromPath("result"))
}

func TestWriteResultCSV_Statement(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResultCSV(&buf, sampleStatement(), ';'))

	expected := "Date;Description;Amount;Kind;Reference;CategoryID;Category\n" +
		"2024-01-03;PEMEX GASOLINERA;-850.50;charge;;4;Combustible\n" +
		"2024-01-05;DEPOSITO, CLIENTE;1200.00;credit;REF9;;\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteResultCSV_Invoice(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResultCSV(&buf, sampleInvoice(), ','))

	expected := "Supplier,Date,Total,Taxes,Description\n" +
		"ACME,2024-03-01,1500.00,240.00,Materiales\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteResultCSV_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteResultCSV(&buf, models.RecognitionResult{}, ','))
}

func TestMovementRowRoundTrip(t *testing.T) {
	original := sampleStatement().Statement.Movements[1]
	back, err := NewMovementRow(original).Movement()
	require.NoError(t, err)

	assert.Equal(t, original.Date, back.Date)
	assert.Equal(t, original.Description, back.Description)
	assert.True(t, original.Amount.Equal(back.Amount))
	assert.Equal(t, original.Kind, back.Kind)
	assert.Equal(t, original.Reference, back.Reference)

	_, err = MovementRow{Date: "03/01/2024", Amount: "1"}.Movement()
	assert.Error(t, err)
	_, err = MovementRow{Amount: "abc"}.Movement()
	assert.Error(t, err)

	m, err := MovementRow{Description: "x", Amount: "$1.250,00"}.Movement()
	require.NoError(t, err)
	assert.True(t, m.Date.IsZero())
	assert.True(t, m.Amount.Equal(decimal.RequireFromString("1250")))
}

func TestReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movements.csv")
	content := "Date;Description;Amount;Kind;Reference;CategoryID;Category\n" +
		"2024-01-03;OXXO;-45.00;cargo;;;\n" +
		";COMISION;-10;;;;\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	rows, err := ReadCSVFile[MovementRow](path, ';', logging.NewMockLogger())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "OXXO", rows[0].Description)
	assert.Equal(t, "-45.00", rows[0].Amount)
	assert.Equal(t, "", rows[1].Date)

	_, err = ReadCSVFile[MovementRow](filepath.Join(t.TempDir(), "missing.csv"), ';', nil)
	assert.Error(t, err)
}

func TestWriteResultXLSX_Statement(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResultXLSX(&buf, sampleStatement()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{MovementsSheet}, f.GetSheetList())

	cell := func(ref string) string {
		v, err := f.GetCellValue(MovementsSheet, ref)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Fecha", cell("A1"))
	assert.Equal(t, "Categoría", cell("G1"))
	assert.Equal(t, "2024-01-03", cell("A2"))
	assert.Equal(t, "PEMEX GASOLINERA", cell("B2"))
	assert.Equal(t, "-850.5", cell("C2"))
	assert.Equal(t, "4", cell("F2"))
	assert.Equal(t, "Combustible", cell("G2"))
	assert.Equal(t, "REF9", cell("E3"))
	assert.Equal(t, "", cell("G3"))
}

func TestWriteResultXLSX_Invoice(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResultXLSX(&buf, sampleInvoice()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	supplier, err := f.GetCellValue(InvoiceSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "ACME", supplier)
	total, err := f.GetCellValue(InvoiceSheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "1500", total)
}

func TestExporterWriteFile(t *testing.T) {
	dir := t.TempDir()
	logger := logging.NewMockLogger()
	exporter := NewExporter(0, logger)

	jsonPath := filepath.Join(dir, "nested", "invoice.json")
	require.NoError(t, exporter.WriteFile(jsonPath, sampleInvoice()))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "factura", decoded["type"])
	assert.Equal(t, "ACME", decoded["invoice"].(map[string]interface{})["supplier"])

	csvPath := filepath.Join(dir, "movements.csv")
	require.NoError(t, exporter.WriteFile(csvPath, sampleStatement()))
	data, err = os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2024-01-03,PEMEX GASOLINERA,-850.50,charge,,4,Combustible")

	assert.True(t, logger.HasEntry("INFO", "Result exported"))
}
