package recognize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/doc-recognizer/internal/config"
	"fjacquet/doc-recognizer/internal/container"
	"fjacquet/doc-recognizer/internal/llm"
	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"
	"fjacquet/doc-recognizer/internal/parsererror"
	"fjacquet/doc-recognizer/internal/pdfparser"
	"fjacquet/doc-recognizer/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statementJSON = `{"banco":"Santander","numero_cuenta":"****9012","periodo_inicio":"2024-05-01","periodo_fin":"2024-05-31",` +
	`"saldo_inicial":5000,"saldo_final":4700,"movimientos":[` +
	`{"fecha":"2024-05-03","descripcion":"GASOLINERA PEMEX","monto":-300,"tipo":"cargo"},` +
	`{"fecha":"2024-05-10","descripcion":"DEPOSITO CLIENTE","monto":0.5,"tipo":"abono"},` +
	`{"fecha":"2024-05-11","descripcion":"INTERES","monto":-0.5,"tipo":"interes"}]}`

func testContainer(t *testing.T, model *llm.MockModel) *container.Container {
	t.Helper()
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.CSV.Delimiter = ","
	cfg.AI.Provider = config.ProviderGenAI
	cfg.Batching.SequentialMax = 5
	cfg.Batching.MediumMax = 15
	cfg.Batching.MediumChunkSize = 3
	cfg.Batching.LargeChunkSize = 2
	cfg.PDF.Engine = config.EngineLedongthuc
	cfg.Categories.Source = config.CategoriesYAML

	c, err := container.NewContainer(context.Background(), cfg,
		container.WithLogger(logging.NewMockLogger()),
		container.WithModel(model),
		container.WithCatalog(store.StaticCatalog{7: "Combustible"}),
		container.WithSleeper(func(context.Context, time.Duration) error { return nil }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func writePDF(t *testing.T, pages ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "document.pdf")
	require.NoError(t, os.WriteFile(path, pdfparser.BuildTestPDF(pages), 0600))
	return path
}

func TestRun_StatementToStdout(t *testing.T) {
	model := &llm.MockModel{JSONResponse: statementJSON, TextResponse: "7"}
	c := testContainer(t, model)
	input := writePDF(t, "ESTADO DE CUENTA", "Saldo anterior 5,000.00 movimientos")

	var out bytes.Buffer
	err := run(context.Background(), c, &out, options{input: input, docType: "auto", categorize: true})
	require.NoError(t, err)

	var result models.RecognitionResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, models.DocumentTypeStatement, result.Type)
	require.NotNil(t, result.Statement)
	assert.Equal(t, "****9012", result.Statement.AccountNumberMasked)
	require.Len(t, result.Statement.Movements, 3)
	assert.Equal(t, &models.CategorySuggestion{ID: 7, Name: "Combustible"}, result.Statement.Movements[0].SuggestedCategory)
	assert.Nil(t, result.Statement.Movements[1].SuggestedCategory)
	assert.Equal(t, 2, model.TextCalls())
}

func TestRun_InvoiceToCSVFile(t *testing.T) {
	model := &llm.MockModel{JSONResponse: `{"proveedor":"ACME","fecha":"2024-03-01","total":"1.500,00","impuestos":240,"descripcion":"Materiales"}`}
	c := testContainer(t, model)
	input := writePDF(t, "FACTURA", "Proveedor: ACME", "Total: 1500.00")
	output := filepath.Join(t.TempDir(), "invoice.csv")

	require.NoError(t, run(context.Background(), c, &bytes.Buffer{}, options{input: input, output: output, docType: "factura"}))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "Supplier,Date,Total,Taxes,Description\nACME,2024-03-01,1500.00,240.00,Materiales\n", string(data))
}

func TestRun_Errors(t *testing.T) {
	c := testContainer(t, &llm.MockModel{JSONErr: errors.New("quota exceeded")})

	err := run(context.Background(), c, &bytes.Buffer{}, options{})
	assert.ErrorContains(t, err, "--input")

	err = run(context.Background(), c, &bytes.Buffer{}, options{input: "x.pdf", docType: "recibo"})
	assert.Error(t, err)

	err = run(context.Background(), c, &bytes.Buffer{}, options{input: filepath.Join(t.TempDir(), "missing.pdf")})
	assert.ErrorContains(t, err, "error opening input file")

	err = run(context.Background(), c, &bytes.Buffer{}, options{input: writePDF(t, "FACTURA")})
	assert.True(t, parsererror.IsRequestFatal(err))
	assert.True(t, strings.Contains(parsererror.UserMessage(err), "quota exceeded"))
}

func TestCommand_Flags(t *testing.T) {
	assert.Equal(t, "recognize", Cmd.Use)

	typeFlag := Cmd.Flags().Lookup("type")
	require.NotNil(t, typeFlag)
	assert.Equal(t, "t", typeFlag.Shorthand)
	assert.Equal(t, "auto", typeFlag.DefValue)

	categorizeFlag := Cmd.Flags().Lookup("categorize")
	require.NotNil(t, categorizeFlag)
	assert.Equal(t, "false", categorizeFlag.DefValue)
}
