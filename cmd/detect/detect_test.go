package detect

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/doc-recognizer/internal/config"
	"fjacquet/doc-recognizer/internal/container"
	"fjacquet/doc-recognizer/internal/llm"
	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/pdfparser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContainer(t *testing.T, model llm.Model) *container.Container {
	t.Helper()
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.CSV.Delimiter = ","
	cfg.Batching.SequentialMax = 5
	cfg.Batching.MediumMax = 15
	cfg.Batching.MediumChunkSize = 3
	cfg.Batching.LargeChunkSize = 2
	cfg.Categories.Source = config.CategoriesYAML

	c, err := container.NewContainer(context.Background(), cfg,
		container.WithLogger(logging.NewMockLogger()),
		container.WithModel(model))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRun(t *testing.T) {
	model := &llm.MockModel{}
	c := testContainer(t, model)

	tests := []struct {
		name     string
		pages    []string
		expected string
	}{
		{
			name:     "statement",
			pages:    []string{"ESTADO DE CUENTA", "Saldo anterior", "Factura iva subtotal cliente"},
			expected: "Type: estado_cuenta\nStatement keywords (2): estado de cuenta, saldo anterior\nInvoice keywords (0): \n",
		},
		{
			name:     "invoice",
			pages:    []string{"FACTURA", "Subtotal IVA"},
			expected: "Type: factura\nStatement keywords (0): \nInvoice keywords (3): factura, subtotal, iva\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "doc.pdf")
			require.NoError(t, os.WriteFile(path, pdfparser.BuildTestPDF(tt.pages), 0600))

			var out bytes.Buffer
			require.NoError(t, run(context.Background(), c, &out, path))
			assert.Equal(t, tt.expected, out.String())
		})
	}
	assert.Equal(t, 0, model.Calls())
}

func TestRun_Errors(t *testing.T) {
	c := testContainer(t, llm.Unconfigured{})

	assert.ErrorContains(t, run(context.Background(), c, &bytes.Buffer{}, ""), "--input")
	assert.ErrorContains(t, run(context.Background(), c, &bytes.Buffer{}, filepath.Join(t.TempDir(), "nope.pdf")), "error opening input file")

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0600))
	assert.Error(t, run(context.Background(), c, &bytes.Buffer{}, path))
}
