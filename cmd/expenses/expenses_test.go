package expenses

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/doc-recognizer/internal/config"
	"fjacquet/doc-recognizer/internal/container"
	"fjacquet/doc-recognizer/internal/expenses"
	"fjacquet/doc-recognizer/internal/llm"
	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const movementsJSON = `[
  {"index":0,"date":"2024-01-03","description":"GASOLINA PEMEX","amount":"-5986,81","category_id":1,"branch_id":2,"account_id":3},
  {"index":1,"date":"","description":"COMISION","amount":"-15","category_id":0,"branch_id":2,"account_id":3}
]`

func testContainer(t *testing.T, repo expenses.Repository) *container.Container {
	t.Helper()
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Batching.SequentialMax = 5
	cfg.Batching.MediumMax = 15
	cfg.Batching.MediumChunkSize = 3
	cfg.Batching.LargeChunkSize = 2
	cfg.Categories.Source = config.CategoriesYAML

	opts := []container.Option{
		container.WithLogger(logging.NewMockLogger()),
		container.WithModel(llm.Unconfigured{}),
		container.WithCatalog(store.StaticCatalog{1: "Combustible"}),
	}
	if repo != nil {
		opts = append(opts, container.WithRepository(repo))
	}
	c, err := container.NewContainer(context.Background(), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movements.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestRun_PartialSave(t *testing.T) {
	repo := &expenses.MockRepository{}
	c := testContainer(t, repo)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), c, &out, writeInput(t, movementsJSON)))

	assert.Equal(t, "1 saved successfully, 1 errors: movement 2: missing date, category\n", out.String())
	require.Len(t, repo.Inserted(), 1)
	assert.Equal(t, "5986.81", repo.Inserted()[0].Amount.String())
	assert.Equal(t, "GASOLINA PEMEX", repo.Inserted()[0].Description)
}

func TestRun_WrappedInput(t *testing.T) {
	repo := &expenses.MockRepository{}
	c := testContainer(t, repo)

	input := writeInput(t, `{"movements":[{"index":0,"date":"2024-02-01","description":"PAPELERIA","amount":"-120,50","category_id":1,"branch_id":1,"account_id":1}]}`)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), c, &out, input))
	assert.Equal(t, "1 saved successfully\n", out.String())
	assert.Len(t, repo.Inserted(), 1)
}

func TestRun_NothingSaved(t *testing.T) {
	repo := &expenses.MockRepository{FailOn: func(expenses.Expense) error { return errors.New("insert failed") }}
	c := testContainer(t, repo)

	var out bytes.Buffer
	err := run(context.Background(), c, &out, writeInput(t, movementsJSON))
	assert.ErrorContains(t, err, "no movement was saved")
	assert.Contains(t, out.String(), "0 saved successfully")
	assert.Contains(t, out.String(), "movement 1: insert failed")
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()

	err := run(ctx, testContainer(t, nil), &bytes.Buffer{}, writeInput(t, movementsJSON))
	assert.ErrorIs(t, err, container.ErrPersistenceNotConfigured)

	c := testContainer(t, &expenses.MockRepository{})
	assert.ErrorContains(t, run(ctx, c, &bytes.Buffer{}, ""), "--input")
	assert.ErrorContains(t, run(ctx, c, &bytes.Buffer{}, filepath.Join(t.TempDir(), "none.json")), "error reading input file")
	assert.ErrorContains(t, run(ctx, c, &bytes.Buffer{}, writeInput(t, "{not json")), "error parsing movements")
	assert.ErrorContains(t, run(ctx, c, &bytes.Buffer{}, writeInput(t, "[]")), "no movements to save")
}
