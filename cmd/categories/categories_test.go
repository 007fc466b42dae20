package categories

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fjacquet/doc-recognizer/internal/config"
	"fjacquet/doc-recognizer/internal/container"
	"fjacquet/doc-recognizer/internal/llm"
	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"
	"fjacquet/doc-recognizer/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContainer(t *testing.T, catalog store.CatalogProvider) *container.Container {
	t.Helper()
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Batching.SequentialMax = 5
	cfg.Batching.MediumMax = 15
	cfg.Batching.MediumChunkSize = 3
	cfg.Batching.LargeChunkSize = 2
	cfg.Categories.Source = config.CategoriesYAML

	c, err := container.NewContainer(context.Background(), cfg,
		container.WithLogger(logging.NewMockLogger()),
		container.WithModel(llm.Unconfigured{}),
		container.WithCatalog(catalog))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRun_List(t *testing.T) {
	c := testContainer(t, store.StaticCatalog{12: "Fertilizantes", 3: "Combustible", 7: "Papelería"})

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), c, &out, ""))
	assert.Equal(t, "3: Combustible\n7: Papelería\n12: Fertilizantes\n", out.String())
}

func TestRun_Empty(t *testing.T) {
	c := testContainer(t, store.StaticCatalog{})

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), c, &out, ""))
	assert.Equal(t, "No categories configured\n", out.String())
}

func TestRun_Export(t *testing.T) {
	catalog := models.CategoryCatalog{3: "Combustible", 7: "Papelería"}
	c := testContainer(t, store.StaticCatalog(catalog))
	export := filepath.Join(t.TempDir(), "nested", "categories.yaml")

	require.NoError(t, run(context.Background(), c, &bytes.Buffer{}, export))

	loaded, err := store.NewYAMLCatalog(export, logging.NewMockLogger()).ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, catalog, loaded)
}

func TestRun_ProviderError(t *testing.T) {
	c := testContainer(t, &store.MockCatalogProvider{Err: errors.New("connection refused")})

	err := run(context.Background(), c, &bytes.Buffer{}, "")
	assert.ErrorContains(t, err, "error loading categories")
	assert.ErrorContains(t, err, "connection refused")
}
