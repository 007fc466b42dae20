// Package store provides the category catalog and the database and cache
// connections behind it.
package store

import (
	"context"

	"fjacquet/doc-recognizer/internal/models"
)

// CatalogProvider lists the expense categories available for suggestions.
type CatalogProvider interface {
	ListCategories(ctx context.Context) (models.CategoryCatalog, error)
}

// StaticCatalog is a fixed, in-memory catalog.
type StaticCatalog models.CategoryCatalog

// ListCategories returns a copy of the catalog.
func (s StaticCatalog) ListCategories(context.Context) (models.CategoryCatalog, error) {
	return models.CategoryCatalog(s).Clone(), nil
}
