package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"

	"gopkg.in/yaml.v3"
)

// DefaultCategoriesFile is the catalog file name looked up when none is configured.
const DefaultCategoriesFile = "categories.yaml"

// categoriesFile is the on-disk layout: "categories: [{id, name}]".
type categoriesFile struct {
	Categories []models.CategorySuggestion `yaml:"categories"`
}

// YAMLCatalog reads the catalog from a YAML file.
type YAMLCatalog struct {
	File   string
	logger logging.Logger
}

// NewYAMLCatalog creates a YAMLCatalog. An empty file name uses DefaultCategoriesFile.
func NewYAMLCatalog(file string, logger logging.Logger) *YAMLCatalog {
	if file == "" {
		file = DefaultCategoriesFile
	}
	return &YAMLCatalog{File: file, logger: logging.OrDefault(logger)}
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("database", filename),
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	// Fall back to ~/.config/doc-recognizer/
	if homeDir, err := os.UserHomeDir(); err == nil {
		configPath := filepath.Join(homeDir, ".config", "doc-recognizer", filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", os.ErrNotExist
}

// ListCategories loads the catalog. A missing file yields an empty catalog.
func (y *YAMLCatalog) ListCategories(_ context.Context) (models.CategoryCatalog, error) {
	path, err := FindConfigFile(y.File)
	if err != nil {
		y.logger.Warn("Categories file not found", logging.F(logging.FieldFile, y.File))
		return models.CategoryCatalog{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading categories file: %w", err)
	}

	var file categoriesFile
	if err := yaml.Unmarshal(data, &file); err != nil || len(file.Categories) == 0 {
		// Fallback: a bare list without the top-level key
		var list []models.CategorySuggestion
		if listErr := yaml.Unmarshal(data, &list); listErr != nil {
			if err == nil {
				err = listErr
			}
			return nil, fmt.Errorf("error parsing categories file %s: %w", path, err)
		}
		file.Categories = list
	}

	catalog := make(models.CategoryCatalog, len(file.Categories))
	for _, c := range file.Categories {
		if c.ID <= 0 || c.Name == "" {
			y.logger.Warn("Skipping invalid category entry",
				logging.F(logging.FieldCategoryID, c.ID),
				logging.F(logging.FieldCategory, c.Name))
			continue
		}
		catalog[c.ID] = c.Name
	}

	y.logger.Debug(fmt.Sprintf("Loaded %d categories from %s", len(catalog), path))
	return catalog, nil
}

// Save writes catalog to the file, creating parent directories. Entries are
// written in ascending id order.
func (y *YAMLCatalog) Save(catalog models.CategoryCatalog) error {
	path, err := FindConfigFile(y.File)
	if err != nil {
		path = y.File
	}

	if err := os.MkdirAll(filepath.Dir(path), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	file := categoriesFile{Categories: make([]models.CategorySuggestion, 0, len(catalog))}
	for _, id := range catalog.IDs() {
		file.Categories = append(file.Categories, models.CategorySuggestion{ID: id, Name: catalog[id]})
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("error marshaling categories: %w", err)
	}
	if err := os.WriteFile(path, data, models.PermissionConfigFile); err != nil {
		return fmt.Errorf("error writing categories: %w", err)
	}

	y.logger.Debug(fmt.Sprintf("Saved %d categories to %s", len(catalog), path))
	return nil
}
