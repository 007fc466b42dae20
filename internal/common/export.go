package common

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"
)

// Format is an export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts json, csv or xlsx in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (use json, csv or xlsx)", s)
	}
}

// FormatFromPath picks the format from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return f
	}
	return FormatJSON
}

// WriteResultJSON writes the result as indented JSON.
func WriteResultJSON(w io.Writer, result models.RecognitionResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// Exporter writes recognition results in the configured formats.
type Exporter struct {
	delimiter rune
	logger    logging.Logger
}

// NewExporter creates an Exporter. A zero delimiter means comma.
func NewExporter(delimiter rune, logger logging.Logger) *Exporter {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	return &Exporter{delimiter: delimiter, logger: logging.OrDefault(logger)}
}

// Write encodes result to w in format.
func (e *Exporter) Write(w io.Writer, result models.RecognitionResult, format Format) error {
	switch format {
	case FormatCSV:
		return WriteResultCSV(w, result, e.delimiter)
	case FormatXLSX:
		return WriteResultXLSX(w, result)
	case FormatJSON, "":
		return WriteResultJSON(w, result)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteFile writes result to path, choosing the format from the extension.
func (e *Exporter) WriteFile(path string, result models.RecognitionResult) (err error) {
	format := FormatFromPath(path)
	log := e.logger.WithFields(logging.F(logging.FieldOutputFile, path), logging.F("format", format))

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, models.PermissionConfigFile) // #nosec G304 -- output path chosen by the user
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	if err := e.Write(file, result, format); err != nil {
		log.WithError(err).Error("Failed to export result")
		return err
	}
	log.Info("Result exported")
	return nil
}
