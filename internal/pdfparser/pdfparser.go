// Package pdfparser turns an uploaded PDF into the text of its pages.
package pdfparser

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/parsererror"
)

// pdfMagic is the header every PDF file starts with.
var pdfMagic = []byte("%PDF-")

// TextExtractor extracts ordered page texts from a PDF stream.
type TextExtractor interface {
	ExtractPages(ctx context.Context, r io.Reader, source string) ([]string, error)
}

// Extractor spools the upload to a temporary file and hands the path to a
// PageReader. The temporary file is removed on every return path.
type Extractor struct {
	reader  PageReader
	logger  logging.Logger
	tempDir string
}

// NewExtractor creates an Extractor. A nil reader selects the in-process reader.
func NewExtractor(reader PageReader, logger logging.Logger) *Extractor {
	if reader == nil {
		reader = NewLedongthucReader()
	}
	return &Extractor{reader: reader, logger: logging.OrDefault(logger)}
}

// WithTempDir sets the directory used for temporary files (default os.TempDir).
func (e *Extractor) WithTempDir(dir string) *Extractor {
	e.tempDir = dir
	return e
}

// ExtractPages implements TextExtractor. Pages with no text are dropped; a
// document without any text fails with EmptyDocumentError. Anything the
// underlying reader cannot parse fails with DocumentReadError.
func (e *Extractor) ExtractPages(ctx context.Context, r io.Reader, source string) ([]string, error) {
	log := e.logger.WithField(logging.FieldFile, source)

	br := bufio.NewReader(r)
	head, err := br.Peek(len(pdfMagic))
	if err != nil && len(head) == 0 {
		return nil, &parsererror.EmptyDocumentError{Source: source}
	}
	if !bytes.HasPrefix(head, pdfMagic) {
		return nil, &parsererror.DocumentReadError{Source: source, Err: fmt.Errorf("file is not a PDF")}
	}

	tempFile, err := os.CreateTemp(e.tempDir, "doc-recognizer-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary PDF file: %w", err)
	}
	tempPath := tempFile.Name()
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			log.WithError(err).Warn("Failed to remove temporary file", logging.F("temp_file", tempPath))
		}
	}()

	written, err := io.Copy(tempFile, br)
	if closeErr := tempFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, &parsererror.DocumentReadError{Source: source, Err: fmt.Errorf("failed to spool upload: %w", err)}
	}

	log.Debug("Reading PDF pages", logging.F("bytes", written))

	raw, err := e.reader.ReadPages(ctx, tempPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &parsererror.DocumentReadError{Source: source, Err: err}
	}

	pages := make([]string, 0, len(raw))
	for _, p := range raw {
		if strings.TrimSpace(p) != "" {
			pages = append(pages, p)
		}
	}
	if len(pages) == 0 {
		log.Error("No content could be read from the PDF", logging.F("raw_pages", len(raw)))
		return nil, &parsererror.EmptyDocumentError{Source: source}
	}

	log.Info("PDF loaded", logging.F(logging.FieldPages, len(pages)), logging.F(logging.FieldChars, len(JoinPages(pages))))
	return pages, nil
}

// JoinPages concatenates page texts with a single space.
func JoinPages(pages []string) string {
	return strings.Join(pages, " ")
}

// MockTextExtractor returns predefined pages without touching a PDF.
type MockTextExtractor struct {
	Pages []string
	Err   error
	Calls int
}

// ExtractPages implements TextExtractor.
func (m *MockTextExtractor) ExtractPages(_ context.Context, r io.Reader, _ string) ([]string, error) {
	m.Calls++
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Pages, nil
}
