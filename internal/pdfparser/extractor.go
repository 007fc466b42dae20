package pdfparser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
)

// PageReader reads the text of every page of the PDF stored at path.
// Implementations return one string per page, in page order.
type PageReader interface {
	ReadPages(ctx context.Context, path string) ([]string, error)
}

// LedongthucReader reads pages in-process with github.com/ledongthuc/pdf.
type LedongthucReader struct{}

// NewLedongthucReader returns the in-process page reader.
func NewLedongthucReader() *LedongthucReader {
	return &LedongthucReader{}
}

// ReadPages implements PageReader. The pdf library panics on some malformed
// files, so panics are turned into errors.
func (r *LedongthucReader) ReadPages(ctx context.Context, path string) (pages []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("panic while reading PDF: %v", rec)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract text of page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// PdftotextReader shells out to poppler's pdftotext, which copes better with
// column layouts than the in-process reader.
type PdftotextReader struct {
	Binary string
}

// NewPdftotextReader returns a reader using the given binary, "pdftotext" when empty.
func NewPdftotextReader(binary string) *PdftotextReader {
	if binary == "" {
		binary = "pdftotext"
	}
	return &PdftotextReader{Binary: binary}
}

// ReadPages implements PageReader. pdftotext separates pages with a form feed.
func (r *PdftotextReader) ReadPages(ctx context.Context, path string) ([]string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Binary, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-") // #nosec G204 -- binary comes from configuration
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("error running %s: %w: %s", r.Binary, err, strings.TrimSpace(stderr.String()))
	}

	pages := strings.Split(stdout.String(), "\f")
	// pdftotext terminates the last page with a form feed too.
	if n := len(pages); n > 0 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return pages, nil
}

// MockPageReader returns predefined pages. It records the temporary path it
// was given and whether the file existed at call time.
type MockPageReader struct {
	Pages []string
	Err   error

	mu          sync.Mutex
	Calls       int
	LastPath    string
	FileExisted bool
}

// NewMockPageReader creates a MockPageReader.
func NewMockPageReader(pages []string, err error) *MockPageReader {
	return &MockPageReader{Pages: pages, Err: err}
}

// ReadPages implements PageReader.
func (m *MockPageReader) ReadPages(_ context.Context, path string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.LastPath = path
	_, statErr := os.Stat(path)
	m.FileExisted = statErr == nil
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]string, len(m.Pages))
	copy(out, m.Pages)
	return out, nil
}
