// Package parsererror defines the typed errors raised by the recognition
// pipeline. Request-fatal errors (DocumentReadError, EmptyDocumentError,
// ExtractionError) carry a message meant to be shown to the user verbatim.
package parsererror

import (
	"errors"
	"fmt"
	"strings"
)

// DocumentReadError means the PDF could not be read or parsed.
type DocumentReadError struct {
	Source string
	Err    error
}

func (e *DocumentReadError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("could not read PDF %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("could not read PDF: %v", e.Err)
}

func (e *DocumentReadError) Unwrap() error {
	return e.Err
}

// EmptyDocumentError means the PDF was readable but yielded no pages.
type EmptyDocumentError struct {
	Source string
}

func (e *EmptyDocumentError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("no content could be read from PDF %s", e.Source)
	}
	return "no content could be read from the PDF"
}

// ExtractionError means the language model call failed or its output did not
// match the expected structure.
type ExtractionError struct {
	Document string // "invoice" or "statement"
	Stage    string // "generate", "decode", "validate"
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("error processing the %s (%s): %v", e.Document, e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ClassificationFailure describes a single movement that could not be
// categorized, either because the model call failed (Err) or because the
// model answered with something outside the catalog (Response). It is logged,
// never returned to the request caller. Index is only known to the batch
// coordinator, so the unknown-category form does not print it.
type ClassificationFailure struct {
	Index       int
	Description string
	Response    string // raw model answer, empty when the call itself failed
	Err         error
}

func (e *ClassificationFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("classification of movement %d (%q) failed: %v", e.Index, e.Description, e.Err)
	}
	return fmt.Sprintf("classification of %q returned unknown category %q", e.Description, e.Response)
}

func (e *ClassificationFailure) Unwrap() error {
	return e.Err
}

// IncompleteMovementDataError means a confirmed movement lacks required fields
// and cannot be saved as an expense.
type IncompleteMovementDataError struct {
	Index   int
	Missing []string
	Invalid []string
}

func (e *IncompleteMovementDataError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return fmt.Sprintf("movement %d: %s", e.Index+1, strings.Join(parts, "; "))
}

// IsRequestFatal reports whether err must abort the current request.
func IsRequestFatal(err error) bool {
	var readErr *DocumentReadError
	var emptyErr *EmptyDocumentError
	var extractErr *ExtractionError
	return errors.As(err, &readErr) || errors.As(err, &emptyErr) || errors.As(err, &extractErr)
}

// UserMessage returns the message shown to the user for a request-fatal error.
func UserMessage(err error) string {
	var extractErr *ExtractionError
	if errors.As(err, &extractErr) {
		return fmt.Sprintf("An error occurred while processing the %s: %v", extractErr.Document, extractErr.Err)
	}
	return err.Error()
}
