package models

import "fmt"

// RecognitionResult is the outcome of recognizing one document.
// Exactly one of Invoice or Statement is set, matching Type.
type RecognitionResult struct {
	Type      DocumentType        `json:"type"`
	Detected  bool                `json:"detected"`
	Invoice   *ExtractedInvoice   `json:"invoice,omitempty"`
	Statement *ExtractedStatement `json:"statement,omitempty"`
}

// InvoiceResult wraps an extracted invoice.
func InvoiceResult(inv ExtractedInvoice, detected bool) RecognitionResult {
	return RecognitionResult{Type: DocumentTypeInvoice, Detected: detected, Invoice: &inv}
}

// StatementResult wraps an extracted statement.
func StatementResult(st ExtractedStatement, detected bool) RecognitionResult {
	return RecognitionResult{Type: DocumentTypeStatement, Detected: detected, Statement: &st}
}

// Validate checks that the variant is consistent.
func (r RecognitionResult) Validate() error {
	switch r.Type {
	case DocumentTypeInvoice:
		if r.Invoice == nil || r.Statement != nil {
			return fmt.Errorf("invoice result must carry exactly an invoice")
		}
	case DocumentTypeStatement:
		if r.Statement == nil || r.Invoice != nil {
			return fmt.Errorf("statement result must carry exactly a statement")
		}
	default:
		return fmt.Errorf("result has unresolved document type %q", r.Type)
	}
	return nil
}
