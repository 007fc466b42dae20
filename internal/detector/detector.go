// Package detector guesses whether a document is an invoice or a bank
// statement from its text. The answer is a hint; callers let the user override it.
package detector

import (
	"strings"

	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"
	"fjacquet/doc-recognizer/internal/textutils"
)

// SamplePages is the number of leading pages inspected.
const SamplePages = 2

// DefaultStatementKeywords mark a bank statement.
var DefaultStatementKeywords = []string{
	"estado de cuenta", "saldo anterior", "movimientos", "transferencia", "deposito",
	"retiro", "comision", "interes", "balance", "statement",
}

// DefaultInvoiceKeywords mark an invoice.
var DefaultInvoiceKeywords = []string{
	"factura", "invoice", "subtotal", "iva", "total a pagar",
	"proveedor", "cliente", "productos", "servicios", "cantidad",
}

// Score is the keyword evidence gathered for one sample.
type Score struct {
	Statement []string
	Invoice   []string
}

// Type returns the detected type: statement only when it has strictly more
// matches than invoice. Ties, including no match at all, mean invoice.
func (s Score) Type() models.DocumentType {
	if len(s.Statement) > len(s.Invoice) {
		return models.DocumentTypeStatement
	}
	return models.DocumentTypeInvoice
}

// Detector scores text against two keyword lists.
type Detector struct {
	statementKeywords []string
	invoiceKeywords   []string
	logger            logging.Logger
}

// New creates a Detector. Nil keyword lists use the defaults.
func New(statementKeywords, invoiceKeywords []string, logger logging.Logger) *Detector {
	if len(statementKeywords) == 0 {
		statementKeywords = DefaultStatementKeywords
	}
	if len(invoiceKeywords) == 0 {
		invoiceKeywords = DefaultInvoiceKeywords
	}
	return &Detector{
		statementKeywords: statementKeywords,
		invoiceKeywords:   invoiceKeywords,
		logger:            logging.OrDefault(logger),
	}
}

// Score counts the distinct keywords of each list found in sample.
func (d *Detector) Score(sample string) Score {
	return Score{
		Statement: textutils.MatchedKeywords(sample, d.statementKeywords),
		Invoice:   textutils.MatchedKeywords(sample, d.invoiceKeywords),
	}
}

// Detect classifies sample text.
func (d *Detector) Detect(sample string) models.DocumentType {
	score := d.Score(sample)
	detected := score.Type()

	d.logger.Info("Document type detected",
		logging.F(logging.FieldDocumentType, detected),
		logging.F("statement_score", len(score.Statement)),
		logging.F("invoice_score", len(score.Invoice)),
		logging.F("statement_keywords", score.Statement),
		logging.F("invoice_keywords", score.Invoice))

	return detected
}

// DetectPages classifies a document from its first SamplePages pages.
func (d *Detector) DetectPages(pages []string) models.DocumentType {
	if len(pages) > SamplePages {
		pages = pages[:SamplePages]
	}
	return d.Detect(strings.Join(pages, " "))
}

// Resolve returns requested unless it is auto, in which case the type is
// detected from pages. The boolean reports whether detection ran.
func (d *Detector) Resolve(requested models.DocumentType, pages []string) (models.DocumentType, bool) {
	if !requested.IsAuto() {
		return requested, false
	}
	return d.DetectPages(pages), true
}
