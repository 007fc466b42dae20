package models

import "github.com/shopspring/decimal"

// ExtractedInvoice is the data read from a single supplier invoice.
// It is handed to the expense entry form for confirmation and never stored here.
type ExtractedInvoice struct {
	Supplier    string          `json:"supplier"`
	Date        Date            `json:"date"`
	Total       decimal.Decimal `json:"total"`
	Taxes       decimal.Decimal `json:"taxes"`
	Description string          `json:"description"`
}
