package models

import (
	"strings"

	"fjacquet/doc-recognizer/internal/textutils"

	"github.com/shopspring/decimal"
)

// MovementKind classifies a statement line.
type MovementKind string

const (
	MovementCharge   MovementKind = "charge"
	MovementCredit   MovementKind = "credit"
	MovementFee      MovementKind = "fee"
	MovementInterest MovementKind = "interest"
	MovementOther    MovementKind = "other"
)

// kindAliases maps the labels a model may return (Spanish or English) to a kind.
var kindAliases = map[string]MovementKind{
	"cargo":         MovementCharge,
	"charge":        MovementCharge,
	"debito":        MovementCharge,
	"retiro":        MovementCharge,
	"pago":          MovementCharge,
	"abono":         MovementCredit,
	"credit":        MovementCredit,
	"credito":       MovementCredit,
	"deposito":      MovementCredit,
	"comision":      MovementFee,
	"fee":           MovementFee,
	"interes":       MovementInterest,
	"intereses":     MovementInterest,
	"interest":      MovementInterest,
	"transferencia": MovementOther,
	"other":         MovementOther,
}

// ParseMovementKind maps a free-form label to a MovementKind. Unknown labels map to other.
func ParseMovementKind(label string) MovementKind {
	if kind, ok := kindAliases[strings.TrimSpace(textutils.Fold(label))]; ok {
		return kind
	}
	return MovementOther
}

// StatementMovement is a single line of a bank statement.
// Amount is signed: negative for charges, positive for credits.
type StatementMovement struct {
	Date              Date                `json:"date"`
	Description       string              `json:"description"`
	Amount            decimal.Decimal     `json:"amount"`
	Kind              MovementKind        `json:"kind"`
	Reference         string              `json:"reference,omitempty"`
	SuggestedCategory *CategorySuggestion `json:"suggested_category,omitempty"`
}

// IsCharge reports whether the movement is money going out.
func (m StatementMovement) IsCharge() bool {
	return m.Amount.IsNegative()
}

// ExtractedStatement is the data read from a bank statement.
// Movements keep document order.
type ExtractedStatement struct {
	Bank                string              `json:"bank"`
	AccountNumberMasked string              `json:"account_number_masked"`
	PeriodStart         Date                `json:"period_start"`
	PeriodEnd           Date                `json:"period_end"`
	OpeningBalance      decimal.Decimal     `json:"opening_balance"`
	ClosingBalance      decimal.Decimal     `json:"closing_balance"`
	Movements           []StatementMovement `json:"movements"`
}

// Charges returns the indexes of movements that are charges, in document order.
func (s *ExtractedStatement) Charges() []int {
	var idx []int
	for i, m := range s.Movements {
		if m.IsCharge() {
			idx = append(idx, i)
		}
	}
	return idx
}

// CategorizedCount returns how many movements carry a suggested category.
func (s *ExtractedStatement) CategorizedCount() int {
	n := 0
	for _, m := range s.Movements {
		if m.SuggestedCategory != nil {
			n++
		}
	}
	return n
}
