package extractor

import (
	"encoding/json"
	"fmt"
	"strings"

	"fjacquet/doc-recognizer/internal/currencyutils"
	"fjacquet/doc-recognizer/internal/models"

	"github.com/shopspring/decimal"
)

// fields reads typed values out of a decoded response object. The first
// conversion error is kept and later reads become no-ops.
type fields struct {
	obj  map[string]any
	path string
	err  error
}

func (f *fields) fail(key string, err error) {
	if f.err == nil {
		f.err = fmt.Errorf("field %s%s: %w", f.path, key, err)
	}
}

func (f *fields) str(key string) string {
	switch v := f.obj[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		f.fail(key, fmt.Errorf("expected a string, got %T", v))
		return ""
	}
}

func (f *fields) amount(key string) decimal.Decimal {
	var (
		d   decimal.Decimal
		err error
	)
	switch v := f.obj[key].(type) {
	case nil:
		return decimal.Zero
	case json.Number:
		d, err = decimal.NewFromString(v.String())
	case string:
		if strings.TrimSpace(v) == "" {
			return decimal.Zero
		}
		d, err = currencyutils.ParseAmount(v)
	default:
		err = fmt.Errorf("expected a number, got %T", v)
	}
	if err != nil {
		f.fail(key, err)
		return decimal.Zero
	}
	return d
}

func (f *fields) date(key string) models.Date {
	s := f.str(key)
	if s == "" {
		return models.Date{}
	}
	d, err := models.ParseLooseDate(s)
	if err != nil {
		f.fail(key, err)
	}
	return d
}

func decodeInvoice(obj map[string]any) (models.ExtractedInvoice, error) {
	f := &fields{obj: obj}
	inv := models.ExtractedInvoice{
		Supplier:    f.str(keySupplier),
		Date:        f.date(keyDate),
		Total:       f.amount(keyTotal),
		Taxes:       f.amount(keyTaxes),
		Description: f.str(keyDescription),
	}
	return inv, f.err
}

func decodeStatement(obj map[string]any) (models.ExtractedStatement, error) {
	f := &fields{obj: obj}
	st := models.ExtractedStatement{
		Bank:                f.str(keyBank),
		AccountNumberMasked: MaskAccountNumber(f.str(keyAccountNumber)),
		PeriodStart:         f.date(keyPeriodStart),
		PeriodEnd:           f.date(keyPeriodEnd),
		OpeningBalance:      f.amount(keyOpeningBalance),
		ClosingBalance:      f.amount(keyClosingBalance),
	}
	if f.err != nil {
		return st, f.err
	}

	raw, _ := obj[keyMovements].([]any)
	st.Movements = make([]models.StatementMovement, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return st, fmt.Errorf("field %s[%d]: expected an object, got %T", keyMovements, i, item)
		}
		mf := &fields{obj: m, path: fmt.Sprintf("%s[%d].", keyMovements, i)}
		st.Movements = append(st.Movements, models.StatementMovement{
			Date:        mf.date(keyDate),
			Description: mf.str(keyDescription),
			Amount:      mf.amount(keyAmount),
			Kind:        models.ParseMovementKind(mf.str(keyKind)),
			Reference:   mf.str(keyReference),
		})
		if mf.err != nil {
			return st, mf.err
		}
	}
	return st, nil
}

// MaskAccountNumber keeps the last four digits of an account number visible.
// Values that already carry a mask or have four digits or fewer are returned unchanged.
func MaskAccountNumber(account string) string {
	account = strings.TrimSpace(account)
	if account == "" || strings.ContainsAny(account, "*xX•") {
		return account
	}
	var digits []rune
	for _, r := range account {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) <= 4 {
		return account
	}
	return strings.Repeat("*", len(digits)-4) + string(digits[len(digits)-4:])
}
