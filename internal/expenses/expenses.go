// Package expenses turns statement movements confirmed by a user into expense
// rows. Each movement is validated and saved on its own so one bad row never
// blocks the rest.
package expenses

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/doc-recognizer/internal/currencyutils"
	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"
	"fjacquet/doc-recognizer/internal/parsererror"

	"github.com/shopspring/decimal"
)

// ConfirmedMovement is a movement the user chose to record, with the category,
// branch and account picked on the confirmation screen. Amount is the raw text
// of the form field.
type ConfirmedMovement struct {
	Index       int    `json:"index"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	CategoryID  int    `json:"category_id"`
	BranchID    int    `json:"branch_id"`
	AccountID   int    `json:"account_id"`
}

// Expense is a validated row ready to be stored. Amount is always positive.
type Expense struct {
	BranchID     int
	CategoryID   int
	AccountID    int
	Amount       decimal.Decimal
	Description  string
	Date         models.Date
	RegisteredAt time.Time
}

// Validate checks m and converts it into an Expense. Every missing or invalid
// field is reported in a single IncompleteMovementDataError.
func Validate(m ConfirmedMovement) (Expense, error) {
	var missing, invalid []string

	var date models.Date
	if strings.TrimSpace(m.Date) == "" {
		missing = append(missing, "date")
	} else if d, err := models.ParseLooseDate(m.Date); err != nil {
		invalid = append(invalid, "date")
	} else {
		date = d
	}

	description := strings.TrimSpace(m.Description)
	if description == "" {
		missing = append(missing, "description")
	}

	var amount decimal.Decimal
	if strings.TrimSpace(m.Amount) == "" {
		missing = append(missing, "amount")
	} else if a, err := currencyutils.ParseAmount(m.Amount); err != nil || a.IsZero() {
		invalid = append(invalid, "amount")
	} else {
		amount = a.Abs()
	}

	if m.CategoryID <= 0 {
		missing = append(missing, "category")
	}
	if m.AccountID <= 0 {
		missing = append(missing, "account")
	}
	if m.BranchID <= 0 {
		missing = append(missing, "branch")
	}

	if len(missing) > 0 || len(invalid) > 0 {
		return Expense{}, &parsererror.IncompleteMovementDataError{Index: m.Index, Missing: missing, Invalid: invalid}
	}
	return Expense{
		BranchID:    m.BranchID,
		CategoryID:  m.CategoryID,
		AccountID:   m.AccountID,
		Amount:      amount,
		Description: description,
		Date:        date,
	}, nil
}

// Repository stores expenses.
type Repository interface {
	Insert(ctx context.Context, e Expense) error
}

// SaveReport is the outcome of SaveMovements.
type SaveReport struct {
	Saved  int      `json:"saved"`
	Errors []string `json:"errors"`
}

// Summary renders the report for the user.
func (r SaveReport) Summary() string {
	msg := fmt.Sprintf("%d saved successfully", r.Saved)
	if len(r.Errors) > 0 {
		msg += fmt.Sprintf(", %d errors: %s", len(r.Errors), strings.Join(r.Errors, "; "))
	}
	return msg
}

// Saver validates and stores confirmed movements.
type Saver struct {
	repo   Repository
	logger logging.Logger
	now    func() time.Time
}

// NewSaver creates a Saver.
func NewSaver(repo Repository, logger logging.Logger) *Saver {
	return &Saver{repo: repo, logger: logging.OrDefault(logger), now: time.Now}
}

// SaveMovements stores every valid movement and reports the others.
// It stops early only when ctx is done; the remaining movements are reported as not saved.
func (s *Saver) SaveMovements(ctx context.Context, movements []ConfirmedMovement) SaveReport {
	report := SaveReport{Errors: []string{}}

	for i, m := range movements {
		if err := ctx.Err(); err != nil {
			for _, rest := range movements[i:] {
				report.Errors = append(report.Errors, fmt.Sprintf("movement %d: %v", rest.Index+1, err))
			}
			break
		}

		expense, err := Validate(m)
		if err != nil {
			s.logger.WithError(err).Warn("Skipping incomplete movement", logging.F("index", m.Index))
			report.Errors = append(report.Errors, err.Error())
			continue
		}
		expense.RegisteredAt = s.now()

		if err := s.repo.Insert(ctx, expense); err != nil {
			s.logger.WithError(err).Error("Failed to save expense", logging.F("index", m.Index))
			report.Errors = append(report.Errors, fmt.Sprintf("movement %d: %v", m.Index+1, err))
			continue
		}
		report.Saved++
	}

	s.logger.Info(report.Summary(),
		logging.F("saved", report.Saved),
		logging.F("errors", len(report.Errors)))
	return report
}
