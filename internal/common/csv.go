// Package common provides the export formats shared by the CLI and the API.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"fjacquet/doc-recognizer/internal/currencyutils"
	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"

	"github.com/gocarina/gocsv"
)

// DefaultDelimiter is used when no delimiter is configured.
const DefaultDelimiter = ','

// MovementRow is the flat CSV form of a statement movement.
type MovementRow struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Kind        string `csv:"Kind"`
	Reference   string `csv:"Reference"`
	CategoryID  string `csv:"CategoryID"`
	Category    string `csv:"Category"`
}

// InvoiceRow is the flat CSV form of an invoice.
type InvoiceRow struct {
	Supplier    string `csv:"Supplier"`
	Date        string `csv:"Date"`
	Total       string `csv:"Total"`
	Taxes       string `csv:"Taxes"`
	Description string `csv:"Description"`
}

// NewMovementRow flattens a movement. Amounts keep two decimals.
func NewMovementRow(m models.StatementMovement) MovementRow {
	row := MovementRow{
		Date:        m.Date.String(),
		Description: m.Description,
		Amount:      m.Amount.StringFixed(2),
		Kind:        string(m.Kind),
		Reference:   m.Reference,
	}
	if m.SuggestedCategory != nil {
		row.CategoryID = strconv.Itoa(m.SuggestedCategory.ID)
		row.Category = m.SuggestedCategory.Name
	}
	return row
}

// Movement converts a row back into a movement. Amounts accept the same
// formats as NormalizeAmount; an empty date stays unknown.
func (r MovementRow) Movement() (models.StatementMovement, error) {
	m := models.StatementMovement{
		Description: r.Description,
		Kind:        models.ParseMovementKind(r.Kind),
		Reference:   r.Reference,
	}
	if r.Date != "" {
		d, err := models.ParseLooseDate(r.Date)
		if err != nil {
			return m, err
		}
		m.Date = d
	}
	amount, err := currencyutils.ParseAmount(r.Amount)
	if err != nil {
		return m, err
	}
	m.Amount = amount
	return m, nil
}

// NewInvoiceRow flattens an invoice.
func NewInvoiceRow(inv models.ExtractedInvoice) InvoiceRow {
	return InvoiceRow{
		Supplier:    inv.Supplier,
		Date:        inv.Date.String(),
		Total:       inv.Total.StringFixed(2),
		Taxes:       inv.Taxes.StringFixed(2),
		Description: inv.Description,
	}
}

// WriteCSV marshals rows (a slice of tagged structs) to w using delimiter.
func WriteCSV(w io.Writer, rows interface{}, delimiter rune) error {
	csvWriter := csv.NewWriter(w)
	if delimiter != 0 {
		csvWriter.Comma = delimiter
	}
	safe := gocsv.NewSafeCSVWriter(csvWriter)
	if err := gocsv.MarshalCSV(rows, safe); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	safe.Flush()
	return safe.Error()
}

// WriteResultCSV writes the movements of a statement, or the single row of
// an invoice.
func WriteResultCSV(w io.Writer, result models.RecognitionResult, delimiter rune) error {
	switch {
	case result.Statement != nil:
		rows := make([]MovementRow, 0, len(result.Statement.Movements))
		for _, m := range result.Statement.Movements {
			rows = append(rows, NewMovementRow(m))
		}
		return WriteCSV(w, rows, delimiter)
	case result.Invoice != nil:
		return WriteCSV(w, []InvoiceRow{NewInvoiceRow(*result.Invoice)}, delimiter)
	default:
		return fmt.Errorf("nothing to export for document type %q", result.Type)
	}
}

// ReadCSVFile reads a CSV file into a slice of structs.
// TCSVRow is the struct type that maps to the CSV columns.
func ReadCSVFile[TCSVRow any](filePath string, delimiter rune, logger logging.Logger) ([]TCSVRow, error) {
	log := logging.OrDefault(logger).WithField(logging.FieldFile, filePath)
	log.Info("Reading CSV file")

	file, err := os.Open(filePath) // #nosec G304 -- path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	reader := csv.NewReader(file)
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.FieldsPerRecord = -1

	var rows []TCSVRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}

	log.Info("Successfully read CSV data", logging.F(logging.FieldCount, len(rows)))
	return rows, nil
}
