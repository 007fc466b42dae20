package common

import (
	"fmt"
	"io"

	"fjacquet/doc-recognizer/internal/models"

	"github.com/xuri/excelize/v2"
)

// Sheet names used by the XLSX export.
const (
	MovementsSheet = "Movimientos"
	InvoiceSheet   = "Factura"
)

var movementHeaders = []interface{}{"Fecha", "Descripción", "Monto", "Tipo", "Referencia", "ID Categoría", "Categoría"}

var invoiceHeaders = []interface{}{"Proveedor", "Fecha", "Total", "Impuestos", "Descripción"}

// WriteResultXLSX writes a one-sheet workbook. Amounts are numeric cells.
func WriteResultXLSX(w io.Writer, result models.RecognitionResult) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	switch {
	case result.Statement != nil:
		err = fillMovements(f, result.Statement.Movements)
	case result.Invoice != nil:
		err = fillInvoice(f, *result.Invoice)
	default:
		err = fmt.Errorf("nothing to export for document type %q", result.Type)
	}
	if err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func fillMovements(f *excelize.File, movements []models.StatementMovement) error {
	if err := f.SetSheetName("Sheet1", MovementsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(MovementsSheet, "A1", &movementHeaders); err != nil {
		return err
	}
	for i, m := range movements {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{m.Date.String(), m.Description, m.Amount.InexactFloat64(), string(m.Kind), m.Reference, "", ""}
		if m.SuggestedCategory != nil {
			row[5] = m.SuggestedCategory.ID
			row[6] = m.SuggestedCategory.Name
		}
		if err := f.SetSheetRow(MovementsSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func fillInvoice(f *excelize.File, inv models.ExtractedInvoice) error {
	if err := f.SetSheetName("Sheet1", InvoiceSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(InvoiceSheet, "A1", &invoiceHeaders); err != nil {
		return err
	}
	row := []interface{}{inv.Supplier, inv.Date.String(), inv.Total.InexactFloat64(), inv.Taxes.InexactFloat64(), inv.Description}
	return f.SetSheetRow(InvoiceSheet, "A2", &row)
}
