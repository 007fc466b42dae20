// Package extractor turns document text into typed invoice and statement
// records with a single structured call to the language model.
package extractor

import (
	"context"
	"fmt"
	"time"

	"fjacquet/doc-recognizer/internal/llm"
	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"
	"fjacquet/doc-recognizer/internal/parsererror"
	"fjacquet/doc-recognizer/internal/textutils"
)

// Document names used in ExtractionError.
const (
	DocumentInvoice   = "invoice"
	DocumentStatement = "statement"
)

// Extraction stages reported in ExtractionError.
const (
	StageGenerate = "generate"
	StageDecode   = "decode"
	StageValidate = "validate"
)

// loggedMovements is how many movements are logged after a statement extraction.
const loggedMovements = 5

const invoicePrompt = `Eres un asistente experto en extraer información de facturas.
Analiza el siguiente texto de una factura y extrae los datos solicitados.

Texto de la factura:
%s

%s
`

const statementPrompt = `Eres un asistente experto en analizar estados de cuenta bancarios.
Analiza el siguiente texto de un estado de cuenta y extrae TODOS los movimientos y datos solicitados.

INSTRUCCIONES ESPECÍFICAS:
1. Identifica todos los movimientos/transacciones en el estado de cuenta
2. Para cada movimiento, extrae: fecha, descripción, monto, tipo y referencia
3. Los montos negativos son gastos/cargos, los positivos son ingresos/abonos
4. Incluye comisiones, intereses, transferencias, pagos, etc.
5. No omitas ningún movimiento, por pequeño que sea
6. Si hay abreviaciones bancarias, interprétalas (ej: TRF = Transferencia, COM = Comisión)

Texto del estado de cuenta:
%s

%s
`

// Extractor sends document text to a model and decodes the answer.
// There is no retry: a failed extraction is reported to the caller.
type Extractor struct {
	model              llm.Model
	logger             logging.Logger
	invoiceValidator   *llm.Validator
	statementValidator *llm.Validator
}

// New creates an Extractor.
func New(model llm.Model, logger logging.Logger) *Extractor {
	return &Extractor{
		model:              model,
		logger:             logging.OrDefault(logger),
		invoiceValidator:   llm.MustValidator(InvoiceSchema),
		statementValidator: llm.MustValidator(StatementSchema),
	}
}

// ExtractInvoice reads an invoice from text.
func (e *Extractor) ExtractInvoice(ctx context.Context, text string) (models.ExtractedInvoice, error) {
	prompt := fmt.Sprintf(invoicePrompt, text, InvoiceSchema.FormatInstructions())
	obj, err := e.request(ctx, DocumentInvoice, prompt, InvoiceSchema, e.invoiceValidator)
	if err != nil {
		return models.ExtractedInvoice{}, err
	}

	inv, err := decodeInvoice(obj)
	if err != nil {
		return models.ExtractedInvoice{}, e.fail(DocumentInvoice, StageDecode, err)
	}

	e.logger.Info("Invoice extracted",
		logging.F("supplier", inv.Supplier),
		logging.F("date", inv.Date.String()),
		logging.F("total", inv.Total.String()),
		logging.F("taxes", inv.Taxes.String()))
	return inv, nil
}

// ExtractStatement reads a bank statement and its movements from text.
func (e *Extractor) ExtractStatement(ctx context.Context, text string) (models.ExtractedStatement, error) {
	prompt := fmt.Sprintf(statementPrompt, text, StatementSchema.FormatInstructions())
	obj, err := e.request(ctx, DocumentStatement, prompt, StatementSchema, e.statementValidator)
	if err != nil {
		return models.ExtractedStatement{}, err
	}

	st, err := decodeStatement(obj)
	if err != nil {
		return models.ExtractedStatement{}, e.fail(DocumentStatement, StageDecode, err)
	}

	e.logger.Info("Statement extracted",
		logging.F("bank", st.Bank),
		logging.F("account", st.AccountNumberMasked),
		logging.F("period", st.PeriodStart.String()+" - "+st.PeriodEnd.String()),
		logging.F(logging.FieldCount, len(st.Movements)))
	if len(st.Movements) == 0 {
		e.logger.Warn("No movements were extracted from the statement")
	}
	e.logMovements(st.Movements)
	return st, nil
}

func (e *Extractor) request(ctx context.Context, document, prompt string, schema *llm.Schema, validator *llm.Validator) (map[string]any, error) {
	e.logger.Info("Sending document to model",
		logging.F(logging.FieldDocumentType, document),
		logging.F(logging.FieldChars, len(prompt)))

	start := time.Now()
	raw, err := e.model.GenerateJSON(ctx, prompt, schema)
	if err != nil {
		return nil, e.fail(document, StageGenerate, err)
	}
	e.logger.Debug("Model response received",
		logging.F(logging.FieldDocumentType, document),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()),
		logging.F("preview", textutils.Preview(raw, 200)))

	obj, err := llm.DecodeObject(raw)
	if err != nil {
		return nil, e.fail(document, StageDecode, err)
	}
	if err := validator.Validate(obj); err != nil {
		return nil, e.fail(document, StageValidate, err)
	}
	return obj, nil
}

func (e *Extractor) fail(document, stage string, err error) error {
	extractErr := &parsererror.ExtractionError{Document: document, Stage: stage, Err: err}
	e.logger.WithError(err).Error("Extraction failed",
		logging.F(logging.FieldDocumentType, document),
		logging.F(logging.FieldStage, stage))
	return extractErr
}

func (e *Extractor) logMovements(movements []models.StatementMovement) {
	for i, m := range movements {
		if i == loggedMovements {
			e.logger.Info(fmt.Sprintf("... and %d more movements", len(movements)-loggedMovements))
			return
		}
		e.logger.Info(fmt.Sprintf("Movement %d", i+1),
			logging.F("date", m.Date.String()),
			logging.F(logging.FieldDescription, m.Description),
			logging.F(logging.FieldAmount, m.Amount.String()),
			logging.F("kind", string(m.Kind)))
	}
}
