package extractor

import "fjacquet/doc-recognizer/internal/llm"

// Response field names. The model answers in the document's language.
const (
	keySupplier    = "proveedor"
	keyDate        = "fecha"
	keyTotal       = "total"
	keyTaxes       = "impuestos"
	keyDescription = "descripcion"

	keyBank           = "banco"
	keyAccountNumber  = "numero_cuenta"
	keyPeriodStart    = "periodo_inicio"
	keyPeriodEnd      = "periodo_fin"
	keyOpeningBalance = "saldo_inicial"
	keyClosingBalance = "saldo_final"
	keyMovements      = "movimientos"

	keyAmount    = "monto"
	keyKind      = "tipo"
	keyReference = "referencia"
)

// InvoiceSchema is the shape requested for a supplier invoice.
var InvoiceSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		keySupplier:    {Type: llm.TypeString, Description: "Nombre del proveedor o empresa que emite la factura."},
		keyDate:        {Type: llm.TypeString, Description: "Fecha de emisión de la factura (formato YYYY-MM-DD)."},
		keyTotal:       {Type: llm.TypeNumber, Description: "El monto total de la factura."},
		keyTaxes:       {Type: llm.TypeNumber, Description: "El monto total de impuestos (e.g., IVA)."},
		keyDescription: {Type: llm.TypeString, Description: "Una descripción breve de los productos o servicios."},
	},
	Order:    []string{keySupplier, keyDate, keyTotal, keyTaxes, keyDescription},
	Required: []string{keySupplier, keyDate, keyTotal, keyTaxes, keyDescription},
}

var movementSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		keyDate:        {Type: llm.TypeString, Description: "Fecha del movimiento (formato YYYY-MM-DD)."},
		keyDescription: {Type: llm.TypeString, Description: "Descripción o concepto del movimiento."},
		keyAmount:      {Type: llm.TypeNumber, Description: "Monto del movimiento (positivo para ingresos, negativo para gastos)."},
		keyKind:        {Type: llm.TypeString, Description: "Tipo de movimiento: 'cargo', 'abono', 'comision', 'interes', etc."},
		keyReference:   {Type: llm.TypeString, Nullable: true, Description: "Número de referencia o folio del movimiento."},
	},
	Order:    []string{keyDate, keyDescription, keyAmount, keyKind, keyReference},
	Required: []string{keyDate, keyDescription, keyAmount, keyKind},
}

// StatementSchema is the shape requested for a bank statement.
var StatementSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		keyBank:           {Type: llm.TypeString, Description: "Nombre del banco emisor del estado de cuenta."},
		keyAccountNumber:  {Type: llm.TypeString, Nullable: true, Description: "Número de cuenta (últimos 4 dígitos visibles)."},
		keyPeriodStart:    {Type: llm.TypeString, Description: "Fecha de inicio del periodo (formato YYYY-MM-DD)."},
		keyPeriodEnd:      {Type: llm.TypeString, Description: "Fecha de fin del periodo (formato YYYY-MM-DD)."},
		keyOpeningBalance: {Type: llm.TypeNumber, Description: "Saldo inicial del periodo."},
		keyClosingBalance: {Type: llm.TypeNumber, Description: "Saldo final del periodo."},
		keyMovements:      {Type: llm.TypeArray, Items: movementSchema, Description: "Lista de todos los movimientos del estado de cuenta."},
	},
	Order:    []string{keyBank, keyAccountNumber, keyPeriodStart, keyPeriodEnd, keyOpeningBalance, keyClosingBalance, keyMovements},
	Required: []string{keyBank, keyPeriodStart, keyPeriodEnd, keyOpeningBalance, keyClosingBalance, keyMovements},
}
