package models

import (
	"fmt"
	"strings"
)

// DocumentType identifies what kind of PDF is being recognized.
type DocumentType string

const (
	// DocumentTypeAuto asks the pipeline to detect the type from the text.
	DocumentTypeAuto DocumentType = "auto"
	// DocumentTypeInvoice is a supplier invoice ("factura").
	DocumentTypeInvoice DocumentType = "factura"
	// DocumentTypeStatement is a bank statement ("estado de cuenta").
	DocumentTypeStatement DocumentType = "estado_cuenta"
)

// ParseDocumentType maps a user supplied selector to a DocumentType.
// An empty selector means auto.
func ParseDocumentType(s string) (DocumentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return DocumentTypeAuto, nil
	case "factura", "invoice":
		return DocumentTypeInvoice, nil
	case "estado_cuenta", "estado-cuenta", "statement":
		return DocumentTypeStatement, nil
	default:
		return "", fmt.Errorf("unknown document type %q (expected auto, factura or estado_cuenta)", s)
	}
}

// IsAuto reports whether the type still has to be detected.
func (t DocumentType) IsAuto() bool {
	return t == "" || t == DocumentTypeAuto
}

func (t DocumentType) String() string {
	return string(t)
}
