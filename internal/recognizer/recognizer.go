// Package recognizer runs the document pipeline: PDF text, type detection,
// structured extraction and, for statements, category suggestions.
package recognizer

import (
	"context"
	"fmt"
	"io"
	"time"

	"fjacquet/doc-recognizer/internal/categorizer"
	"fjacquet/doc-recognizer/internal/detector"
	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"
	"fjacquet/doc-recognizer/internal/pdfparser"
	"fjacquet/doc-recognizer/internal/store"

	"github.com/google/uuid"
)

// StructuredExtractor reads typed records from document text.
type StructuredExtractor interface {
	ExtractInvoice(ctx context.Context, text string) (models.ExtractedInvoice, error)
	ExtractStatement(ctx context.Context, text string) (models.ExtractedStatement, error)
}

// MovementClassifier suggests categories for statement movements in place.
type MovementClassifier interface {
	ClassifyMovements(ctx context.Context, movements []models.StatementMovement, catalog models.CategoryCatalog) (categorizer.BatchSummary, error)
}

// Options controls one recognition.
type Options struct {
	// Type forces the document type. Empty or auto runs detection.
	Type models.DocumentType
	// Categorize asks for category suggestions on statement charges.
	Categorize bool
	// Source names the document in logs and errors.
	Source string
}

// Service wires the pipeline stages. It holds no per-request state and may
// serve concurrent requests.
type Service struct {
	pdf        pdfparser.TextExtractor
	detector   *detector.Detector
	extractor  StructuredExtractor
	classifier MovementClassifier
	catalog    store.CatalogProvider
	logger     logging.Logger
	newID      func() string
}

// New creates a Service. classifier and catalog may be nil, in which case
// categorization is never attempted.
func New(
	pdf pdfparser.TextExtractor,
	det *detector.Detector,
	extractor StructuredExtractor,
	classifier MovementClassifier,
	catalog store.CatalogProvider,
	logger logging.Logger,
) *Service {
	logger = logging.OrDefault(logger)
	if det == nil {
		det = detector.New(nil, nil, logger)
	}
	return &Service{
		pdf:        pdf,
		detector:   det,
		extractor:  extractor,
		classifier: classifier,
		catalog:    catalog,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// Recognize reads the PDF in r and returns the extracted document.
// Errors from reading or extraction are request-fatal; categorization
// problems are logged and leave movements without suggestions.
func (s *Service) Recognize(ctx context.Context, r io.Reader, opts Options) (models.RecognitionResult, error) {
	log := s.logger.WithFields(
		logging.F(logging.FieldRequestID, s.newID()),
		logging.F(logging.FieldFile, opts.Source))
	start := time.Now()
	log.Info("Starting document recognition",
		logging.F(logging.FieldDocumentType, opts.Type),
		logging.F("categorize", opts.Categorize))

	pages, err := s.pdf.ExtractPages(ctx, r, opts.Source)
	if err != nil {
		return models.RecognitionResult{}, err
	}

	docType, detected := s.detector.Resolve(opts.Type, pages)
	text := pdfparser.JoinPages(pages)

	var result models.RecognitionResult
	switch docType {
	case models.DocumentTypeStatement:
		st, err := s.extractor.ExtractStatement(ctx, text)
		if err != nil {
			return models.RecognitionResult{}, err
		}
		if err := s.categorize(ctx, log, &st, opts.Categorize); err != nil {
			return models.RecognitionResult{}, err
		}
		result = models.StatementResult(st, detected)
	case models.DocumentTypeInvoice:
		inv, err := s.extractor.ExtractInvoice(ctx, text)
		if err != nil {
			return models.RecognitionResult{}, err
		}
		result = models.InvoiceResult(inv, detected)
	default:
		return models.RecognitionResult{}, fmt.Errorf("unsupported document type %q", docType)
	}

	log.Info("Document recognition completed",
		logging.F(logging.FieldDocumentType, result.Type),
		logging.F("detected", detected),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return result, nil
}

// categorize fetches the catalog once and classifies the statement's charges.
// Only cancellation is returned as an error.
func (s *Service) categorize(ctx context.Context, log logging.Logger, st *models.ExtractedStatement, requested bool) error {
	switch {
	case len(st.Movements) == 0:
		return nil
	case !requested:
		log.Info("Automatic categorization not requested")
		return nil
	case s.classifier == nil || s.catalog == nil:
		log.Warn("Automatic categorization is not configured")
		return nil
	case len(st.Charges()) == 0:
		log.Info("Statement has no charges to categorize")
		return nil
	}

	catalog, err := s.catalog.ListCategories(ctx)
	if err != nil {
		log.WithError(err).Warn("Could not load categories, skipping categorization")
		return nil
	}
	if len(catalog) == 0 {
		log.Warn("No categories available, skipping categorization")
		return nil
	}

	summary, err := s.classifier.ClassifyMovements(ctx, st.Movements, catalog)
	if err != nil {
		return fmt.Errorf("categorization interrupted: %w", err)
	}
	log.Info("Categorization completed",
		logging.F(logging.FieldCount, summary.Eligible),
		logging.F("classified", summary.Classified),
		logging.F("failed", summary.Failed))
	return nil
}

// DetectType reads the PDF in r and returns the detected type without
// calling the model.
func (s *Service) DetectType(ctx context.Context, r io.Reader, source string) (models.DocumentType, detector.Score, error) {
	pages, err := s.pdf.ExtractPages(ctx, r, source)
	if err != nil {
		return "", detector.Score{}, err
	}
	sample := pages
	if len(sample) > detector.SamplePages {
		sample = sample[:detector.SamplePages]
	}
	score := s.detector.Score(pdfparser.JoinPages(sample))
	return s.detector.DetectPages(pages), score, nil
}
