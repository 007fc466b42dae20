package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"fjacquet/doc-recognizer/internal/expenses"
	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"
	"fjacquet/doc-recognizer/internal/parsererror"
	"fjacquet/doc-recognizer/internal/recognizer"

	"github.com/gin-gonic/gin"
)

// Form fields of the recognition upload.
const (
	FieldDocument     = "documento"
	FieldDocumentType = "tipo_documento"
	FieldCategorize   = "asignar_categorias"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) recognizeDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.deps.MaxUploadBytes)

	file, header, err := c.Request.FormFile(FieldDocument)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "the uploaded file is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "a PDF document is required in field " + FieldDocument})
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close uploaded file")
		}
	}()

	docType, err := models.ParseDocumentType(c.PostForm(FieldDocumentType))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	categorize, err := parseCheckbox(c.PostForm(FieldCategorize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.deps.Recognizer.Recognize(c.Request.Context(), file, recognizer.Options{
		Type:       docType,
		Categorize: categorize,
		Source:     header.Filename,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// parseCheckbox accepts the values an HTML checkbox or a script may send.
func parseCheckbox(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "off", "no":
		return false, nil
	case "on", "si", "sí", "yes":
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New("invalid value for " + FieldCategorize + ": " + v)
	}
	return b, nil
}

func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case parsererror.IsRequestFatal(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": parsererror.UserMessage(err)})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "the request was cancelled"})
	default:
		s.logger.WithError(err).Error("Request failed", logging.F("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (s *Server) listCategories(c *gin.Context) {
	catalog, err := s.deps.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list categories")
		c.JSON(http.StatusBadGateway, gin.H{"error": "categories are unavailable"})
		return
	}
	out := make([]models.CategorySuggestion, 0, len(catalog))
	for _, id := range catalog.IDs() {
		out = append(out, models.CategorySuggestion{ID: id, Name: catalog[id]})
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

type suggestRequest struct {
	Description string `json:"description" binding:"required"`
}

func (s *Server) suggestCategory(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	catalog, err := s.deps.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list categories")
		c.JSON(http.StatusBadGateway, gin.H{"error": "categories are unavailable"})
		return
	}

	suggestion, err := s.deps.Classifier.Classify(c.Request.Context(), req.Description, catalog)
	if err != nil {
		s.logger.WithError(err).Warn("Category suggestion failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "the classifier is unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": req.Description, "suggested_category": suggestion})
}

type saveMovementsRequest struct {
	Movements []expenses.ConfirmedMovement `json:"movements" binding:"required"`
}

func (s *Server) saveMovements(c *gin.Context) {
	if s.deps.Saver == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "expense persistence is not configured"})
		return
	}

	var req saveMovementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Movements) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no movements to save"})
		return
	}

	report := s.deps.Saver.SaveMovements(c.Request.Context(), req.Movements)
	c.JSON(http.StatusOK, gin.H{
		"saved":   report.Saved,
		"errors":  report.Errors,
		"message": report.Summary(),
	})
}
