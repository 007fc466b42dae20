// Package categorizer suggests expense categories for statement movements.
// A Classifier asks the language model for one category id per description;
// a Coordinator drives it over a whole statement within the provider's rate limit.
package categorizer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"fjacquet/doc-recognizer/internal/llm"
	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"
	"fjacquet/doc-recognizer/internal/parsererror"
)

const classificationPrompt = `Eres un asistente experto en clasificación de gastos bancarios.

TAREA: Analiza la siguiente descripción de un movimiento bancario y selecciona la categoría MÁS APROPIADA de la lista disponible.

DESCRIPCIÓN DEL MOVIMIENTO: "%s"

CATEGORÍAS DISPONIBLES:
%s

INSTRUCCIONES:
1. Analiza cuidadosamente la descripción del movimiento
2. Considera palabras clave, tipo de establecimiento, servicio o producto
3. Selecciona ÚNICAMENTE el ID numérico de la categoría más apropiada de la lista
4. Si ninguna categoría es apropiada, responde exactamente: "NINGUNA"
5. Responde SOLO con el número ID, sin explicaciones adicionales

EJEMPLOS:
- "PAGO TARJETA CREDITO" → categoría de servicios financieros
- "GASOLINA PEMEX" → categoría de combustible/transporte
- "DEPOSITO NOMINA" → NINGUNA (es ingreso, no gasto)

RESPUESTA:`

// CategoryClassifier picks a category for a single description.
type CategoryClassifier interface {
	Classify(ctx context.Context, description string, catalog models.CategoryCatalog) (*models.CategorySuggestion, error)
}

// Classifier asks a language model to pick a category id.
type Classifier struct {
	model     llm.Model
	logger    logging.Logger
	sentinels map[string]bool
}

// NewClassifier creates a Classifier.
func NewClassifier(model llm.Model, logger logging.Logger) *Classifier {
	sentinels := make(map[string]bool, len(models.NoMatchSentinels))
	for _, s := range models.NoMatchSentinels {
		sentinels[s] = true
	}
	return &Classifier{model: model, logger: logging.OrDefault(logger), sentinels: sentinels}
}

// Classify returns the best-fit category for description, or nil when there is
// none. An empty description or catalog returns nil without calling the model.
// A no-match answer or an id outside the catalog also yields nil; only a failed
// model call is reported as an error.
func (c *Classifier) Classify(ctx context.Context, description string, catalog models.CategoryCatalog) (*models.CategorySuggestion, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		c.logger.Debug("Empty description, skipping classification")
		return nil, nil
	}
	if len(catalog) == 0 {
		c.logger.Debug("No categories available, skipping classification")
		return nil, nil
	}

	answer, err := c.model.GenerateText(ctx, BuildPrompt(description, catalog))
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}

	log := c.logger.WithFields(
		logging.F(logging.FieldDescription, description),
		logging.F("response", answer))

	cleaned := cleanAnswer(answer)
	if c.sentinels[strings.ToUpper(cleaned)] {
		log.Debug("Model found no suitable category")
		return nil, nil
	}

	unknown := &parsererror.ClassificationFailure{Description: description, Response: answer}
	id, err := strconv.Atoi(cleaned)
	if err != nil {
		log.WithError(unknown).Warn("Model returned an invalid category id")
		return nil, nil
	}
	suggestion := catalog.Lookup(id)
	if suggestion == nil {
		log.WithError(unknown).Warn("Model returned an invalid category id", logging.F(logging.FieldCategoryID, id))
		return nil, nil
	}

	log.Debug("Category suggested",
		logging.F(logging.FieldCategoryID, suggestion.ID),
		logging.F(logging.FieldCategory, suggestion.Name))
	return suggestion, nil
}

// BuildPrompt renders the classification prompt. Categories are listed in
// ascending id order.
func BuildPrompt(description string, catalog models.CategoryCatalog) string {
	lines := make([]string, 0, len(catalog))
	for _, id := range catalog.IDs() {
		lines = append(lines, fmt.Sprintf("- %d: %s", id, catalog[id]))
	}
	return fmt.Sprintf(classificationPrompt, description, strings.Join(lines, "\n"))
}

// cleanAnswer strips the decoration models tend to put around a bare token.
func cleanAnswer(answer string) string {
	s := strings.TrimSpace(answer)
	s = strings.Trim(s, "`\"'.*")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "ID:"), "id:")
	return strings.TrimSpace(s)
}
