// Package api exposes the recognition pipeline and expense persistence over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"fjacquet/doc-recognizer/internal/expenses"
	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"
	"fjacquet/doc-recognizer/internal/recognizer"
	"fjacquet/doc-recognizer/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// DocumentRecognizer runs the recognition pipeline on an uploaded PDF.
type DocumentRecognizer interface {
	Recognize(ctx context.Context, r io.Reader, opts recognizer.Options) (models.RecognitionResult, error)
}

// DescriptionClassifier suggests a category for one description.
type DescriptionClassifier interface {
	Classify(ctx context.Context, description string, catalog models.CategoryCatalog) (*models.CategorySuggestion, error)
}

// MovementSaver records confirmed movements as expenses.
type MovementSaver interface {
	SaveMovements(ctx context.Context, movements []expenses.ConfirmedMovement) expenses.SaveReport
}

// Deps are the collaborators the handlers need. Saver may be nil when no
// database is configured; the expense endpoint then answers 503.
type Deps struct {
	Recognizer     DocumentRecognizer
	Classifier     DescriptionClassifier
	Catalog        store.CatalogProvider
	Saver          MovementSaver
	Logger         logging.Logger
	MaxUploadBytes int64
	AllowedOrigins []string
}

// Server holds the HTTP handlers.
type Server struct {
	deps   Deps
	logger logging.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Deps) *gin.Engine {
	s := &Server{deps: deps, logger: logging.OrDefault(deps.Logger)}
	if s.deps.MaxUploadBytes <= 0 {
		s.deps.MaxUploadBytes = 20 << 20
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger(), cors.New(corsConfig(deps.AllowedOrigins)))
	router.MaxMultipartMemory = s.deps.MaxUploadBytes

	router.GET("/healthz", s.health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/documents/recognize", s.recognizeDocument)
		v1.GET("/categories", s.listCategories)
		v1.POST("/categories/suggest", s.suggestCategory)
		v1.POST("/expenses/movements", s.saveMovements)
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("HTTP request",
			logging.F("method", c.Request.Method),
			logging.F("path", c.Request.URL.Path),
			logging.F(logging.FieldStatus, c.Writer.Status()),
			logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	}
}

// Run serves router on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func Run(ctx context.Context, addr string, router http.Handler, shutdownTimeout time.Duration, logger logging.Logger) error {
	logger = logging.OrDefault(logger)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", logging.F("address", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
