// Package container provides dependency injection for the doc-recognizer application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"errors"
	"fmt"

	"fjacquet/doc-recognizer/internal/categorizer"
	"fjacquet/doc-recognizer/internal/common"
	"fjacquet/doc-recognizer/internal/config"
	"fjacquet/doc-recognizer/internal/detector"
	"fjacquet/doc-recognizer/internal/expenses"
	"fjacquet/doc-recognizer/internal/extractor"
	"fjacquet/doc-recognizer/internal/llm"
	"fjacquet/doc-recognizer/internal/llm/gemini"
	"fjacquet/doc-recognizer/internal/llm/generativeai"
	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/pdfparser"
	"fjacquet/doc-recognizer/internal/recognizer"
	"fjacquet/doc-recognizer/internal/store"

	"google.golang.org/api/option"
)

// ErrPersistenceNotConfigured is returned by Saver when no database is configured.
var ErrPersistenceNotConfigured = errors.New("expense persistence requires DATABASE_URL")

// Option overrides a dependency, mostly for tests.
type Option func(*overrides)

type overrides struct {
	logger     logging.Logger
	model      llm.Model
	pages      pdfparser.PageReader
	catalog    store.CatalogProvider
	repository expenses.Repository
	sleep      categorizer.Sleeper
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(l logging.Logger) Option { return func(o *overrides) { o.logger = l } }

// WithModel replaces the language model client.
func WithModel(m llm.Model) Option { return func(o *overrides) { o.model = m } }

// WithPageReader replaces the PDF engine.
func WithPageReader(r pdfparser.PageReader) Option { return func(o *overrides) { o.pages = r } }

// WithCatalog replaces the category catalog provider.
func WithCatalog(c store.CatalogProvider) Option { return func(o *overrides) { o.catalog = c } }

// WithRepository replaces the expense repository.
func WithRepository(r expenses.Repository) Option { return func(o *overrides) { o.repository = r } }

// WithSleeper replaces the pause used between classification chunks.
func WithSleeper(s categorizer.Sleeper) Option { return func(o *overrides) { o.sleep = s } }

// Container holds all application dependencies and provides methods to access them.
// It is immutable after creation.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	model       llm.Model
	pdf         *pdfparser.Extractor
	detector    *detector.Detector
	extractor   *extractor.Extractor
	classifier  *categorizer.Classifier
	coordinator *categorizer.Coordinator
	catalog     store.CatalogProvider
	recognizer  *recognizer.Service
	saver       *expenses.Saver
	exporter    *common.Exporter
	closers     []func()
}

// NewContainer creates and wires all application dependencies.
// External connections (database, Redis, model client) are opened here and
// released by Close.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	o := &overrides{}
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}
	c := &Container{logger: logger, config: cfg}
	wired := false
	defer func() {
		if !wired {
			_ = c.Close()
		}
	}()

	policy := categorizer.BatchPolicy{
		SequentialMax:   cfg.Batching.SequentialMax,
		MediumMax:       cfg.Batching.MediumMax,
		MediumChunkSize: cfg.Batching.MediumChunkSize,
		MediumDelay:     cfg.Batching.MediumDelay,
		LargeChunkSize:  cfg.Batching.LargeChunkSize,
		LargeDelay:      cfg.Batching.LargeDelay,
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid batching policy: %w", err)
	}

	model := o.model
	if model == nil {
		var err error
		if model, err = c.newModel(ctx); err != nil {
			return nil, err
		}
	}
	c.model = llm.NewThrottledModel(model, cfg.AI.RequestsPerMinute)

	pages := o.pages
	if pages == nil {
		pages = newPageReader(cfg)
	}
	c.pdf = pdfparser.NewExtractor(pages, logger).WithTempDir(cfg.PDF.TempDir)
	c.detector = detector.New(cfg.Detection.StatementKeywords, cfg.Detection.InvoiceKeywords, logger)
	c.extractor = extractor.New(c.model, logger)
	c.classifier = categorizer.NewClassifier(c.model, logger)
	c.coordinator = categorizer.NewCoordinator(c.classifier, policy, o.sleep, logger)

	var db store.DB
	if cfg.Database.URL != "" && (o.catalog == nil || o.repository == nil) {
		pool, err := store.OpenPool(ctx, cfg.Database.URL, cfg.Database.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, pool.Close)
		db = pool
	}

	c.catalog = o.catalog
	if c.catalog == nil {
		catalog, err := c.newCatalog(ctx, db)
		if err != nil {
			return nil, err
		}
		c.catalog = catalog
	}

	repo := o.repository
	if repo == nil && db != nil {
		repo = expenses.NewPostgresRepository(db)
	}
	if repo != nil {
		c.saver = expenses.NewSaver(repo, logger)
	}

	c.recognizer = recognizer.New(c.pdf, c.detector, c.extractor, c.coordinator, c.catalog, logger)
	c.exporter = common.NewExporter(cfg.Delimiter(), logger)

	logger.Info("Container initialized successfully",
		logging.F(logging.FieldProvider, cfg.AI.Provider),
		logging.F(logging.FieldModel, cfg.AI.Model),
		logging.F("pdf_engine", cfg.PDF.Engine),
		logging.F("categories_source", cfg.Categories.Source),
		logging.F("persistence", c.saver != nil))

	wired = true
	return c, nil
}

// newModel builds the configured provider client. Without an API key the
// container still works for commands that never call the model.
func (c *Container) newModel(ctx context.Context) (llm.Model, error) {
	cfg := c.config
	if cfg.AI.APIKey == "" {
		c.logger.Warn("No AI API key configured, extraction and categorization are unavailable")
		return llm.Unconfigured{}, nil
	}

	switch cfg.AI.Provider {
	case config.ProviderGenerativeAI:
		var clientOpts []option.ClientOption
		if cfg.AI.BaseURL != "" {
			clientOpts = append(clientOpts, option.WithEndpoint(cfg.AI.BaseURL))
		}
		client, err := generativeai.New(ctx, cfg.AI.APIKey, cfg.AI.Model, c.logger, clientOpts...)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() {
			if err := client.Close(); err != nil {
				c.logger.WithError(err).Warn("Failed to close AI client")
			}
		})
		return client, nil
	default:
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			BaseURL: cfg.AI.BaseURL,
			Timeout: cfg.AITimeout(),
		}, c.logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

func newPageReader(cfg *config.Config) pdfparser.PageReader {
	if cfg.PDF.Engine == config.EnginePdftotext {
		return pdfparser.NewPdftotextReader(cfg.PDF.PdftotextPath)
	}
	return pdfparser.NewLedongthucReader()
}

// newCatalog builds the catalog provider chain: the configured source,
// cached in Redis when REDIS_URL is set, or in memory for database sources.
func (c *Container) newCatalog(ctx context.Context, db store.DB) (store.CatalogProvider, error) {
	cfg := c.config

	var inner store.CatalogProvider
	switch cfg.Categories.Source {
	case config.CategoriesPostgres:
		if db == nil {
			return nil, fmt.Errorf("categories source postgres requires DATABASE_URL")
		}
		inner = store.NewPostgresCatalog(db, c.logger)
	default:
		inner = store.NewYAMLCatalog(cfg.Categories.File, c.logger)
	}

	if cfg.Categories.CacheTTL <= 0 {
		return inner, nil
	}
	if cfg.Redis.URL != "" {
		client, err := store.OpenRedis(ctx, cfg.Redis.URL, cfg.Database.ConnectTimeout)
		if err != nil {
			c.logger.WithError(err).Warn("Redis unavailable, categories will not be cached")
			return inner, nil
		}
		c.closers = append(c.closers, func() {
			if err := client.Close(); err != nil {
				c.logger.WithError(err).Warn("Failed to close Redis client")
			}
		})
		return store.NewCachedCatalog(inner, store.NewRedisCache(client), cfg.Categories.CacheTTL, c.logger), nil
	}
	if cfg.Categories.Source == config.CategoriesPostgres {
		return store.NewCachedCatalog(inner, store.NewMemoryCache(), cfg.Categories.CacheTTL, c.logger), nil
	}
	return inner, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetRecognizer returns the document pipeline.
func (c *Container) GetRecognizer() *recognizer.Service {
	return c.recognizer
}

// GetClassifier returns the single-description classifier.
func (c *Container) GetClassifier() *categorizer.Classifier {
	return c.classifier
}

// GetCoordinator returns the batch classification coordinator.
func (c *Container) GetCoordinator() *categorizer.Coordinator {
	return c.coordinator
}

// GetCatalog returns the category catalog provider.
func (c *Container) GetCatalog() store.CatalogProvider {
	return c.catalog
}

// GetExporter returns the result exporter.
func (c *Container) GetExporter() *common.Exporter {
	return c.exporter
}

// GetSaver returns the expense saver, or ErrPersistenceNotConfigured.
func (c *Container) GetSaver() (*expenses.Saver, error) {
	if c.saver == nil {
		return nil, ErrPersistenceNotConfigured
	}
	return c.saver, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() error {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
	c.logger.Info("Container closed")
	return nil
}
