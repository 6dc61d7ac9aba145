// Package container wires the application's dependency graph: configuration,
// image source, OCR engine, record extractor, pipeline service and the HTTP
// handler on top.
package container

import (
	"fmt"
	"net/http"

	"go-transcript-gpa/internal/config"
	"go-transcript-gpa/internal/extractor"
	"go-transcript-gpa/internal/ocr"
	"go-transcript-gpa/internal/pipeline"
	"go-transcript-gpa/internal/storage"
	"go-transcript-gpa/internal/transport"
)

// Container holds all application dependencies.
type Container struct {
	config     *config.Config
	fetcher    storage.ImageFetcher
	engine     ocr.Engine
	extractor  extractor.Extractor
	gpaService pipeline.Service
	metrics    *pipeline.MetricsObserver
	handler    http.Handler
}

// NewContainer builds the dependency graph from configuration.
func NewContainer(cfg *config.Config) (*Container, error) {
	fetcher, err := storage.NewImageFetcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create image fetcher: %w", err)
	}

	engine := ocr.NewTesseractEngine(cfg.OCRLanguages, cfg.MinImagePixels)

	recordExtractor := extractor.NewClient(
		cfg.DeepSeekBaseURL,
		cfg.DeepSeekModel,
		cfg.ExtractionTimeout,
		extractor.CreditOverrides(cfg.CreditOverrides),
	)

	metrics := pipeline.NewMetricsObserver()
	publisher := pipeline.NewPublisher()
	publisher.Subscribe(pipeline.NewLoggingObserver())
	publisher.Subscribe(metrics)

	gpaService := pipeline.NewService(fetcher, engine, recordExtractor, publisher, cfg.MaxWorkers)
	handler := transport.NewHandler(gpaService, metrics, cfg)

	return &Container{
		config:     cfg,
		fetcher:    fetcher,
		engine:     engine,
		extractor:  recordExtractor,
		gpaService: gpaService,
		metrics:    metrics,
		handler:    handler,
	}, nil
}

// Handler returns the HTTP handler.
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the GPA pipeline service.
func (c *Container) Service() pipeline.Service {
	return c.gpaService
}
