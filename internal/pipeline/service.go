// Package pipeline orchestrates the per-image stages (fetch, preprocess
// check, OCR, extraction) and runs the single aggregation over the pooled
// records from all images.
package pipeline

import (
	"context"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "go-transcript-gpa/internal/errors"
	"go-transcript-gpa/internal/extractor"
	"go-transcript-gpa/internal/gpa"
	"go-transcript-gpa/internal/logger"
	"go-transcript-gpa/internal/ocr"
	"go-transcript-gpa/internal/preprocess"
	"go-transcript-gpa/internal/storage"
	"go-transcript-gpa/pkg/models"
	"go-transcript-gpa/pkg/validation"
)

// Options carries the per-request knobs owned by the caller: the
// language-model credential and an optional OCR engine path override.
type Options struct {
	APIKey        string
	TesseractPath string
}

// Service computes a GPA report from a batch of transcript images.
type Service interface {
	CalculateGPA(ctx context.Context, imageURLs []string, opts Options) (*models.GpaReport, error)
}

type gpaService struct {
	fetcher      storage.ImageFetcher
	engine       ocr.Engine
	extractor    extractor.Extractor
	urlValidator *validation.URLValidator
	publisher    *Publisher
	maxWorkers   int
}

// NewService wires the pipeline stages together. maxWorkers > 0 enables
// parallel per-image fan-out; 0 processes images sequentially.
func NewService(
	fetcher storage.ImageFetcher,
	engine ocr.Engine,
	recordExtractor extractor.Extractor,
	publisher *Publisher,
	maxWorkers int,
) Service {
	return &gpaService{
		fetcher:      fetcher,
		engine:       engine,
		extractor:    recordExtractor,
		urlValidator: validation.NewURLValidator(),
		publisher:    publisher,
		maxWorkers:   maxWorkers,
	}
}

// imageResult is one image's contribution to the pooled record set.
type imageResult struct {
	records   []models.CandidateRecord
	errText   string
	engineErr *apperrors.AppError
}

// CalculateGPA runs the full pipeline. Per-image failures degrade to fewer
// records; only an empty pooled record set is an error, and an engine-class
// failure takes precedence in that case so users get actionable guidance
// instead of a generic "no data" message.
func (s *gpaService) CalculateGPA(ctx context.Context, imageURLs []string, opts Options) (*models.GpaReport, error) {
	if len(imageURLs) == 0 {
		return nil, apperrors.NewValidationError("at least one image URL is required", nil)
	}

	start := time.Now()
	results := make([]imageResult, len(imageURLs))

	if s.maxWorkers > 0 && len(imageURLs) > 1 {
		pool := NewWorkerPool(s.maxWorkers)
		pool.Start()
		for i, url := range imageURLs {
			i, url := i, url
			pool.Submit(func() {
				results[i] = s.processImage(ctx, url, opts)
			})
		}
		pool.Wait()
		pool.Close()
	} else {
		for i, url := range imageURLs {
			results[i] = s.processImage(ctx, url, opts)
		}
	}

	var pooled []models.CandidateRecord
	var runErrors []string
	var engineErr *apperrors.AppError
	for _, result := range results {
		pooled = append(pooled, result.records...)
		if result.errText != "" {
			runErrors = append(runErrors, result.errText)
		}
		if engineErr == nil && result.engineErr != nil {
			engineErr = result.engineErr
		}
	}

	finalGPA, validRecords := gpa.Aggregate(pooled)

	if len(validRecords) == 0 {
		if engineErr != nil {
			return nil, engineErr
		}
		return nil, apperrors.NewNoValidDataError("no valid data extracted from any image")
	}

	report := &models.GpaReport{
		FinalGPA:        finalGPA,
		Records:         validRecords,
		ImagesProcessed: len(imageURLs),
		CandidateCount:  len(pooled),
		Errors:          runErrors,
	}

	s.publisher.Notify(ctx, PipelineEvent{
		Type:        RunCompleted,
		Duration:    time.Since(start),
		RecordCount: len(validRecords),
	})
	return report, nil
}

// processImage runs preprocess, OCR and extraction for a single image.
// Engine-class OCR failures abort the image's pipeline early; everything
// else degrades to zero records.
func (s *gpaService) processImage(ctx context.Context, imageURL string, opts Options) imageResult {
	start := time.Now()

	fail := func(errText string, engineErr *apperrors.AppError) imageResult {
		s.publisher.Notify(ctx, PipelineEvent{
			Type:     ImageFailed,
			ImageURL: imageURL,
			Duration: time.Since(start),
			Error:    errText,
		})
		return imageResult{errText: errText, engineErr: engineErr}
	}

	if err := s.urlValidator.ValidateImageURL(imageURL); err != nil {
		return fail("invalid image URL: "+err.Error(), nil)
	}

	img, err := s.fetcher.FetchImage(ctx, imageURL)
	if err != nil {
		return fail("failed to fetch image: "+err.Error(), nil)
	}

	s.warnOnPoorQuality(imageURL, img)

	raw := s.engine.Recognize(ctx, img, opts.TesseractPath)
	combined := raw.Combined()
	if ocr.IsErrorText(combined) {
		switch {
		case ocr.IsLanguagePackMissing(combined):
			return fail(combined, apperrors.NewLanguagePackMissingError(
				"OCR engine is missing the required language pack (chi_sim)", nil))
		case ocr.IsEngineNotFound(combined):
			return fail(combined, apperrors.NewEngineNotFoundError(
				"OCR engine could not be located; set TESSERACT_PATH or install tesseract", nil))
		default:
			return fail(combined, nil)
		}
	}

	records := s.extractor.Extract(ctx, raw, opts.APIKey)

	s.publisher.Notify(ctx, PipelineEvent{
		Type:        ImageProcessed,
		ImageURL:    imageURL,
		Duration:    time.Since(start),
		RecordCount: len(records),
	})
	return imageResult{records: records}
}

// warnOnPoorQuality logs readability problems before OCR so users can tell
// why a screenshot produced garbage. Never blocks the pipeline.
func (s *gpaService) warnOnPoorQuality(imageURL string, img image.Image) {
	assessment := preprocess.AssessForOCR(preprocess.Grayscale(img))
	if !assessment.Blurry && !assessment.TooDark && !assessment.TooBright {
		return
	}
	logger.WithFields(logrus.Fields{
		"image_url":     imageURL,
		"blurry":        assessment.Blurry,
		"too_dark":      assessment.TooDark,
		"too_bright":    assessment.TooBright,
		"brightness":    assessment.Brightness,
		"laplacian_var": assessment.LaplacianVar,
	}).Warn("Image quality may hurt recognition; consider cropping to the grade table")
}
