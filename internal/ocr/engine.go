// Package ocr adapts the external Tesseract engine into the pipeline. Each
// image is recognized twice — once as uploaded and once through the
// contrast-enhanced inverted rendering — and both pass outputs are
// concatenated into a single annotated RawText. Recognition is best-effort:
// quality is not guaranteed and downstream stages must tolerate garbled,
// duplicated or partial text.
package ocr

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/sirupsen/logrus"

	"go-transcript-gpa/internal/logger"
	"go-transcript-gpa/internal/preprocess"
	"go-transcript-gpa/pkg/models"
)

// Engine recognizes text on a transcript image. The engine path override is
// threaded through the call explicitly so the adapter holds no process-wide
// mutable state and stays safe for concurrent pipelines.
type Engine interface {
	Recognize(ctx context.Context, img image.Image, pathOverride string) models.RawText
}

// TesseractEngine implements Engine with the gosseract client.
type TesseractEngine struct {
	languages     []string
	minPixels     int
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine constructs a Tesseract-backed engine. languages names
// the script packs requested on every pass (combined recognition, e.g.
// chi_sim plus eng). minPixels is the upscaling budget applied before
// recognition; zero disables upscaling.
func NewTesseractEngine(languages []string, minPixels int) *TesseractEngine {
	return &TesseractEngine{
		languages:     languages,
		minPixels:     minPixels,
		clientFactory: gosseract.NewClient,
	}
}

// Recognize runs both OCR passes and concatenates the labeled outputs,
// original pass first. Failures come back as sentinel-marked text values
// rather than errors.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image, pathOverride string) models.RawText {
	enginePath, err := ResolveEnginePath(pathOverride)
	if err != nil {
		logger.WithError(err).Warn("OCR engine not found")
		return errorRawText(SentinelEngineNotFound, err.Error())
	}
	tessdata := tessdataDirFor(enginePath)

	upscaled := preprocess.Upscale(img, e.minPixels)
	passes := []struct {
		source string
		img    image.Image
	}{
		{models.PassOriginal, upscaled},
		{models.PassInverted, preprocess.Preprocess(upscaled)},
	}

	var segments []models.PassText
	var lastErr error
	for _, pass := range passes {
		select {
		case <-ctx.Done():
			return errorRawText(SentinelRecognitionFailed, ctx.Err().Error())
		default:
		}

		text, err := e.recognizeOnce(pass.img, tessdata)
		if err != nil {
			if isLanguagePackError(err) {
				logger.WithError(err).WithField("languages", e.languages).
					Warn("OCR language pack missing")
				return errorRawText(SentinelLanguagePackMissing, err.Error())
			}
			logger.WithError(err).WithField("pass", pass.source).Warn("OCR pass failed")
			lastErr = err
			continue
		}
		segments = append(segments, models.PassText{Source: pass.source, Body: text})
	}

	if len(segments) == 0 {
		detail := "all recognition passes failed"
		if lastErr != nil {
			detail = lastErr.Error()
		}
		return errorRawText(SentinelRecognitionFailed, detail)
	}

	raw := models.RawText{Segments: segments}
	if agreement := passAgreement(raw); agreement != nil {
		raw.Agreement = agreement
		logger.WithFields(logrus.Fields{
			"similarity": agreement.Similarity,
			"distance":   agreement.Distance,
		}).Debug("OCR pass agreement computed")
	}
	return raw
}

// recognizeOnce runs one gosseract pass over a single image variant.
func (e *TesseractEngine) recognizeOnce(img image.Image, tessdataDir string) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}

	client := e.clientFactory()
	defer client.Close()

	if tessdataDir != "" {
		if err := client.SetTessdataPrefix(tessdataDir); err != nil {
			return "", err
		}
	}
	if err := client.SetLanguage(e.languages...); err != nil {
		return "", err
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", err
	}

	text, err := client.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// isLanguagePackError classifies engine failures caused by a missing script
// pack, which need different user guidance than a broken install.
func isLanguagePackError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "lang") || strings.Contains(msg, "tessdata")
}
