package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-transcript-gpa/internal/config"
	apperrors "go-transcript-gpa/internal/errors"
	"go-transcript-gpa/internal/export"
	"go-transcript-gpa/internal/logger"
	"go-transcript-gpa/internal/pipeline"
)

// GpaRequest is the body of POST /gpa. The API key falls back to the
// server's configured credential when omitted; tesseract_path overrides the
// engine location for this request only.
type GpaRequest struct {
	ImageURLs     []string `json:"image_urls" binding:"required,min=1"`
	APIKey        string   `json:"api_key,omitempty"`
	TesseractPath string   `json:"tesseract_path,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewHandler configures the HTTP surface: a health probe and the GPA
// calculation endpoint with json/csv/xlsx response formats.
func NewHandler(service pipeline.Service, metrics *pipeline.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.GET("/metrics", pipelineMetrics(metrics))
	r.POST("/gpa", calculateGPA(service, cfg))

	return r
}

func calculateGPA(service pipeline.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"ip":     c.ClientIP(),
		}).Info("Processing GPA calculation request")

		var req GpaRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithField("ip", c.ClientIP()).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		apiKey := req.APIKey
		if apiKey == "" {
			apiKey = c.GetHeader("X-Api-Key")
		}
		if apiKey == "" {
			apiKey = cfg.DeepSeekAPIKey
		}

		tesseractPath := req.TesseractPath
		if tesseractPath == "" {
			tesseractPath = cfg.TesseractPath
		}

		report, err := service.CalculateGPA(ctx, req.ImageURLs, pipeline.Options{
			APIKey:        apiKey,
			TesseractPath: tesseractPath,
		})
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"image_count": len(req.ImageURLs),
				"ip":          c.ClientIP(),
			}).Error("GPA calculation failed")
			respondError(c, determineStatusCode(err), "GPA calculation failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"image_count":        len(req.ImageURLs),
			"record_count":       len(report.Records),
			"final_gpa":          report.FinalGPA,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("GPA calculation completed")

		switch c.DefaultQuery("format", "json") {
		case "csv":
			data, err := export.WriteCSV(report)
			if err != nil {
				respondError(c, http.StatusInternalServerError, "failed to render CSV", err)
				return
			}
			c.Header("Content-Disposition", `attachment; filename="gpa_report.csv"`)
			c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
		case "xlsx":
			data, err := export.WriteXLSX(report)
			if err != nil {
				respondError(c, http.StatusInternalServerError, "failed to render workbook", err)
				return
			}
			c.Header("Content-Disposition", `attachment; filename="gpa_report.xlsx"`)
			c.Data(http.StatusOK,
				"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
		default:
			c.JSON(http.StatusOK, report)
		}
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func pipelineMetrics(metrics *pipeline.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.Metrics())
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	response := ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		response.Type = string(appErr.Type)
	}

	c.AbortWithStatusJSON(code, response)
}
