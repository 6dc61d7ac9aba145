package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backend identifiers.
const (
	StorageHTTP  = "http"
	StorageAzure = "azure"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	ExtractionTimeout  time.Duration
	MaxRequestBodySize int64

	// OCR engine settings
	TesseractPath string
	OCRLanguages  []string
	MinImagePixels int

	// Language-model settings
	DeepSeekAPIKey  string
	DeepSeekBaseURL string
	DeepSeekModel   string

	// Credit policy: exact subject name -> fixed credit value
	CreditOverrides map[string]float64

	// Image source
	StorageBackend   string
	AzureAccountName string
	AzureAccountKey  string

	// Per-request image fan-out; 0 disables parallel processing
	MaxWorkers int
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 120*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		ExtractionTimeout:  parseDurationOrDefault("EXTRACTION_TIMEOUT", 90*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		TesseractPath:      os.Getenv("TESSERACT_PATH"),
		OCRLanguages:       parseListOrDefault("OCR_LANGUAGES", []string{"chi_sim", "eng"}),
		MinImagePixels:     int(parseIntOrDefault("MIN_IMAGE_PIXELS", 500000)),
		DeepSeekAPIKey:     os.Getenv("DEEPSEEK_API_KEY"),
		DeepSeekBaseURL:    getEnvOrDefault("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),
		DeepSeekModel:      getEnvOrDefault("DEEPSEEK_MODEL", "deepseek-chat"),
		StorageBackend:     getEnvOrDefault("STORAGE_BACKEND", StorageHTTP),
		AzureAccountName:   os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:    os.Getenv("AZURE_ACCOUNT_KEY"),
		MaxWorkers:         int(parseIntOrDefault("MAX_WORKERS", 0)),
	}

	overrides, err := parseCreditOverrides(os.Getenv("CREDIT_OVERRIDES"))
	if err != nil {
		return nil, fmt.Errorf("invalid CREDIT_OVERRIDES: %w", err)
	}
	cfg.CreditOverrides = overrides

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.ImageFetchTimeout <= 0 || cfg.ExtractionTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, extraction=%s)",
			cfg.RequestTimeout, cfg.ImageFetchTimeout, cfg.ExtractionTimeout)
	}
	if len(cfg.OCRLanguages) == 0 {
		return nil, fmt.Errorf("OCR_LANGUAGES must name at least one language")
	}
	switch cfg.StorageBackend {
	case StorageHTTP:
	case StorageAzure:
		if cfg.AzureAccountName == "" || cfg.AzureAccountKey == "" {
			return nil, fmt.Errorf("azure storage backend requires AZURE_ACCOUNT_NAME and AZURE_ACCOUNT_KEY")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND: %q", cfg.StorageBackend)
	}
	return cfg, nil
}

// parseCreditOverrides decodes the subject->credit override table from a JSON
// object, e.g. {"大学体育": 1.0, "军事理论": 2.0}.
func parseCreditOverrides(value string) (map[string]float64, error) {
	if strings.TrimSpace(value) == "" {
		return map[string]float64{}, nil
	}
	overrides := map[string]float64{}
	if err := json.Unmarshal([]byte(value), &overrides); err != nil {
		return nil, err
	}
	for subject, credit := range overrides {
		if credit < 0 {
			return nil, fmt.Errorf("negative credit for subject %q", subject)
		}
	}
	return overrides, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
