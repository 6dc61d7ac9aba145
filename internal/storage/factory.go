package storage

import (
	"fmt"

	"go-transcript-gpa/internal/config"
)

// NewImageFetcher selects the image source backend from configuration.
func NewImageFetcher(cfg *config.Config) (ImageFetcher, error) {
	switch cfg.StorageBackend {
	case config.StorageHTTP:
		return NewHTTPImageFetcher(cfg.ImageFetchTimeout), nil
	case config.StorageAzure:
		return NewAzureImageFetcher(cfg.AzureAccountName, cfg.AzureAccountKey)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}
