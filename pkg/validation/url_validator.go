package validation

import (
	"net/url"
	"strings"

	apperrors "go-transcript-gpa/internal/errors"
)

// URLValidator checks transcript image URLs before the pipeline spends a
// network round-trip on them.
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator creates a validator accepting http/https URLs from any host.
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
		allowedHosts:   []string{},
	}
}

// NewURLValidatorWithOptions creates a validator with custom scheme and host
// allowlists. An empty host list allows all hosts.
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// ValidateImageURL reports whether imageURL is acceptable as an image source.
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return apperrors.NewValidationError("image URL cannot be empty", nil)
	}

	parsed, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("invalid image URL format", err)
	}

	if !contains(v.allowedSchemes, parsed.Scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	if parsed.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if parsed.User != nil {
		return apperrors.NewValidationError("URL must not embed credentials", nil)
	}

	if len(v.allowedHosts) > 0 && !contains(v.allowedHosts, parsed.Hostname()) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}

	return nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
