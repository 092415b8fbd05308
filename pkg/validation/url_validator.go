package validation

import (
	"net/url"
	"path"
	"strings"

	apperrors "go-omr-grader/internal/errors"
)

// URLValidator checks sheet image references before a fetcher touches them.
// Depending on the configured storage backend a reference is an http(s)
// URL, a file:// URL or a bare filesystem path.
type URLValidator struct {
	allowedSchemes    []string
	allowedHosts      []string
	allowedExtensions []string
	allowLocalPaths   bool
}

// NewURLValidator creates a validator for remote backends: http(s) URLs
// pointing at a supported raster format.
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes:    []string{"http", "https"},
		allowedHosts:      []string{}, // empty means all hosts allowed
		allowedExtensions: []string{".png", ".jpg", ".jpeg"},
	}
}

// NewLocalURLValidator additionally accepts file:// URLs and bare paths,
// for the local storage backend used in scanner batch ingestion.
func NewLocalURLValidator() *URLValidator {
	v := NewURLValidator()
	v.allowedSchemes = append(v.allowedSchemes, "file")
	v.allowLocalPaths = true
	return v
}

// NewURLValidatorWithOptions creates a URL validator with custom scheme and
// host restrictions.
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes:    schemes,
		allowedHosts:      hosts,
		allowedExtensions: []string{".png", ".jpg", ".jpeg"},
	}
}

// ValidateImageURL validates if the provided reference is acceptable for
// sheet processing
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	trimmed := strings.TrimSpace(imageURL)
	if trimmed == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(trimmed)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	// A bare filesystem path carries no scheme.
	if parsedURL.Scheme == "" {
		if !v.allowLocalPaths {
			return apperrors.NewValidationError("URL scheme not allowed", nil)
		}
		return v.validateExtension(trimmed)
	}

	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	if parsedURL.Scheme != "file" {
		if parsedURL.Host == "" {
			return apperrors.NewValidationError("URL must have a valid host", nil)
		}
		if len(v.allowedHosts) > 0 && !v.isHostAllowed(parsedURL.Host) {
			return apperrors.NewValidationError("URL host not allowed", nil)
		}
	}

	return v.validateExtension(parsedURL.Path)
}

// validateExtension checks that the referenced file is a raster format the
// fetchers can decode
func (v *URLValidator) validateExtension(p string) error {
	if len(v.allowedExtensions) == 0 {
		return nil
	}
	ext := strings.ToLower(path.Ext(p))
	for _, allowed := range v.allowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return apperrors.NewValidationError("Unsupported image format", nil)
}

// isSchemeAllowed checks if the URL scheme is in the allowed list
func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	for _, allowed := range v.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

// isHostAllowed checks if the URL host is in the allowed list
// Returns true if no host restrictions are set (empty allowedHosts)
func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	for _, allowed := range v.allowedHosts {
		if host == allowed {
			return true
		}
	}
	return false
}
