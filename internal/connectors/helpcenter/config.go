package helpcenter

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

const (
	// DefaultLocale is the locale listed when none is given.
	DefaultLocale = "en-us"

	// DefaultPerPage is the page size for listings.
	DefaultPerPage = 100

	// MaxPerPage is the largest page size the API accepts.
	MaxPerPage = 100

	// DefaultRequestsPerSecond is the proactive throttle rate.
	DefaultRequestsPerSecond = 5.0

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
)

// Config holds help-center client settings.
type Config struct {
	// BaseURL is the help-center root, e.g. https://acme.zendesk.com.
	BaseURL string

	// Email and APIToken enable API token authentication.
	Email    string
	APIToken string

	// OAuthToken enables bearer authentication. It wins over APIToken.
	OAuthToken string

	// Locale is the default listing locale.
	Locale string

	// PerPage is the listing page size.
	PerPage int

	// RequestsPerSecond throttles outgoing requests.
	RequestsPerSecond float64

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// HTTPClient overrides the transport. Useful for testing.
	HTTPClient *http.Client
}

// withDefaults returns a copy of cfg with zero fields defaulted.
func (c Config) withDefaults() Config {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if c.PerPage <= 0 || c.PerPage > MaxPerPage {
		c.PerPage = DefaultPerPage
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Validate reports missing required settings.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: help center base URL is required", domain.ErrHelpCenterUnavailable)
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("%w: base URL must start with http:// or https://", domain.ErrInvalidInput)
	}
	if c.APIToken != "" && c.Email == "" {
		return fmt.Errorf("%w: email is required with an API token", domain.ErrInvalidInput)
	}
	return nil
}
