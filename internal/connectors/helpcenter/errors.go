package helpcenter

import (
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// RateLimitError represents a rate limit exceeded error with retry time.
type RateLimitError struct {
	RetryAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("helpcenter: rate limit exceeded, retry at %s", e.RetryAt.Format(time.RFC3339))
}

// Is makes errors.Is(err, domain.ErrRateLimited) succeed.
func (e *RateLimitError) Is(target error) bool {
	return target == domain.ErrRateLimited
}

// APIError represents a non-success help-center API response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("helpcenter: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Is maps 404 to domain.ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == domain.ErrNotFound && e.StatusCode == 404
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}
