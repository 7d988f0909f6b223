// Package helpcenter provides a client for Zendesk-compatible help-center APIs.
//
// It supports article search (/api/v2/help_center/articles/search) and full
// article listing per locale, following next_page links until exhausted.
// Requests are throttled proactively and 429 responses surface as
// *RateLimitError values that also match domain.ErrRateLimited.
package helpcenter
