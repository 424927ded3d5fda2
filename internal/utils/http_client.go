package utils

import (
	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly,
// while allowing extension with additional application-specific behavior.
//
// Example usage:
//
//	client := utils.NewHTTPClient("http://localhost:8000")
//	resp, err := client.R().Get("/v1/self/")
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates an HTTPClient bound to baseURL. The transport has
// no overall timeout; callers bound each request through its context.
//
// Each call returns an independent client instance with its own
// configuration, connection pool, and state. Retries are disabled: every
// retry is a new user action.
func NewHTTPClient(baseURL string) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetRetryCount(0).
		SetHeader("User-Agent", "go-drive-client")
	return &HTTPClient{Client: client}
}
