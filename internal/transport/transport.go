// Package transport provides the outbound HTTP plumbing shared by provider
// clients: bounded timeouts, per-provider rate limiting and request metrics.
package transport

import (
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/gauthierbraillon/datinsight/internal/metrics"
)

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	// DefaultTimeout bounds provider fetches.
	DefaultTimeout = 15 * time.Second
	// MinTimeout and MaxTimeout bound any configured timeout.
	MinTimeout = time.Second
	MaxTimeout = 60 * time.Second
)

// New returns an http.Client with a clamped timeout.
func New(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: ClampTimeout(timeout)}
}

// ClampTimeout applies the default to zero values and keeps the rest in range.
func ClampTimeout(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return DefaultTimeout
	case d < MinTimeout:
		return MinTimeout
	case d > MaxTimeout:
		return MaxTimeout
	default:
		return d
	}
}

// RateLimited delays each request until the limiter allows it. Waiting honors
// the request context, so a limiter wait counts against the caller's deadline.
func RateLimited(next HTTPClient, limiter *rate.Limiter) HTTPClient {
	return &limitedClient{next: next, limiter: limiter}
}

type limitedClient struct {
	next    HTTPClient
	limiter *rate.Limiter
}

func (c *limitedClient) Do(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return c.next.Do(req)
}

// Instrumented records count and latency of every request under provider.
func Instrumented(next HTTPClient, provider string) HTTPClient {
	return &instrumentedClient{next: next, provider: provider}
}

type instrumentedClient struct {
	next     HTTPClient
	provider string
}

func (c *instrumentedClient) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.next.Do(req)
	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	metrics.RecordProviderRequest(c.provider, status, time.Since(start).Seconds())
	return resp, err
}
