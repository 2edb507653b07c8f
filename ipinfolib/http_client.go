package ipinfolib

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

type httpClient struct {
	userAgent      string
	client         *http.Client
	rateLimiter    *rate.Limiter
	circuitBreaker *circuitBreaker
}

func (h *httpClient) Do(req *http.Request) (*http.Response, error) {
	if err := h.wait(req.Context()); err != nil {
		return nil, fmt.Errorf("cannot wait for rate limiter: %w", err)
	}

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	return h.circuitBreaker.Do(func() (*http.Response, error) {
		resp, err := h.client.Do(req)
		if err != nil {
			if resp != nil {
				flushResponse(resp.Body)
			}

			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			flushResponse(resp.Body)

			return nil, &FetchError{StatusCode: resp.StatusCode, Err: ErrRateLimited}
		case resp.StatusCode >= http.StatusBadRequest:
			flushResponse(resp.Body)

			return nil, &FetchError{
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("netloc has responded with %s", resp.Status),
			}
		}

		return resp, nil
	})
}

// Close stops background timers of the circuit breaker.
func (h *httpClient) Close() error {
	h.circuitBreaker.Stop()

	return nil
}

func (h *httpClient) wait(ctx context.Context) error {
	if h.client.Timeout <= 0 {
		return h.rateLimiter.Wait(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, h.client.Timeout)
	defer cancel()

	return h.rateLimiter.Wait(ctx)
}

func flushResponse(body io.ReadCloser) {
	io.Copy(io.Discard, body) // nolint: errcheck
	body.Close()
}

// NewHTTPClient prepares a new HTTP client, wraps it with rate limiter,
// circuit breaker, sets a user agent etc.
//
// Please see https://pkg.go.dev/golang.org/x/time/rate to get a meaning
// of rate limiter parameters. Rate limiter is a ceiling for all requests
// of the client, regardless of how many of them run in parallel.
//
// A meaning of circuit breaker parameters:
//
// circuitBreakerOpenThreshold - a number of consecutive failures after
// which circuit breaker becomes OPEN and rejects all requests with
// ErrCircuitBreakerOpened.
//
// circuitBreakerHalfOpenTimeout - after this time OPEN circuit breaker
// goes into HALF_OPEN state and lets a single request pass. If it
// succeeds, circuit breaker is CLOSED again, otherwise it is OPEN.
//
// circuitBreakerResetFailuresTimeout - a period after which a counter
// of failures of CLOSED circuit breaker is reset.
//
// HTTP statuses >= 400 are failures; 429 is reported as FetchError
// with ErrRateLimited.
func NewHTTPClient(client *http.Client,
	userAgent string,
	rateLimiterInterval time.Duration,
	rateLimitBurst int,
	circuitBreakerOpenThreshold uint32,
	circuitBreakerHalfOpenTimeout, circuitBreakerResetFailuresTimeout time.Duration) HTTPClient {
	return &httpClient{
		userAgent:   userAgent,
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Every(rateLimiterInterval), rateLimitBurst),
		circuitBreaker: newCircuitBreaker(circuitBreakerOpenThreshold,
			circuitBreakerHalfOpenTimeout,
			circuitBreakerResetFailuresTimeout),
	}
}
